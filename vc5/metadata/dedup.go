package metadata

// RemoveDuplicateTuples prunes duplicate tuples from the chunks. Working
// backwards, a tuple removes any earlier tuple with the same tag found in
// the same class instance or in an earlier instance of the same class.
// Streaming metadata (class GPMF) and layer tuples are exempt because
// repeated tags are meaningful there.
func RemoveDuplicateTuples(chunks []*Chunk) {
	type classGroup struct {
		classTag  FourCC
		instances []*Tuple
	}

	// Group the class instances across all chunks by class tag
	groups := make(map[FourCC]*classGroup)
	var order []FourCC

	for _, chunk := range chunks {
		for _, tuple := range chunk.Tuples {
			if !IsClassInstance(tuple.Type) {
				continue
			}
			group, ok := groups[tuple.Tag]
			if !ok {
				group = &classGroup{classTag: tuple.Tag}
				groups[tuple.Tag] = group
				order = append(order, tuple.Tag)
			}
			group.instances = append(group.instances, tuple)
		}
	}

	for _, classTag := range order {
		group := groups[classTag]
		if group.classTag == Tag("GPMF") {
			continue
		}
		pruneClassInstances(group.instances)
	}
}

// pruneClassInstances removes duplicate tags across the instances of one
// class, keeping the last occurrence.
func pruneClassInstances(instances []*Tuple) {
	seen := make(map[FourCC]bool)

	for i := len(instances) - 1; i >= 0; i-- {
		instance := instances[i]

		kept := instance.Children[:0:0]
		// Scan the children in reverse so later values win
		var keptReversed []*Tuple
		for j := len(instance.Children) - 1; j >= 0; j-- {
			child := instance.Children[j]
			if child.Tag == Tag("LAYR") || IsClassInstance(child.Type) {
				keptReversed = append(keptReversed, child)
				continue
			}
			if seen[child.Tag] {
				continue
			}
			seen[child.Tag] = true
			keptReversed = append(keptReversed, child)
		}
		for j := len(keptReversed) - 1; j >= 0; j-- {
			kept = append(kept, keptReversed[j])
		}
		instance.Children = kept
	}
}
