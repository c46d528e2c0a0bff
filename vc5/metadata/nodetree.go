package metadata

import "github.com/cocosip/go-vc5-codec/codec"

// Streaming metadata class instances are written as flat sequences of
// tuples without size-based nesting. The nesting table, keyed by the new
// tuple tag and the tag of the current enclosing tuple, decides how the
// node stack changes when the tuple is encountered.

// stackOp is an operation applied to the node stack.
type stackOp int

const (
	stackUnchanged stackOp = iota
	stackPush
	stackPop
	stackReplace
)

type nestingRule struct {
	tag    FourCC
	parent FourCC
	op     stackOp
	pop    int
}

// encodingCurveTags are the class instances for encoding curve metadata.
var encodingCurveTags = []string{"LOGA", "GAMA", "LINR", "FSLG", "LOGC", "PQEC", "HLGE"}

// nestingRules define the tags that are nested and the tags in the nested
// payloads.
var nestingRules = buildNestingRules()

func buildNestingRules() []nestingRule {
	var rules []nestingRule

	for _, curve := range encodingCurveTags {
		rules = append(rules,
			nestingRule{tag: Tag(curve), parent: Tag("CFHD"), op: stackPush},
			nestingRule{tag: Tag(curve), parent: Tag(curve), op: stackReplace},
			nestingRule{tag: Tag(curve), parent: Tag("LAYR"), op: stackReplace},
		)
	}

	rules = append(rules,
		nestingRule{tag: Tag("LAYR"), parent: Tag("CFHD"), op: stackPush},
		nestingRule{tag: Tag("LAYR"), parent: Tag("LAYR"), op: stackReplace},
	)
	for _, curve := range encodingCurveTags {
		rules = append(rules, nestingRule{tag: Tag("LAYR"), parent: Tag(curve), op: stackPop, pop: 1})
	}

	return rules
}

func lookupNestingRule(tag, parent FourCC) (nestingRule, bool) {
	for _, rule := range nestingRules {
		if rule.tag == tag && rule.parent == parent {
			return rule, true
		}
	}
	return nestingRule{}, false
}

// BuildTree converts a flat sequence of tuples, as read from a streaming
// metadata chunk, into a tree. Class instances open a new nesting level;
// the nesting table adjusts the node stack for tags whose hierarchy is
// implicit.
func BuildTree(flat []*Tuple) ([]*Tuple, error) {
	var roots []*Tuple
	stack := make([]*Tuple, 0, maxNestingDepth)

	attach := func(tuple *Tuple) {
		if len(stack) == 0 {
			roots = append(roots, tuple)
		} else {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, tuple)
		}
	}

	for _, tuple := range flat {
		var parent FourCC
		if len(stack) > 0 {
			parent = stack[len(stack)-1].Tag
		}

		if rule, ok := lookupNestingRule(tuple.Tag, parent); ok {
			switch rule.op {
			case stackReplace:
				stack = stack[:len(stack)-1]
			case stackPop:
				if rule.pop > len(stack) {
					return nil, codec.ErrSyntax
				}
				stack = stack[:len(stack)-rule.pop]
			}

			attach(tuple)
			if len(stack) >= maxNestingDepth {
				return nil, codec.ErrSyntax
			}
			stack = append(stack, tuple)
			continue
		}

		attach(tuple)

		if IsClassInstance(tuple.Type) && len(tuple.Children) == 0 && tuple.Size == 0 {
			if len(stack) >= maxNestingDepth {
				return nil, codec.ErrSyntax
			}
			stack = append(stack, tuple)
		}
	}

	return roots, nil
}
