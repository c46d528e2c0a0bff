package codec

import "sync"

// Registry manages the available codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // key can be either name or standard designation
}

var defaultRegistry = &Registry{
	codecs: make(map[string]Codec),
}

// Register registers a codec using both its name and standard designation
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or standard designation
func Get(nameOrStandard string) (Codec, error) {
	return defaultRegistry.Get(nameOrStandard)
}

// List returns all registered codecs
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers a codec using both its name and standard designation
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	r.codecs[codec.Standard()] = codec
}

// Get retrieves a codec by name or standard designation
func (r *Registry) Get(nameOrStandard string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[nameOrStandard]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return codec, nil
}

// List returns all registered codecs (deduplicated)
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Codec]bool)
	codecs := make([]Codec, 0)

	for _, codec := range r.codecs {
		if !seen[codec] {
			seen[codec] = true
			codecs = append(codecs, codec)
		}
	}

	return codecs
}
