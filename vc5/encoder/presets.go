package encoder

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cocosip/go-vc5-codec/vc5"
)

// Preset is a named quantization vector. The built-in presets match the
// quality levels of the encoder that produced the conformance test
// material.
type Preset struct {
	Name         string                    `yaml:"name"`
	Quantization [vc5.MaxSubbandCount]int `yaml:"quantization"`
}

// presetFile is the layout of a YAML preset file.
type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets are the built-in quality presets.
var DefaultPresets = []Preset{
	{Name: "filmscan-2", Quantization: [vc5.MaxSubbandCount]int{1, 24, 24, 12, 24, 24, 12, 32, 32, 48}},
	{Name: "filmscan-1", Quantization: [vc5.MaxSubbandCount]int{1, 24, 24, 12, 24, 24, 12, 96, 96, 144}},
	{Name: "high", Quantization: [vc5.MaxSubbandCount]int{1, 24, 24, 12, 32, 32, 24, 128, 128, 192}},
	{Name: "medium", Quantization: [vc5.MaxSubbandCount]int{1, 24, 24, 12, 48, 48, 32, 256, 256, 384}},
	{Name: "low", Quantization: [vc5.MaxSubbandCount]int{1, 24, 24, 12, 64, 64, 48, 512, 512, 768}},
}

// LookupPreset finds a preset by name in the supplied list, falling back
// to the built-in presets.
func LookupPreset(presets []Preset, name string) (Preset, bool) {
	for _, preset := range presets {
		if preset.Name == name {
			return preset, true
		}
	}
	for _, preset := range DefaultPresets {
		if preset.Name == name {
			return preset, true
		}
	}
	return Preset{}, false
}

// LoadPresets reads additional quality presets from a YAML file.
func LoadPresets(pathname string) ([]Preset, error) {
	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "reading preset file")
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parsing preset file")
	}

	return file.Presets, nil
}
