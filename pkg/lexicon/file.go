package lexicon

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/fieldmatch/pkg/errors"
)

// File is the on-disk lexicon document.
//
//	include_defaults: true
//	synonyms:
//	  - [sku, product_code, item_number]
//	overrides:
//	  product_id: sku
type File struct {
	IncludeDefaults bool              `yaml:"include_defaults"`
	Synonyms        [][]string        `yaml:"synonyms"`
	Overrides       map[string]string `yaml:"overrides"`
}

// Parse decodes a lexicon document. name is only used in errors.
func Parse(name string, data []byte) (*Lexicon, Overrides, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, Overrides{}, errors.WrapParse("yaml", name, err)
	}

	groups := f.Synonyms
	overrides := NewOverrides(f.Overrides)
	if f.IncludeDefaults {
		groups = append(Default().Groups(), groups...)
		overrides = DefaultOverrides().Merge(overrides)
	}
	return New(groups...), overrides, nil
}

// LoadFile reads and parses a lexicon document from path.
func LoadFile(path string) (*Lexicon, Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Overrides{}, errors.WrapIO("read", path, err)
	}
	return Parse(path, data)
}
