package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/buildplanner/internal/item"
)

type runewordFile struct {
	Runewords []item.Runeword `yaml:"runewords"`
}

// LoadRunewords reads runeword definitions from YAML:
//
//	runewords:
//	  - name: Steel
//	    runes: [Tir, El]
func (c *Catalog) LoadRunewords(r io.Reader) (int, error) {
	var f runewordFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return 0, fmt.Errorf("decode runewords: %w", err)
	}
	for _, rw := range f.Runewords {
		if err := c.RegisterRuneword(rw); err != nil {
			return 0, fmt.Errorf("runeword %q: %w", rw.Name, err)
		}
	}
	return len(f.Runewords), nil
}
