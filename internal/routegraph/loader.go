package routegraph

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk seed format:
//
//	cities: [Cancun, Tulum]
//	connections:
//	  - {from: Cancun, to: Tulum, distance: 130}
type File struct {
	Cities      []string     `yaml:"cities"`
	Connections []Connection `yaml:"connections"`
}

type Connection struct {
	From     string  `yaml:"from" json:"from" validate:"required"`
	To       string  `yaml:"to" json:"to" validate:"required,nefield=From"`
	Distance float64 `yaml:"distance" json:"distance" validate:"gte=0"`
}

// LoadYAML adds everything described by r to g. Existing cities and edges
// are kept; a connection in the file overwrites the same edge in g.
func (g *Graph) LoadYAML(r io.Reader) error {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("decode graph: %w", err)
	}
	for _, c := range f.Cities {
		if err := checkName(c); err != nil {
			return err
		}
		g.mu.Lock()
		g.ensure(c)
		g.mu.Unlock()
	}
	for i, c := range f.Connections {
		if err := g.AddConnection(c.From, c.To, c.Distance); err != nil {
			return fmt.Errorf("connection %d: %w", i, err)
		}
	}
	return nil
}

func LoadFile(path string) (*Graph, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	g := New()
	if err := g.LoadYAML(fh); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
