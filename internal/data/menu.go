package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MenuEntry is one slot in a menu layout. Kind tells the host what to
// render there ("ranking", "season", "clan", "filler", ...); Value is the
// kind-specific payload (e.g. a 1-based ranking position).
type MenuEntry struct {
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

// Menu is one inventory-menu layout. The league only stores and serves
// layouts; rendering them is the host's concern.
type Menu struct {
	Name    string            `yaml:"name"`
	Title   string            `yaml:"title"`
	Rows    int               `yaml:"rows"`
	Entries map[int]MenuEntry `yaml:"entries"` // slot index → entry
}

// MenuTable holds all menu layouts indexed by name.
type MenuTable struct {
	menus map[string]*Menu
}

// Get returns a menu layout by name, or nil.
func (t *MenuTable) Get(name string) *Menu {
	return t.menus[name]
}

// All returns every menu layout ordered by name.
func (t *MenuTable) All() []*Menu {
	out := make([]*Menu, 0, len(t.menus))
	for _, m := range t.menus {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of menus loaded.
func (t *MenuTable) Count() int {
	return len(t.menus)
}

type menuFile struct {
	Menus []Menu `yaml:"menus"`
}

// LoadMenuTable loads menu layouts from a YAML file.
func LoadMenuTable(path string) (*MenuTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	var f menuFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}

	t := &MenuTable{menus: make(map[string]*Menu, len(f.Menus))}
	for i := range f.Menus {
		m := &f.Menus[i]
		if m.Rows <= 0 {
			m.Rows = 6
		}
		t.menus[m.Name] = m
	}
	return t, nil
}
