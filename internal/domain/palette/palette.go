// Package palette lists the node kinds that can be dropped onto the canvas.
package palette

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// ErrUnknownKind is returned for palette entries naming no node kind
var ErrUnknownKind = errors.New("unknown node kind")

// Item is one draggable palette entry
type Item struct {
	Kind        types.NodeKind `yaml:"kind" json:"kind"`
	Label       string         `yaml:"label" json:"label"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
}

// Palette is the ordered set of items offered to the user
type Palette struct {
	Items []Item `yaml:"items" json:"items"`
}

// Default returns the built-in palette
func Default() *Palette {
	return &Palette{Items: []Item{
		{Kind: types.KindContentCard, Label: "Default Node", Description: "Card with tabs of text and media"},
		{Kind: types.KindBackgroundCard, Label: "BackGround Card", Description: "Backdrop grouping other cards"},
		{Kind: types.KindAnchorCard, Label: "Anchor Card", Description: "Fixed anchor for connections"},
	}}
}

// Load reads a palette from a YAML file
func Load(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML palette and validates every entry
func Parse(data []byte) (*Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse palette YAML: %w", err)
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("palette has no items")
	}
	for i, item := range p.Items {
		if !item.Kind.Valid() {
			return nil, fmt.Errorf("item %d: %w: %q", i, ErrUnknownKind, item.Kind)
		}
		if item.Label == "" {
			return nil, fmt.Errorf("item %d: label is required", i)
		}
	}
	return &p, nil
}

// Find returns the first item of the given kind
func (p *Palette) Find(kind types.NodeKind) (Item, bool) {
	for _, item := range p.Items {
		if item.Kind == kind {
			return item, true
		}
	}
	return Item{}, false
}
