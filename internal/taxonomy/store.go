// Package taxonomy provides the static four-level product taxonomy used to
// constrain classification. The store is built once at startup and is
// read-only afterwards; every lookup returns a defensive copy.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var embeddedTaxonomy []byte

// Level identifies one tier of the taxonomy.
type Level int

// Taxonomy levels, outermost first.
const (
	LevelShoppingCategory Level = iota + 1
	LevelShoppingSubcategory
	LevelItemCategory
	LevelItemSubcategory
)

// Name returns the human-readable level name.
func (l Level) Name() string {
	switch l {
	case LevelShoppingCategory:
		return "shopping category"
	case LevelShoppingSubcategory:
		return "shopping subcategory"
	case LevelItemCategory:
		return "item category"
	case LevelItemSubcategory:
		return "item subcategory"
	default:
		return fmt.Sprintf("level %d", int(l))
	}
}

// Store is the immutable four-level taxonomy tree.
type Store struct {
	categories []string
	nodes      map[string]*categoryNode
}

type categoryNode struct {
	subcategories []string
	// item categories keyed by shopping subcategory
	itemCategories map[string][]string
	// item subcategories keyed by item category (not by subcategory;
	// this mirrors the level-4 source data model)
	itemSubcategories map[string][]string
}

type taxonomyFile struct {
	Categories []categoryEntry `yaml:"categories"`
}

type categoryEntry struct {
	Name              string              `yaml:"name"`
	Subcategories     []string            `yaml:"subcategories"`
	ItemCategories    map[string][]string `yaml:"item_categories"`
	ItemSubcategories map[string][]string `yaml:"item_subcategories"`
}

// Load builds a Store from a taxonomy YAML file. An empty path loads the
// embedded default taxonomy.
func Load(path string) (*Store, error) {
	data := embeddedTaxonomy
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read taxonomy file: %w", err)
		}
		data = fileData
	}
	return Parse(data)
}

// Parse builds a Store from raw taxonomy YAML.
func Parse(data []byte) (*Store, error) {
	var tf taxonomyFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}

	if len(tf.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy has no shopping categories")
	}

	s := &Store{nodes: make(map[string]*categoryNode, len(tf.Categories))}

	for _, entry := range tf.Categories {
		name := normalize(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("taxonomy category with empty name")
		}
		if _, exists := s.nodes[name]; exists {
			return nil, fmt.Errorf("duplicate taxonomy category %q", name)
		}

		node := &categoryNode{
			subcategories:     normalizeAll(entry.Subcategories),
			itemCategories:    normalizeMap(entry.ItemCategories),
			itemSubcategories: normalizeMap(entry.ItemSubcategories),
		}

		for subcat := range node.itemCategories {
			if !contains(node.subcategories, subcat) {
				return nil, fmt.Errorf("category %q: item categories keyed by unknown subcategory %q", name, subcat)
			}
		}

		s.categories = append(s.categories, name)
		s.nodes[name] = node
	}

	return s, nil
}

// Categories returns the allowed level-1 shopping categories.
func (s *Store) Categories() []string {
	return cloneSlice(s.categories)
}

// Subcategories returns the allowed level-2 set for a shopping category.
func (s *Store) Subcategories(category string) ([]string, bool) {
	node, ok := s.nodes[normalize(category)]
	if !ok || len(node.subcategories) == 0 {
		return nil, false
	}
	return cloneSlice(node.subcategories), true
}

// ItemCategories returns the allowed level-3 set for a (category,
// subcategory) path.
func (s *Store) ItemCategories(category, subcategory string) ([]string, bool) {
	node, ok := s.nodes[normalize(category)]
	if !ok {
		return nil, false
	}
	items, ok := node.itemCategories[normalize(subcategory)]
	if !ok || len(items) == 0 {
		return nil, false
	}
	return cloneSlice(items), true
}

// ItemSubcategories returns the allowed level-4 set for a (category, item
// category) path.
func (s *Store) ItemSubcategories(category, itemCategory string) ([]string, bool) {
	node, ok := s.nodes[normalize(category)]
	if !ok {
		return nil, false
	}
	subs, ok := node.itemSubcategories[normalize(itemCategory)]
	if !ok || len(subs) == 0 {
		return nil, false
	}
	return cloneSlice(subs), true
}

// IsValid reports whether name is a member of the allowed set for the given
// level and ancestor path. Membership is case-insensitive.
func (s *Store) IsValid(level Level, name string, ancestors ...string) bool {
	allowed, ok := s.AllowedSet(level, ancestors...)
	if !ok {
		return false
	}
	return contains(allowed, normalize(name))
}

// AllowedSet returns the closed vocabulary for one level given the validated
// ancestor labels. Levels 2 and 3 key on the immediately preceding ancestors;
// level 4 keys on the level-1 category and the level-3 item category.
func (s *Store) AllowedSet(level Level, ancestors ...string) ([]string, bool) {
	switch level {
	case LevelShoppingCategory:
		return s.Categories(), true
	case LevelShoppingSubcategory:
		if len(ancestors) < 1 {
			return nil, false
		}
		return s.Subcategories(ancestors[0])
	case LevelItemCategory:
		if len(ancestors) < 2 {
			return nil, false
		}
		return s.ItemCategories(ancestors[0], ancestors[1])
	case LevelItemSubcategory:
		if len(ancestors) < 3 {
			return nil, false
		}
		return s.ItemSubcategories(ancestors[0], ancestors[2])
	default:
		return nil, false
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalizeMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, values := range m {
		out[normalize(k)] = normalizeAll(values)
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func cloneSlice(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
