package categories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Titles are the display names of a category and the list it belongs to.
type Titles struct {
	ListTitle string
	ItemTitle string
}

// Directory resolves category keys to display titles.
type Directory interface {
	// Resolve returns false when the key is unknown.
	Resolve(key Key) (Titles, bool)
}

// Taxonomy is the YAML-backed category directory.
type Taxonomy struct {
	Lists []List `yaml:"lists"`
}

// List is a named group of categories, e.g. "Work".
type List struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// Item is a single category inside a list.
type Item struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
}

// DefaultTaxonomy returns a small starter taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Lists: []List{
			{
				Slug:  "work",
				Title: "Work",
				Items: []Item{
					{Slug: "coding", Title: "Coding"},
					{Slug: "review", Title: "Code Review"},
					{Slug: "meetings", Title: "Meetings"},
					{Slug: "planning", Title: "Planning"},
				},
			},
			{
				Slug:  "personal",
				Title: "Personal",
				Items: []Item{
					{Slug: "learning", Title: "Learning"},
					{Slug: "admin", Title: "Admin"},
				},
			},
		},
	}
}

// Resolve implements Directory.
func (t *Taxonomy) Resolve(key Key) (Titles, bool) {
	if t == nil {
		return Titles{}, false
	}
	for _, l := range t.Lists {
		if l.Slug != key.ListSlug {
			continue
		}
		for _, it := range l.Items {
			if it.Slug == key.ItemSlug {
				return Titles{ListTitle: l.Title, ItemTitle: it.Title}, true
			}
		}
	}
	return Titles{}, false
}

// ListTitle returns the title of the list with the given slug.
func (t *Taxonomy) ListTitle(slug string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, l := range t.Lists {
		if l.Slug == slug {
			return l.Title, true
		}
	}
	return "", false
}

// Validate checks slugs are present, unique and that list slugs contain no
// '.', which would make keys ambiguous.
func (t *Taxonomy) Validate() error {
	seen := make(map[string]bool)
	for _, l := range t.Lists {
		if l.Slug == "" {
			return fmt.Errorf("list %q has no slug", l.Title)
		}
		if strings.Contains(l.Slug, ".") {
			return fmt.Errorf("list slug %q must not contain '.'", l.Slug)
		}
		if seen[l.Slug] {
			return fmt.Errorf("duplicate list slug %q", l.Slug)
		}
		seen[l.Slug] = true

		items := make(map[string]bool)
		for _, it := range l.Items {
			if it.Slug == "" {
				return fmt.Errorf("item %q in list %q has no slug", it.Title, l.Slug)
			}
			if items[it.Slug] {
				return fmt.Errorf("duplicate item slug %q in list %q", it.Slug, l.Slug)
			}
			items[it.Slug] = true
		}
	}
	return nil
}

// LoadTaxonomy loads a taxonomy from a YAML file, falling back to the
// default taxonomy when the file does not exist.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTaxonomy(), nil
		}
		return nil, fmt.Errorf("reading taxonomy file: %w", err)
	}

	tax := &Taxonomy{}
	if err := yaml.Unmarshal(data, tax); err != nil {
		return nil, fmt.Errorf("parsing taxonomy file: %w", err)
	}

	if err := tax.Validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy: %w", err)
	}

	return tax, nil
}

// SaveTaxonomy writes a taxonomy to a YAML file, creating parent directories if needed.
func SaveTaxonomy(path string, tax *Taxonomy) error {
	if tax == nil {
		return fmt.Errorf("taxonomy cannot be nil")
	}
	if err := tax.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating taxonomy dir: %w", err)
	}

	data, err := yaml.Marshal(tax)
	if err != nil {
		return fmt.Errorf("marshaling taxonomy: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing taxonomy file: %w", err)
	}
	return nil
}
