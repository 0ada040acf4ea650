package categories

import (
	"sort"

	"github.com/fentz26/tasktally/internal/models"
)

// Bucket accumulates the logs sharing one category key.
type Bucket struct {
	Key       string  `json:"key"`
	ListSlug  string  `json:"list_slug"`
	ItemSlug  string  `json:"item_slug"`
	ListTitle string  `json:"list_title"`
	ItemTitle string  `json:"item_title"`
	Resolved  bool    `json:"resolved"`
	Hours     float64 `json:"hours"`
	Count     int     `json:"count"`
}

// ListRollup totals every bucket of one category list.
type ListRollup struct {
	Slug       string             `json:"slug"`
	Title      string             `json:"title"`
	Hours      float64            `json:"hours"`
	Count      int                `json:"count"`
	Categories map[string]*Bucket `json:"categories"`
}

// Analysis is the category breakdown of a set of time logs.
type Analysis struct {
	Categories         map[string]*Bucket     `json:"categories"`
	Lists              map[string]*ListRollup `json:"lists"`
	TotalHours         float64                `json:"total_hours"`
	CategorizedHours   float64                `json:"categorized_hours"`
	UncategorizedHours float64                `json:"uncategorized_hours"`
	UncategorizedCount int                    `json:"uncategorized_count"`
}

type listTitler interface {
	ListTitle(slug string) (string, bool)
}

// Analyze groups logs by category key. Logs without a key, or with one
// that does not parse, count as uncategorized. Keys the directory cannot
// resolve are still bucketed, titled by their slugs.
func Analyze(logs []models.TimeLog, dir Directory) *Analysis {
	a := &Analysis{
		Categories: make(map[string]*Bucket),
		Lists:      make(map[string]*ListRollup),
	}

	for _, l := range logs {
		a.TotalHours += l.Hours

		key, ok := ParseKey(l.CategoryKey)
		if !ok {
			a.UncategorizedHours += l.Hours
			a.UncategorizedCount++
			continue
		}

		b, exists := a.Categories[key.String()]
		if !exists {
			b = newBucket(key, dir)
			a.Categories[key.String()] = b
		}
		b.Hours += l.Hours
		b.Count++
		a.CategorizedHours += l.Hours

		rollup, exists := a.Lists[key.ListSlug]
		if !exists {
			rollup = &ListRollup{
				Slug:       key.ListSlug,
				Title:      listTitle(key.ListSlug, b, dir),
				Categories: make(map[string]*Bucket),
			}
			a.Lists[key.ListSlug] = rollup
		}
		rollup.Hours += l.Hours
		rollup.Count++
		rollup.Categories[key.String()] = b
	}

	return a
}

func newBucket(key Key, dir Directory) *Bucket {
	b := &Bucket{
		Key:       key.String(),
		ListSlug:  key.ListSlug,
		ItemSlug:  key.ItemSlug,
		ListTitle: key.ListSlug,
		ItemTitle: key.ItemSlug,
	}
	if dir == nil {
		return b
	}
	if titles, ok := dir.Resolve(key); ok {
		b.ListTitle = titles.ListTitle
		b.ItemTitle = titles.ItemTitle
		b.Resolved = true
	}
	return b
}

func listTitle(slug string, first *Bucket, dir Directory) string {
	if first.Resolved {
		return first.ListTitle
	}
	if lt, ok := dir.(listTitler); ok {
		if title, ok := lt.ListTitle(slug); ok {
			return title
		}
	}
	return slug
}

// SortedLists returns the list rollups by hours, largest first, ties by slug.
func (a *Analysis) SortedLists() []*ListRollup {
	out := make([]*ListRollup, 0, len(a.Lists))
	for _, l := range a.Lists {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// SortedCategories returns the buckets of a list by hours, largest first.
func (l *ListRollup) SortedCategories() []*Bucket {
	return sortBuckets(l.Categories)
}

// SortedCategories returns every bucket by hours, largest first.
func (a *Analysis) SortedCategories() []*Bucket {
	return sortBuckets(a.Categories)
}

func sortBuckets(m map[string]*Bucket) []*Bucket {
	out := make([]*Bucket, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Key < out[j].Key
	})
	return out
}
