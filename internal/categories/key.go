// Package categories resolves and aggregates the category keys attached to
// time logs. A key has the form "<listSlug>.<itemSlug>".
package categories

import "strings"

// Key is a parsed category key.
type Key struct {
	ListSlug string
	ItemSlug string
}

// String reassembles the key.
func (k Key) String() string {
	return k.ListSlug + "." + k.ItemSlug
}

// ParseKey splits key on its first '.'; the item part may itself contain
// dots. Both parts must be non-empty.
func ParseKey(key string) (Key, bool) {
	list, item, ok := strings.Cut(strings.TrimSpace(key), ".")
	if !ok || list == "" || item == "" {
		return Key{}, false
	}
	return Key{ListSlug: list, ItemSlug: item}, true
}
