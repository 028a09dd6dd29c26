// Package rules holds the phrase overrides that are checked before the model.
package rules

import "strings"

// Labels attached to rule matches
const (
	MisogynisticStereotype = "misogynistic_stereotype"
	VictimBlaming          = "victim_blaming"
)

// Entry is one override: a lowercase substring and the tag reported when it matches.
type Entry struct {
	Pattern string
	Label   string
}

// defaultEntries is ordered; the first match wins.
var defaultEntries = []Entry{
	{Pattern: "typical women driver", Label: MisogynisticStereotype},
	{Pattern: "woman driver", Label: MisogynisticStereotype},
	{Pattern: "women belong in the kitchen", Label: MisogynisticStereotype},
	{Pattern: "women are too emotional", Label: MisogynisticStereotype},
	{Pattern: "she was asking for it", Label: VictimBlaming},
	{Pattern: "she deserved it", Label: VictimBlaming},
}

// Table is an immutable ordered list of entries.
type Table struct {
	entries []Entry
}

// Default returns the built-in table.
func Default() *Table {
	return New(defaultEntries)
}

// New builds a table; patterns are lowercased so matching is case-insensitive.
// Entries with an empty pattern are dropped.
func New(entries []Entry) *Table {
	t := &Table{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		p := strings.ToLower(strings.TrimSpace(e.Pattern))
		if p == "" {
			continue
		}
		t.entries = append(t.entries, Entry{Pattern: p, Label: e.Label})
	}
	return t
}

// Match returns the first entry whose pattern occurs in text.
func (t *Table) Match(text string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	lower := strings.ToLower(text)
	for _, e := range t.entries {
		if strings.Contains(lower, e.Pattern) {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the table in match order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
