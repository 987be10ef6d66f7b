// Package taxonomy defines the curated set of canonical skill names and aliases.
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Entry is a canonical skill name with its alternative spellings.
type Entry struct {
	Name    string   `yaml:"name" json:"name"`                           // Required, canonical display name
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"` // Optional, abbreviations and variants
}

// Validation errors.
var (
	ErrEmptyName     = errors.New("skill name is required")
	ErrDuplicateName = errors.New("skill name or alias already used by another entry")
	ErrEmptyAlias    = errors.New("alias must not be blank")
)

// Validate checks an entry in isolation.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	for _, a := range e.Aliases {
		if strings.TrimSpace(a) == "" {
			return ErrEmptyAlias
		}
	}
	return nil
}

// Terms returns the name followed by the aliases.
func (e *Entry) Terms() []string {
	terms := make([]string, 0, len(e.Aliases)+1)
	terms = append(terms, e.Name)
	terms = append(terms, e.Aliases...)
	return terms
}

// Taxonomy is an immutable set of entries with case-insensitive lookup.
// Construct it once with New and share it by pointer.
type Taxonomy struct {
	entries []Entry
	lookup  map[string]string // lowercased name or alias -> canonical name
}

// New validates entries and builds a Taxonomy.
// Every name and alias must be unique across entries, ignoring case.
// An alias repeating its own entry's name is allowed.
func New(entries []Entry) (*Taxonomy, error) {
	t := &Taxonomy{
		entries: make([]Entry, 0, len(entries)),
		lookup:  make(map[string]string),
	}

	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		name := strings.TrimSpace(e.Name)
		clean := Entry{Name: name}
		for _, term := range e.Terms() {
			key := normalizeKey(term)
			if owner, ok := t.lookup[key]; ok {
				if owner == name {
					continue
				}
				return nil, fmt.Errorf("%w: %q (entries %q and %q)", ErrDuplicateName, term, owner, name)
			}
			t.lookup[key] = name
			if key != normalizeKey(name) {
				clean.Aliases = append(clean.Aliases, strings.TrimSpace(term))
			}
		}
		t.entries = append(t.entries, clean)
	}

	return t, nil
}

// Lookup resolves a name or alias to its canonical name, ignoring case and
// surrounding whitespace.
func (t *Taxonomy) Lookup(term string) (string, bool) {
	name, ok := t.lookup[normalizeKey(term)]
	return name, ok
}

// Len returns the number of entries.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// Names returns the canonical names in load order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the entries in load order.
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = Entry{Name: e.Name, Aliases: append([]string(nil), e.Aliases...)}
	}
	return out
}

// Terms returns every name and alias mapped to its canonical name, longest
// term first so multi-word matches win over their substrings.
func (t *Taxonomy) Terms() []Term {
	terms := make([]Term, 0, len(t.lookup))
	for _, e := range t.entries {
		for _, term := range e.Terms() {
			terms = append(terms, Term{Text: term, Name: e.Name})
		}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i].Text) > len(terms[j].Text)
	})
	return terms
}

// Term pairs a surface form with its canonical name.
type Term struct {
	Text string
	Name string
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
