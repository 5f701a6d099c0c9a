package financial

import (
	"strings"
)

// FallbackCategory absorbs entries whose category was removed. It is
// present in both namespaces and can be neither renamed nor removed.
const FallbackCategory = "Outros"

// Registry is the user-editable list of category names per entry type.
// Lists keep insertion order and are unique ignoring case.
//
// Every operation returns a new Registry; the receiver is never modified.
// Rejected operations return the receiver unchanged with changed == false.
type Registry struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// DefaultRegistry returns every category of the cash-flow classification
// table followed by the fallback.
func DefaultRegistry() Registry {
	var r Registry
	for _, group := range classificationTable {
		r.Income = append(r.Income, group.Income...)
		r.Expense = append(r.Expense, group.Expense...)
	}
	r.Income = append(r.Income, FallbackCategory)
	r.Expense = append(r.Expense, FallbackCategory)
	return r
}

// IsFallback reports whether name refers to the protected fallback category.
func IsFallback(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), FallbackCategory)
}

// Names returns a copy of the names registered for t.
func (r Registry) Names(t EntryType) []string {
	var src []string
	switch t {
	case EntryIncome:
		src = r.Income
	case EntryExpense:
		src = r.Expense
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Contains reports whether name is registered for t, ignoring case.
func (r Registry) Contains(t EntryType, name string) bool {
	return indexFold(r.Names(t), strings.TrimSpace(name)) >= 0
}

// Add registers name for t.
func (r Registry) Add(t EntryType, name string) (Registry, bool) {
	if !t.Valid() {
		return r, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return r, false
	}
	names := r.Names(t)
	if indexFold(names, name) >= 0 {
		return r, false
	}
	return r.with(t, append(names, name)), true
}

// Rename replaces oldName with newName for t and returns the entries of
// that type that must be rewritten to the new name.
func (r Registry) Rename(t EntryType, oldName, newName string, entries []Entry) (Registry, []Entry, bool) {
	if !t.Valid() || IsFallback(oldName) {
		return r, nil, false
	}
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return r, nil, false
	}
	names := r.Names(t)
	idx := indexOf(names, oldName)
	if idx < 0 {
		return r, nil, false
	}
	for i, n := range names {
		if i != idx && strings.EqualFold(n, newName) {
			return r, nil, false
		}
	}
	names[idx] = newName
	return r.with(t, names), rewrite(entries, t, oldName, newName), true
}

// Remove deletes name from t and returns the entries of that type that must
// be moved to the fallback category.
func (r Registry) Remove(t EntryType, name string, entries []Entry) (Registry, []Entry, bool) {
	if !t.Valid() || IsFallback(name) {
		return r, nil, false
	}
	names := r.Names(t)
	idx := indexOf(names, name)
	if idx < 0 {
		return r, nil, false
	}
	names = append(names[:idx], names[idx+1:]...)
	if len(names) == 0 {
		names = []string{FallbackCategory}
	}
	return r.with(t, names), rewrite(entries, t, name, FallbackCategory), true
}

// Normalize trims names, drops blanks and case-insensitive duplicates, and
// makes sure the fallback exists in both namespaces.
func (r Registry) Normalize() Registry {
	return Registry{
		Income:  normalizeNames(r.Income),
		Expense: normalizeNames(r.Expense),
	}
}

func (r Registry) with(t EntryType, names []string) Registry {
	out := Registry{Income: r.Names(EntryIncome), Expense: r.Names(EntryExpense)}
	switch t {
	case EntryIncome:
		out.Income = names
	case EntryExpense:
		out.Expense = names
	}
	return out
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in)+1)
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" || indexFold(out, n) >= 0 {
			continue
		}
		out = append(out, n)
	}
	if indexFold(out, FallbackCategory) < 0 {
		out = append(out, FallbackCategory)
	}
	return out
}

func rewrite(entries []Entry, t EntryType, from, to string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Type == t && e.Category == from {
			e.Category = to
			out = append(out, e)
		}
	}
	return out
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func indexFold(names []string, name string) int {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
