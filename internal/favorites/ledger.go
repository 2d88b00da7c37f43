// Package favorites keeps the per-identity vault: identity name -> set of
// entry ids. Every operation returns a new Ledger and leaves its receiver
// untouched, so callers can compare before/after values safely.
package favorites

import "strings"

// Ledger maps an identity name to the ids it favorited. Order inside a set is
// insertion order and carries no meaning.
//
// An identity mapped to an empty set is meaningful: it records that the user
// emptied their vault, which must keep shadowing compiled defaults.
type Ledger map[string][]string

// Merge layers persisted sets over compiled defaults. Persisted wins per
// identity; identities only present in defaults keep their default set.
func Merge(defaults, persisted Ledger) Ledger {
	out := make(Ledger, len(defaults)+len(persisted))
	for identity, ids := range defaults {
		out[identity] = dedupe(ids)
	}
	for identity, ids := range persisted {
		out[identity] = dedupe(ids)
	}
	return out
}

// Normalize cleans an identity name. Empty means "no identity".
func Normalize(identity string) string {
	return strings.TrimSpace(identity)
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for identity, ids := range l {
		out[identity] = append([]string{}, ids...)
	}
	return out
}

// Contains reports whether identity favorited id.
func (l Ledger) Contains(identity, id string) bool {
	for _, v := range l[Normalize(identity)] {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the favorite set of identity.
func (l Ledger) IDs(identity string) []string {
	return append([]string{}, l[Normalize(identity)]...)
}

// Count returns the size of the favorite set of identity.
func (l Ledger) Count(identity string) int {
	return len(l[Normalize(identity)])
}

// Toggle removes id from identity's set when present, adds it otherwise.
// An empty identity or id leaves the ledger unchanged (but still copied).
func (l Ledger) Toggle(identity, id string) Ledger {
	out := l.Clone()
	identity = Normalize(identity)
	if identity == "" || id == "" {
		return out
	}

	ids := out[identity]
	for i, v := range ids {
		if v == id {
			out[identity] = append(ids[:i:i], ids[i+1:]...)
			return out
		}
	}
	out[identity] = append(ids, id)
	return out
}

// Purge removes id from every identity's set.
func (l Ledger) Purge(id string) Ledger {
	return l.Prune(func(v string) bool { return v != id })
}

// Prune keeps only the ids for which keep returns true.
func (l Ledger) Prune(keep func(id string) bool) Ledger {
	out := make(Ledger, len(l))
	for identity, ids := range l {
		kept := make([]string, 0, len(ids))
		for _, v := range ids {
			if keep(v) {
				kept = append(kept, v)
			}
		}
		out[identity] = kept
	}
	return out
}

// Remap rewrites ids through mapping; ids absent from mapping are kept.
func (l Ledger) Remap(mapping map[string]string) Ledger {
	out := make(Ledger, len(l))
	for identity, ids := range l {
		rewritten := make([]string, 0, len(ids))
		for _, v := range ids {
			if to, ok := mapping[v]; ok {
				v = to
			}
			rewritten = append(rewritten, v)
		}
		out[identity] = dedupe(rewritten)
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
