package entities

import (
	"sort"
	"strings"
	"time"
)

// FactEntry is a single learned statement in the knowledge base.
type FactEntry struct {
	Text    string    `json:"text"`
	AddedAt time.Time `json:"added_at"`
}

// FactList is the knowledge base payload: entries deduplicated by trimmed
// text (case-sensitive) and ordered newest-added first.
type FactList []FactEntry

// Normalize trims entry text, drops empty entries, removes duplicates
// (first occurrence wins) and sorts newest-added first.
func (l FactList) Normalize() FactList {
	seen := make(map[string]bool, len(l))
	out := make(FactList, 0, len(l))
	for _, e := range l {
		text := strings.TrimSpace(e.Text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, FactEntry{Text: text, AddedAt: e.AddedAt})
	}
	out.sortNewestFirst()
	return out
}

// Merge returns a new list with the incoming entries added. Entries whose
// trimmed text already exists are discarded (the existing entry wins). The
// second return value is the number of entries actually added.
func (l FactList) Merge(incoming ...FactEntry) (FactList, int) {
	existing := make(map[string]bool, len(l))
	for _, e := range l {
		existing[strings.TrimSpace(e.Text)] = true
	}

	merged := append(FactList{}, l...)
	added := 0
	for _, e := range incoming {
		text := strings.TrimSpace(e.Text)
		if text == "" || existing[text] {
			continue
		}
		existing[text] = true
		merged = append(merged, FactEntry{Text: text, AddedAt: e.AddedAt})
		added++
	}
	if added == 0 {
		return l, 0
	}
	merged.sortNewestFirst()
	return merged, added
}

// Contains reports whether the list already holds the given trimmed text.
func (l FactList) Contains(text string) bool {
	text = strings.TrimSpace(text)
	for _, e := range l {
		if strings.TrimSpace(e.Text) == text {
			return true
		}
	}
	return false
}

func (l FactList) sortNewestFirst() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].AddedAt.After(l[j].AddedAt)
	})
}
