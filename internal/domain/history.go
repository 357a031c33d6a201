package domain

import "time"

// DefaultHistoryLimit is the number of most recent entries a history store retains.
const DefaultHistoryLimit = 100

// HistoryEntry records a published article. Entries are never mutated.
type HistoryEntry struct {
	URL         string    `json:"url"`
	Fingerprint string    `json:"hash"`
	PostedAt    time.Time `json:"time"`
}

// NewHistoryEntry builds the entry written after a successful publish.
func NewHistoryEntry(article Article, at time.Time) HistoryEntry {
	return HistoryEntry{
		URL:         article.URL,
		Fingerprint: article.Fingerprint,
		PostedAt:    at.UTC(),
	}
}

// History is an indexed snapshot of previously published articles.
type History struct {
	entries      []HistoryEntry
	urls         map[string]struct{}
	fingerprints map[string]struct{}
}

// NewHistory indexes entries by URL and fingerprint. Stored URLs are already in
// decoded form and are indexed verbatim.
func NewHistory(entries []HistoryEntry) History {
	h := History{
		entries:      entries,
		urls:         make(map[string]struct{}, len(entries)),
		fingerprints: make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		if e.URL != "" {
			h.urls[e.URL] = struct{}{}
		}
		if e.Fingerprint != "" {
			h.fingerprints[e.Fingerprint] = struct{}{}
		}
	}
	return h
}

// Contains reports whether either dedup key of the article was already published.
func (h History) Contains(article Article) bool {
	if _, ok := h.urls[article.URL]; ok && article.URL != "" {
		return true
	}
	if _, ok := h.fingerprints[article.Fingerprint]; ok && article.Fingerprint != "" {
		return true
	}
	return false
}

// Entries returns the underlying entries, oldest first.
func (h History) Entries() []HistoryEntry {
	return h.entries
}

// Len returns the number of entries.
func (h History) Len() int {
	return len(h.entries)
}

// TrimHistory keeps only the newest limit entries of an oldest-first slice.
func TrimHistory(entries []HistoryEntry, limit int) []HistoryEntry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}

// TriedSet tracks articles attempted within a single run so retries pick something new.
type TriedSet struct {
	urls         map[string]struct{}
	fingerprints map[string]struct{}
}

// NewTriedSet returns an empty in-run exclusion set.
func NewTriedSet() *TriedSet {
	return &TriedSet{
		urls:         map[string]struct{}{},
		fingerprints: map[string]struct{}{},
	}
}

// Add marks the article as attempted.
func (t *TriedSet) Add(article Article) {
	if article.URL != "" {
		t.urls[article.URL] = struct{}{}
	}
	if article.Fingerprint != "" {
		t.fingerprints[article.Fingerprint] = struct{}{}
	}
}

// Contains reports whether the article (by URL or fingerprint) was already attempted.
func (t *TriedSet) Contains(article Article) bool {
	if t == nil {
		return false
	}
	if _, ok := t.urls[article.URL]; ok {
		return true
	}
	_, ok := t.fingerprints[article.Fingerprint]
	return ok
}

// Len returns the number of attempted URLs.
func (t *TriedSet) Len() int {
	if t == nil {
		return 0
	}
	return len(t.urls)
}
