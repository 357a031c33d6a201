package composer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minKeywordLength = 5

type tagKind int

const (
	tagContent tagKind = iota
	tagTrending
	tagBrand
)

type hashtag struct {
	text string
	kind tagKind
}

// hashtags derives content tags, samples trending tags and appends brand tags.
// Tags are unique case-insensitively and capped at MaxHashtags.
func hashtags(text string, opts Options, rng Rand) []hashtag {
	var (
		tags []hashtag
		seen = map[string]struct{}{}
	)
	add := func(text string, kind tagKind) {
		text = normalizeTag(text)
		if text == "" {
			return
		}
		key := strings.ToLower(text)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		tags = append(tags, hashtag{text: text, kind: kind})
	}

	keywords := contentKeywords(text, opts.StopWords)
	for i := 0; i < len(keywords) && i < opts.ContentTags; i++ {
		add(capitalize(keywords[i]), tagContent)
	}
	for _, t := range sample(opts.TrendingPool, opts.TrendingTags, rng) {
		add(t, tagTrending)
	}
	for _, t := range opts.BrandTags {
		add(t, tagBrand)
	}

	for len(tags) > opts.MaxHashtags {
		tags = dropTag(tags)
	}
	return tags
}

// contentKeywords returns lowercase letter-only tokens of at least five runes that are
// not stop words, de-duplicated in first-seen order.
func contentKeywords(text string, stopWords map[string]struct{}) []string {
	var (
		out  []string
		seen = map[string]struct{}{}
	)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?()[]{}\"'“”‘’:;")
		if utf8.RuneCountInString(word) < minKeywordLength || !lettersOnly(word) {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

// sample picks k distinct items with a partial Fisher-Yates shuffle on a copy.
func sample(pool []string, k int, rng Rand) []string {
	if k <= 0 || len(pool) == 0 {
		return nil
	}
	if k > len(pool) {
		k = len(pool)
	}
	items := append([]string(nil), pool...)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	return items[:k]
}

// dropTag removes one tag: the last trending tag, else the last content tag, else the last brand tag.
func dropTag(tags []hashtag) []hashtag {
	for _, kind := range []tagKind{tagTrending, tagContent, tagBrand} {
		for i := len(tags) - 1; i >= 0; i-- {
			if tags[i].kind == kind {
				out := make([]hashtag, 0, len(tags)-1)
				out = append(out, tags[:i]...)
				return append(out, tags[i+1:]...)
			}
		}
	}
	return tags
}

func tagTexts(tags []hashtag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.text)
	}
	return out
}

func normalizeTag(t string) string {
	t = strings.TrimSpace(t)
	if t == "" || t == "#" {
		return ""
	}
	if !strings.HasPrefix(t, "#") {
		t = "#" + t
	}
	return t
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

func lettersOnly(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return word != ""
}
