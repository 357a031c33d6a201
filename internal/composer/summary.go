package composer

import (
	"strings"
	"unicode/utf8"

	"NewsPoster/internal/domain"
)

const unicodeEllipsis = "\u2026"

// summarize picks the leading usable sentences of the article text.
// Only terminated sentences are kept so the summary never ends mid-sentence.
func summarize(article domain.Article, opts Options) []string {
	source := article.Summary
	if strings.TrimSpace(source) == "" {
		source = article.FullText()
	}

	var usable []string
	for _, s := range splitSentences(source) {
		if terminated(s) && runeLen(s) > opts.MinSentenceLength {
			usable = append(usable, s)
		}
	}

	if len(usable) < opts.MinSentences {
		if len(usable) == 0 && article.Title != "" {
			usable = append(usable, terminate(article.Title))
		}
		for _, filler := range opts.Filler {
			if len(usable) >= opts.MinSentences {
				break
			}
			usable = append(usable, filler)
		}
	}

	var (
		kept  []string
		total int
	)
	for _, s := range usable {
		if len(kept) == opts.MaxSentences {
			break
		}
		add := runeLen(s)
		if len(kept) > 0 {
			add++
		}
		if len(kept) > 0 && total+add > opts.SoftBudget {
			break
		}
		kept = append(kept, s)
		total += add
	}
	return kept
}

// splitSentences cuts on runs of . ! ? followed by whitespace or the end of text,
// so decimals like 3.5 stay inside their sentence. A trailing unterminated fragment
// is returned as the last element. A Unicode ellipsis counts as a terminator.
func splitSentences(text string) []string {
	text = strings.ReplaceAll(strings.Join(strings.Fields(text), " "), unicodeEllipsis, ellipsis)

	var (
		out   []string
		start int
	)
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		j := i
		for j+1 < len(text) && isTerminator(text[j+1]) {
			j++
		}
		if j+1 == len(text) || text[j+1] == ' ' {
			if s := strings.TrimSpace(text[start : j+1]); s != "" {
				out = append(out, s)
			}
			start = j + 1
		}
		i = j
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func terminated(s string) bool {
	return s != "" && isTerminator(s[len(s)-1])
}

func terminate(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), unicodeEllipsis, ellipsis)
	if terminated(s) {
		return s
	}
	return s + "."
}

// truncateWords shortens s to at most max runes including the ellipsis, cutting at a
// word boundary when one exists. It returns "" when there is no room for any text.
func truncateWords(s string, max int) (string, bool) {
	if runeLen(s) <= max {
		return s, false
	}
	budget := max - utf8.RuneCountInString(ellipsis)
	if budget <= 0 {
		return "", false
	}

	runes := []rune(s)
	cut := string(runes[:budget])
	if runes[budget] != ' ' {
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
	}
	cut = strings.TrimRight(cut, " ,;:-–—.!?")
	if cut == "" {
		return "", false
	}
	return cut + ellipsis, true
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
