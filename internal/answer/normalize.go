package answer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// genderPattern matches the "stem o/a" notation, e.g. "argentino/a"
	genderPattern = regexp.MustCompile(`(?i)^(.+?)([oa])/([oa])$`)
	disallowed    = regexp.MustCompile(`[^a-z0-9 ]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// stripMarks decomposes text and drops combining marks (category Mn)
func stripMarks(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// Normalize returns the canonical form of a free-text answer.
// The result is insensitive to case, accents and punctuation.
func Normalize(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = stripMarks(s)
	s = disallowed.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Variants returns the sorted set of canonical forms accepted for answer.
func Variants(answer string) []string {
	raw := []string{answer}
	if m := genderPattern.FindStringSubmatch(strings.TrimSpace(answer)); m != nil {
		raw = append(raw, m[1]+m[2], m[1]+m[3])
	}

	variants := lo.Uniq(lo.FilterMap(raw, func(v string, _ int) (string, bool) {
		n := Normalize(v)
		return n, n != ""
	}))
	sort.Strings(variants)
	return variants
}

// Matches reports whether input is an acceptable spelling of expected.
func Matches(input, expected string) bool {
	return lo.Contains(Variants(expected), Normalize(input))
}

// MatchesOrdered reports whether the token sequence spells out the expected
// sentence. fallback is compared when expected is empty.
func MatchesOrdered(tokens []string, expected, fallback string) bool {
	target := expected
	if strings.TrimSpace(target) == "" {
		target = fallback
	}
	return Normalize(strings.Join(tokens, " ")) == Normalize(target)
}
