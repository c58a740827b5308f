package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"languagecoach/internal/answer"
)

// Entry is one course vocabulary word.
type Entry struct {
	Word    string `json:"word"`
	English string `json:"english"`
	Bengali string `json:"bengali,omitempty"`
}

// Vocabulary is the course word list keyed by language name ("french",
// "spanish") and then by category.
type Vocabulary map[string]map[string][]Entry

// LoadVocabulary reads a vocabulary JSON file.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
	}
	return v, nil
}

// entries flattens one language's categories in category-name order.
func (v Vocabulary) entries(language string) []Entry {
	categories := v[language]
	names := lo.Keys(categories)
	slices.Sort(names)
	return lo.FlatMap(names, func(name string, _ int) []Entry { return categories[name] })
}

// Words reports how many entries the vocabulary holds.
func (v Vocabulary) Words() int {
	n := 0
	for _, categories := range v {
		for _, entries := range categories {
			n += len(entries)
		}
	}
	return n
}

// match is the best-scoring entry of a search; entry is nil when nothing
// scored.
type match struct {
	entry *Entry
	score int
}

func (m *match) offer(e *Entry, score int) {
	if score > m.score {
		m.entry = e
		m.score = score
	}
}

// bestByWord scores the foreign word: exact 100, prefix 80, substring 60.
func bestByWord(entries []Entry, q string) match {
	var best match
	if q == "" {
		return best
	}
	for i := range entries {
		w := answer.Normalize(entries[i].Word)
		if w == "" {
			continue
		}
		switch {
		case q == w:
			best.offer(&entries[i], 100)
			return best
		case strings.HasPrefix(w, q):
			best.offer(&entries[i], 80)
		case strings.Contains(w, q):
			best.offer(&entries[i], 60)
		}
	}
	return best
}

// bestByEnglish scores each English gloss of an entry and keeps the
// entry's best gloss. A one-word query prefers glosses that start with it.
func bestByEnglish(entries []Entry, q string) match {
	var best match
	if q == "" {
		return best
	}
	single := len(strings.Fields(q)) == 1

	for i := range entries {
		score := 0
		for _, gloss := range splitGlosses(entries[i].English) {
			g := answer.Normalize(gloss)
			if g == "" {
				continue
			}
			score = max(score, glossScore(q, g, single))
		}
		best.offer(&entries[i], score)
	}
	return best
}

func glossScore(q, g string, single bool) int {
	if q == g {
		return 100
	}
	if !single {
		switch {
		case strings.HasPrefix(g, q):
			return 85
		case strings.Contains(g, q):
			return 70
		}
		return 0
	}
	tokens := strings.Fields(g)
	switch {
	case len(tokens) > 0 && tokens[0] == q:
		return 88
	case slices.Contains(tokens, q):
		return 55
	case strings.HasPrefix(g, q):
		return 60
	case strings.Contains(g, q):
		return 45
	}
	return 0
}

// bestByBengali scores the Bengali gloss: exact 100, substring 80.
func bestByBengali(entries []Entry, q string) match {
	var best match
	if q == "" {
		return best
	}
	for i := range entries {
		bn := normBengali(entries[i].Bengali)
		if bn == "" {
			continue
		}
		switch {
		case q == bn:
			best.offer(&entries[i], 100)
		case strings.Contains(bn, q):
			best.offer(&entries[i], 80)
		}
	}
	return best
}

var glossSeparator = regexp.MustCompile(`\s*(?:/|;|,|\||·|•)\s*`)

// splitGlosses splits entries like "hello / good morning" into glosses.
func splitGlosses(english string) []string {
	english = strings.TrimSpace(english)
	if english == "" {
		return nil
	}
	return lo.FilterMap(glossSeparator.Split(english, -1), func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
}

func primaryGloss(english string) string {
	glosses := splitGlosses(english)
	if len(glosses) == 0 {
		return ""
	}
	return glosses[0]
}

func hasBengali(text string) bool {
	return strings.ContainsFunc(text, func(r rune) bool { return r >= 0x0980 && r <= 0x09FF })
}

func normBengali(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}
