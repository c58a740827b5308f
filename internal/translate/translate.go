// Package translate looks words up across English, French, Spanish and
// Bengali, first in the course vocabulary and then through a remote
// translation service.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"languagecoach/internal/answer"
)

// MaxTextLength is the longest query accepted, in characters
const MaxTextLength = 200

// maxWarnings caps the remote failures echoed back to the caller.
const maxWarnings = 3

var (
	ErrEmptyText   = errors.New(`missing "text"`)
	ErrTextTooLong = fmt.Errorf("text too long (max %d chars)", MaxTextLength)
)

// Provider selects where translations come from.
type Provider string

const (
	// ProviderLocal answers from the course vocabulary only.
	ProviderLocal Provider = "local"
	// ProviderMyMemory ignores the vocabulary and asks the remote service
	// for every language.
	ProviderMyMemory Provider = "mymemory"
	// ProviderHybrid fills the gaps the vocabulary leaves from the remote
	// service.
	ProviderHybrid Provider = "hybrid"
)

// ParseProvider reads TRANSLATE_PROVIDER; anything unknown is hybrid.
func ParseProvider(s string) Provider {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderLocal, ProviderMyMemory, ProviderHybrid:
		return p
	}
	return ProviderHybrid
}

// Languages lists the result languages in response order.
var Languages = []string{"en", "fr", "es", "bn"}

const sourceAuto = "auto"

var langTags = map[string]string{"en": "en-US", "fr": "fr-FR", "es": "es-ES", "bn": "bn-BD"}

// vocabLanguage names the vocabulary section holding each foreign language.
var vocabLanguage = map[string]string{"fr": "french", "es": "spanish"}

// parseSource returns a result language code or "auto".
func parseSource(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if _, ok := langTags[hint]; ok {
		return hint
	}
	return sourceAuto
}

// remoteCode is the language code the remote service expects.
func remoteCode(code string) string {
	if code == "bn" {
		return "bn-BD"
	}
	return code
}

// Fetcher translates text with a remote service.
type Fetcher interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Translation is one language's answer; Text is nil when none was found.
type Translation struct {
	Text    *string `json:"text"`
	LangTag string  `json:"lang_tag"`
}

// Result is the outcome of one lookup.
type Result struct {
	Query    string                 `json:"query"`
	Source   string                 `json:"source"`
	Provider Provider               `json:"provider"`
	Warnings []string               `json:"warnings"`
	Results  map[string]Translation `json:"results"`
}

// Service answers translation lookups
type Service struct {
	vocab    Vocabulary
	provider Provider
	fetcher  Fetcher
	log      logrus.FieldLogger
}

// NewService creates a translation service. Without a fetcher only the
// vocabulary is consulted.
func NewService(vocab Vocabulary, provider Provider, fetcher Fetcher, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if fetcher == nil {
		provider = ProviderLocal
	}
	return &Service{vocab: vocab, provider: provider, fetcher: fetcher, log: log}
}

// Provider returns the provider in effect
func (s *Service) Provider() Provider {
	return s.provider
}

// Translate looks text up in every language. sourceHint is a language
// code or "auto"; anything else means auto-detect. Remote failures become
// warnings rather than errors.
func (s *Service) Translate(ctx context.Context, text, sourceHint string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, ErrTextTooLong
	}

	detected, found := s.vocab.lookup(text, parseSource(sourceHint))
	if s.provider == ProviderMyMemory {
		found = map[string]string{detected: text}
	}

	warnings := []string{}
	if s.provider != ProviderLocal {
		src := remoteCode(detected)
		for _, code := range Languages {
			if found[code] != "" {
				continue
			}
			tgt := remoteCode(code)
			if src == tgt {
				found[code] = text
				continue
			}
			out, err := s.fetcher.Translate(ctx, text, src, tgt)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{"source": src, "target": tgt}).Debug("remote translation failed")
				warnings = append(warnings, err.Error())
				continue
			}
			found[code] = out
		}
	}

	results := make(map[string]Translation, len(Languages))
	for _, code := range Languages {
		results[code] = Translation{
			Text:    lo.EmptyableToPtr(strings.TrimSpace(found[code])),
			LangTag: langTags[code],
		}
	}
	return &Result{
		Query:    text,
		Source:   detected,
		Provider: s.provider,
		Warnings: warnings[:min(len(warnings), maxWarnings)],
		Results:  results,
	}, nil
}

// lookup detects the query's language when source is "auto" and fills in
// what the vocabulary knows. Languages with no answer are absent.
func (v Vocabulary) lookup(text, source string) (string, map[string]string) {
	fr := v.entries(vocabLanguage["fr"])
	es := v.entries(vocabLanguage["es"])

	bengali := hasBengali(text)
	var q, qBN string
	if bengali {
		qBN = normBengali(text)
	} else {
		q = answer.Normalize(text)
	}

	frWord := bestByWord(fr, q)
	esWord := bestByWord(es, q)

	if source == sourceAuto {
		switch {
		case bengali:
			source = "bn"
		case frWord.score >= 90 && frWord.score > esWord.score:
			source = "fr"
		case esWord.score >= 90 && esWord.score > frWord.score:
			source = "es"
		default:
			source = "en"
		}
	}

	found := map[string]string{}
	switch source {
	case "fr":
		fromForeign(found, text, "fr", frWord, "es", es)
	case "es":
		fromForeign(found, text, "es", esWord, "fr", fr)
	case "bn":
		fromBengali(found, text, qBN, fr, es)
	default:
		fromEnglish(found, text, q, fr, es)
	}
	return source, found
}

// fromForeign answers a French or Spanish query. The other foreign
// language is reached through the entry's first English gloss.
func fromForeign(found map[string]string, text, code string, m match, otherCode string, other []Entry) {
	if m.entry == nil {
		found[code] = text
		return
	}
	found[code] = strings.TrimSpace(m.entry.Word)
	found["en"] = strings.TrimSpace(m.entry.English)
	found["bn"] = strings.TrimSpace(m.entry.Bengali)

	if pivot := answer.Normalize(primaryGloss(found["en"])); pivot != "" {
		if o := bestByEnglish(other, pivot); o.entry != nil {
			found[otherCode] = strings.TrimSpace(o.entry.Word)
		}
	}
}

func fromBengali(found map[string]string, text, q string, fr, es []Entry) {
	frBN := bestByBengali(fr, q)
	esBN := bestByBengali(es, q)

	best := esBN
	if frBN.score >= esBN.score {
		best = frBN
	}
	if best.entry != nil {
		found["en"] = strings.TrimSpace(best.entry.English)
	}
	if frBN.entry != nil {
		found["fr"] = strings.TrimSpace(frBN.entry.Word)
	}
	if esBN.entry != nil {
		found["es"] = strings.TrimSpace(esBN.entry.Word)
	}
	found["bn"] = text

	pivot := answer.Normalize(primaryGloss(found["en"]))
	if pivot == "" {
		return
	}
	if found["fr"] == "" {
		if m := bestByEnglish(fr, pivot); m.entry != nil {
			found["fr"] = strings.TrimSpace(m.entry.Word)
		}
	}
	if found["es"] == "" {
		if m := bestByEnglish(es, pivot); m.entry != nil {
			found["es"] = strings.TrimSpace(m.entry.Word)
		}
	}
}

// englishMinScore keeps loose gloss matches ("wine glass" for "glass")
// out of English lookups.
const englishMinScore = 90

func fromEnglish(found map[string]string, text, q string, fr, es []Entry) {
	found["en"] = text

	bnScore := 0
	for _, side := range []struct {
		code string
		m    match
	}{
		{"fr", bestByEnglish(fr, q)},
		{"es", bestByEnglish(es, q)},
	} {
		if side.m.entry == nil || side.m.score < englishMinScore {
			continue
		}
		found[side.code] = strings.TrimSpace(side.m.entry.Word)
		if bn := strings.TrimSpace(side.m.entry.Bengali); bn != "" && side.m.score > bnScore {
			found["bn"] = bn
			bnScore = side.m.score
		}
	}
}
