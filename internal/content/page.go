// Package content loads the page-data document that seeds the drills.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"languagecoach/internal/drill"
)

// Page is the data a lesson page hands to the drills. A nil slice means the
// key was absent and the matching drill is not initialized.
type Page struct {
	Language          string                `json:"LANG,omitempty"`
	LessonID          int64                 `json:"LESSON_ID,omitempty"`
	Vocab             []drill.VocabEntry    `json:"VOCAB,omitempty"`
	Questions         []drill.QuizQuestion  `json:"QUESTIONS,omitempty"`
	PracticeQuestions []drill.Question      `json:"PRACTICE_QUESTIONS,omitempty"`
	DictationItems    []drill.DictationItem `json:"DICTATION_ITEMS,omitempty"`
}

// Load reads a page-data file.
func Load(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page data: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a page-data document.
func Parse(r io.Reader) (*Page, error) {
	var p Page
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode page data: %w", err)
	}
	return &p, nil
}

// HasFlashcards reports whether the page carries a vocabulary deck.
func (p *Page) HasFlashcards() bool { return p != nil && p.Vocab != nil }

// HasQuiz reports whether the page carries quiz questions.
func (p *Page) HasQuiz() bool { return p != nil && len(p.Questions) > 0 }

// HasPractice reports whether the page carries practice questions.
func (p *Page) HasPractice() bool { return p != nil && p.PracticeQuestions != nil }

// HasDictation reports whether the page carries dictation items.
func (p *Page) HasDictation() bool { return p != nil && p.DictationItems != nil }

// Validate checks the records the engines rely on. It returns every problem
// found.
func (p *Page) Validate() error {
	var errs []error
	for i, q := range p.PracticeQuestions {
		switch q.Kind {
		case drill.KindChoice:
			if len(q.Choices) == 0 {
				errs = append(errs, fmt.Errorf("practice question %d: no choices", i+1))
			}
		case drill.KindTyped:
			if q.Answer == "" {
				errs = append(errs, fmt.Errorf("practice question %d: no answer", i+1))
			}
		case drill.KindOrdered:
			if len(q.Tokens) == 0 {
				errs = append(errs, fmt.Errorf("practice question %d: no tokens", i+1))
			}
		default:
			errs = append(errs, fmt.Errorf("practice question %d: unknown kind %q", i+1, q.Kind))
		}
	}
	for i, q := range p.Questions {
		if len(q.Choices) == 0 {
			errs = append(errs, fmt.Errorf("quiz question %d: no choices", i+1))
		}
	}
	for i, item := range p.DictationItems {
		if item.Word == "" || item.TTSText == "" || item.TTSLang == "" {
			errs = append(errs, fmt.Errorf("dictation item %d: word and cue are required", i+1))
		}
	}
	return errors.Join(errs...)
}
