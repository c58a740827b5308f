package drill

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"languagecoach/internal/progress"
)

// Mark is the learner's verdict on a flashcard.
type Mark int

const (
	Unmarked Mark = iota
	Known
	Unknown
)

// CardView is the flashcard on screen.
type CardView struct {
	Card     VocabEntry
	Index    int
	Total    int
	Flipped  bool
	Mark     Mark
	Known    int
	Unknown  int
	Progress int
	Complete bool
}

// DeckPresenter draws flashcards.
type DeckPresenter interface {
	ShowCard(v CardView)
}

// Deck is a flashcard session. Marking a card moves to the next one; a card
// may be re-marked, which moves it between the known and unknown tallies.
type Deck struct {
	mu        sync.Mutex
	source    []VocabEntry
	opts      Options
	presenter DeckPresenter
	log       logrus.FieldLogger
	cues      *cueTrack

	sessionID string
	cards     []VocabEntry
	marks     []Mark
	index     int
	flipped   bool
	known     int
	unknown   int
}

// NewDeck creates a deck over vocab. presenter may be nil.
func NewDeck(vocab []VocabEntry, presenter DeckPresenter, opts Options) *Deck {
	opts = opts.withDefaults()
	d := &Deck{
		source:    vocab,
		opts:      opts,
		presenter: presenter,
		log:       opts.Logger.WithField("drill", "flashcards"),
	}
	d.cues = newCueTrack(&d.mu, opts.Scheduler, opts.Speaker)
	return d
}

// Start deals the cards in their original order. It reports false for an
// empty deck.
func (d *Deck) Start(ctx context.Context) bool {
	return d.deal(append([]VocabEntry(nil), d.source...))
}

// Restart is Start under its user-facing name.
func (d *Deck) Restart(ctx context.Context) bool {
	return d.Start(ctx)
}

// Shuffle deals the cards in random order and clears every mark.
func (d *Deck) Shuffle(ctx context.Context) bool {
	return d.deal(lo.Shuffle(append([]VocabEntry(nil), d.source...)))
}

func (d *Deck) deal(cards []VocabEntry) bool {
	d.mu.Lock()
	if len(cards) == 0 {
		d.mu.Unlock()
		return false
	}
	d.cues.reset()
	d.sessionID = uuid.NewString()
	d.cards = cards
	d.marks = make([]Mark, len(cards))
	d.index = 0
	d.flipped = false
	d.known = 0
	d.unknown = 0
	view := d.viewLocked()
	d.log.WithFields(logrus.Fields{
		"session": d.sessionID,
		"cards":   len(cards),
	}).Debug("flashcards dealt")
	d.mu.Unlock()

	d.show(view)
	return true
}

// Flip turns the current card over.
func (d *Deck) Flip() bool {
	d.mu.Lock()
	if len(d.cards) == 0 {
		d.mu.Unlock()
		return false
	}
	d.flipped = !d.flipped
	view := d.viewLocked()
	d.mu.Unlock()

	d.show(view)
	return view.Flipped
}

// MarkCurrent records whether the learner knew the current card, reports it
// and moves on.
func (d *Deck) MarkCurrent(ctx context.Context, known bool) {
	d.mu.Lock()
	if len(d.cards) == 0 {
		d.mu.Unlock()
		return
	}
	next := Unknown
	if known {
		next = Known
	}
	switch d.marks[d.index] {
	case Unmarked:
		if known {
			d.known++
		} else {
			d.unknown++
		}
	case Known:
		if !known {
			d.known--
			d.unknown++
		}
	case Unknown:
		if known {
			d.unknown--
			d.known++
		}
	}
	d.marks[d.index] = next
	card := d.cards[d.index]
	sessionID := d.sessionID
	d.moveLocked(d.index + 1)
	d.flipped = false
	view := d.viewLocked()
	d.mu.Unlock()

	if strings.TrimSpace(card.Word) != "" {
		d.opts.Reporter.ReportWord(progress.WithSession(ctx, sessionID), progress.WordResult{
			Language: d.opts.Language,
			Word:     card.Word,
			Correct:  progress.Flag(known),
			Source:   progress.SourceFlashcards,
		})
	}
	d.show(view)
}

// Next moves forward one card. On the last card it only refreshes the view.
func (d *Deck) Next() {
	d.step(1)
}

// Prev moves back one card.
func (d *Deck) Prev() {
	d.step(-1)
}

func (d *Deck) step(delta int) {
	d.mu.Lock()
	if len(d.cards) == 0 {
		d.mu.Unlock()
		return
	}
	d.moveLocked(d.index + delta)
	view := d.viewLocked()
	d.mu.Unlock()

	d.show(view)
}

func (d *Deck) moveLocked(to int) {
	if to < 0 || to >= len(d.cards) || to == d.index {
		return
	}
	d.cues.reset()
	d.index = to
	d.flipped = false
}

// PlayCue speaks the current card's word.
func (d *Deck) PlayCue() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cards) == 0 {
		return
	}
	card := d.cards[d.index]
	d.cues.play(card.Word, card.TTSLang)
}

// View returns the current card view.
func (d *Deck) View() CardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Deck) viewLocked() CardView {
	if len(d.cards) == 0 {
		return CardView{}
	}
	return CardView{
		Card:     d.cards[d.index],
		Index:    d.index,
		Total:    len(d.cards),
		Flipped:  d.flipped,
		Mark:     d.marks[d.index],
		Known:    d.known,
		Unknown:  d.unknown,
		Progress: percent(d.index, len(d.cards)),
		Complete: !lo.Contains(d.marks, Unmarked),
	}
}

func (d *Deck) show(v CardView) {
	if d.presenter != nil {
		d.presenter.ShowCard(v)
	}
}
