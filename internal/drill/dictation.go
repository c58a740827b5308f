package drill

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"languagecoach/internal/answer"
	"languagecoach/internal/progress"
)

// DictationState is a snapshot of a dictation session.
type DictationState struct {
	SessionID string
	Phase     Phase
	Index     int
	Total     int
	Correct   int
	Wrong     int
}

// Dictation plays each item's audio and asks the learner to type the word.
type Dictation struct {
	mu    sync.Mutex
	items []DictationItem
	opts  Options
	log   logrus.FieldLogger
	cues  *cueTrack

	sessionID string
	phase     Phase
	index     int
	correct   int
	wrong     int
}

// NewDictation creates a dictation engine over items.
func NewDictation(items []DictationItem, opts Options) *Dictation {
	opts = opts.withDefaults()
	d := &Dictation{
		items: items,
		opts:  opts,
		log:   opts.Logger.WithField("drill", "dictation"),
	}
	d.cues = newCueTrack(&d.mu, opts.Scheduler, opts.Speaker)
	return d
}

// Start renders the first item. It reports false when there are no items.
func (d *Dictation) Start(ctx context.Context) bool {
	d.mu.Lock()
	if len(d.items) == 0 {
		d.mu.Unlock()
		return false
	}
	d.cues.reset()
	d.sessionID = uuid.NewString()
	d.index = 0
	d.correct = 0
	d.wrong = 0
	view, counters := d.renderLocked()
	d.log.WithFields(logrus.Fields{
		"session": d.sessionID,
		"items":   len(d.items),
	}).Debug("dictation started")
	d.mu.Unlock()

	d.opts.Presenter.Render(view)
	d.opts.Presenter.UpdateCounters(counters)
	return true
}

func (d *Dictation) renderLocked() (View, Counters) {
	item := d.items[d.index]
	d.phase = PhaseRendered
	d.cues.auto(item.TTSText, item.TTSLang)

	view := View{
		Index:     d.index,
		Total:     len(d.items),
		Kind:      KindTyped,
		Mode:      "dictation",
		ModeLabel: "🎧 Dictation",
		PromptEN:  "Listen and type the word you hear",
		PromptBN:  "শুনুন এবং শব্দটি লিখুন",
		HasCue:    true,
	}
	return view, d.countersLocked(d.index)
}

func (d *Dictation) countersLocked(completed int) Counters {
	return Counters{
		Correct:  d.correct,
		Wrong:    d.wrong,
		Progress: percent(completed, len(d.items)),
	}
}

// Submit checks the typed text against the current word and reveals it.
func (d *Dictation) Submit(ctx context.Context, text string) (Feedback, bool) {
	d.mu.Lock()
	if d.phase != PhaseRendered {
		d.mu.Unlock()
		return Feedback{}, false
	}
	item := d.items[d.index]
	correct := answer.Matches(text, item.Word)

	d.phase = PhaseAnswered
	xp := DictationXPWrong
	if correct {
		d.correct++
		xp = DictationXPCorrect
	} else {
		d.wrong++
	}

	fb := Feedback{
		Correct:       correct,
		Given:         text,
		Answer:        item.Word,
		XP:            xp,
		Word:          item.Word,
		Pronunciation: item.Pronunciation,
		English:       item.English,
		Bengali:       item.Bengali,
	}
	counters := d.countersLocked(d.index + 1)
	sessionID := d.sessionID
	d.mu.Unlock()

	if strings.TrimSpace(item.Word) != "" {
		d.opts.Reporter.ReportWord(progress.WithSession(ctx, sessionID), progress.WordResult{
			Language: d.opts.Language,
			Word:     item.Word,
			Correct:  progress.Flag(correct),
			Source:   progress.SourceDictation,
			XP:       xp,
		})
	}
	d.opts.Presenter.ShowFeedback(fb)
	d.opts.Presenter.UpdateCounters(counters)
	return fb, true
}

// Advance moves to the next item or ends the session.
func (d *Dictation) Advance(ctx context.Context) Phase {
	d.mu.Lock()
	if d.phase != PhaseAnswered {
		phase := d.phase
		d.mu.Unlock()
		return phase
	}
	d.cues.reset()

	if d.index+1 >= len(d.items) {
		d.phase = PhaseEnded
		summary := d.summaryLocked()
		d.log.WithFields(logrus.Fields{
			"session": d.sessionID,
			"score":   summary.Score,
		}).Debug("dictation ended")
		d.mu.Unlock()

		d.opts.Presenter.ShowResults(summary)
		return PhaseEnded
	}

	d.index++
	view, counters := d.renderLocked()
	d.mu.Unlock()

	d.opts.Presenter.Render(view)
	d.opts.Presenter.UpdateCounters(counters)
	return PhaseRendered
}

func (d *Dictation) summaryLocked() Summary {
	total := len(d.items)
	pct := percent(d.correct, total)
	return Summary{
		Correct: d.correct,
		Wrong:   d.wrong,
		Total:   total,
		Percent: pct,
		Score:   fmt.Sprintf("%d / %d", d.correct, total),
		Tier:    DictationTier(pct),
	}
}

// PlayCue replays the current item's audio.
func (d *Dictation) PlayCue() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != PhaseRendered && d.phase != PhaseAnswered {
		return
	}
	item := d.items[d.index]
	d.cues.play(item.TTSText, item.TTSLang)
}

// Phase returns the current phase.
func (d *Dictation) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// State returns a snapshot of the session.
func (d *Dictation) State() DictationState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DictationState{
		SessionID: d.sessionID,
		Phase:     d.phase,
		Index:     d.index,
		Total:     len(d.items),
		Correct:   d.correct,
		Wrong:     d.wrong,
	}
}
