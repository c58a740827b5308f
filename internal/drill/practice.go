package drill

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"languagecoach/internal/answer"
	"languagecoach/internal/progress"
)

// State is a snapshot of a practice session.
type State struct {
	SessionID string
	Phase     Phase
	Index     int
	Total     int
	Hearts    int
	XP        int
	Correct   int
	Wrong     int
	Answered  bool
	Selection []string
}

// Practice runs a mixed-kind practice session with hearts and XP.
type Practice struct {
	mu        sync.Mutex
	questions []Question
	opts      Options
	log       logrus.FieldLogger
	cues      *cueTrack

	sessionID string
	phase     Phase
	index     int
	hearts    int
	xp        int
	correct   int
	wrong     int
	selection []int // token indices in pick order
}

// NewPractice creates a practice engine over questions.
func NewPractice(questions []Question, opts Options) *Practice {
	opts = opts.withDefaults()
	p := &Practice{
		questions: questions,
		opts:      opts,
		log:       opts.Logger.WithField("drill", "practice"),
		hearts:    StartingHearts,
	}
	p.cues = newCueTrack(&p.mu, opts.Scheduler, opts.Speaker)
	return p
}

// Start resets the session and renders the first question. It reports false
// and does nothing when there are no questions.
func (p *Practice) Start(ctx context.Context) bool {
	p.mu.Lock()
	if len(p.questions) == 0 {
		p.mu.Unlock()
		return false
	}
	p.cues.reset()
	p.sessionID = uuid.NewString()
	p.index = 0
	p.hearts = StartingHearts
	p.xp = 0
	p.correct = 0
	p.wrong = 0
	view, counters := p.renderLocked()
	p.log.WithFields(logrus.Fields{
		"session":   p.sessionID,
		"questions": len(p.questions),
	}).Debug("practice started")
	p.mu.Unlock()

	p.opts.Presenter.Render(view)
	p.opts.Presenter.UpdateCounters(counters)
	return true
}

// renderLocked prepares the current question for display.
func (p *Practice) renderLocked() (View, Counters) {
	q := p.questions[p.index]
	p.phase = PhaseRendered
	p.selection = p.selection[:0]
	if q.Listening() {
		p.cues.auto(q.TTSText, q.TTSLang)
	}

	view := View{
		Index:     p.index,
		Total:     len(p.questions),
		Kind:      q.Kind,
		Mode:      q.Mode,
		ModeLabel: q.ModeLabel,
		PromptEN:  q.PromptEN,
		PromptBN:  q.PromptBN,
		Hint:      q.HintBN,
		Choices:   append([]string(nil), q.Choices...),
		Tokens:    append([]string(nil), q.Tokens...),
		HasCue:    strings.TrimSpace(q.TTSText) != "",
	}
	return view, p.countersLocked(p.index)
}

func (p *Practice) countersLocked(completed int) Counters {
	return Counters{
		Hearts:   p.hearts,
		XP:       p.xp,
		Correct:  p.correct,
		Wrong:    p.wrong,
		Progress: percent(completed, len(p.questions)),
	}
}

// Submit evaluates a response to the current question. It reports false when
// the question is not awaiting an answer.
func (p *Practice) Submit(ctx context.Context, r Response) (Feedback, bool) {
	p.mu.Lock()
	sub, ok := p.submitLocked(r)
	p.mu.Unlock()
	if !ok {
		return Feedback{}, false
	}
	p.deliver(ctx, sub)
	return sub.feedback, true
}

// ChooseNth submits the nth (1-based) choice of an unanswered
// multiple-choice question.
func (p *Practice) ChooseNth(ctx context.Context, n int) (Feedback, bool) {
	p.mu.Lock()
	if p.phase != PhaseRendered {
		p.mu.Unlock()
		return Feedback{}, false
	}
	q := p.questions[p.index]
	if q.Kind != KindChoice || n < 1 || n > len(q.Choices) {
		p.mu.Unlock()
		return Feedback{}, false
	}
	sub, ok := p.submitLocked(Response{Choice: q.Choices[n-1]})
	p.mu.Unlock()
	if !ok {
		return Feedback{}, false
	}
	p.deliver(ctx, sub)
	return sub.feedback, true
}

// submission carries the side effects of an accepted answer out of the lock.
type submission struct {
	sessionID string
	feedback  Feedback
	counters  Counters
	report    *progress.WordResult
}

func (p *Practice) deliver(ctx context.Context, sub submission) {
	if sub.report != nil {
		p.opts.Reporter.ReportWord(progress.WithSession(ctx, sub.sessionID), *sub.report)
	}
	p.opts.Presenter.ShowFeedback(sub.feedback)
	p.opts.Presenter.UpdateCounters(sub.counters)
}

func (p *Practice) submitLocked(r Response) (submission, bool) {
	if p.phase != PhaseRendered {
		return submission{}, false
	}
	q := p.questions[p.index]

	given, correct := p.evaluateLocked(q, r)

	p.phase = PhaseAnswered
	if !correct && p.hearts > 0 {
		p.hearts--
	}
	delta := q.xpFor(correct)
	p.xp += delta
	if correct {
		p.correct++
	} else {
		p.wrong++
	}

	sub := submission{
		sessionID: p.sessionID,
		feedback: Feedback{
			Correct: correct,
			Given:   given,
			Answer:  q.ExpectedText(),
			XP:      delta,
		},
		counters: p.countersLocked(p.index + 1),
	}
	if strings.TrimSpace(q.Word) != "" {
		sub.report = &progress.WordResult{
			Language: p.opts.Language,
			Word:     q.Word,
			Correct:  progress.Flag(correct),
			Source:   progress.SourcePractice,
			XP:       delta,
		}
	}
	return sub, true
}

func (p *Practice) evaluateLocked(q Question, r Response) (string, bool) {
	switch q.Kind {
	case KindTyped:
		return r.Text, answer.Matches(r.Text, q.Answer)
	case KindOrdered:
		tokens := r.Tokens
		if len(tokens) == 0 {
			tokens = p.selectionLocked()
		}
		return strings.Join(tokens, " "), answer.MatchesOrdered(tokens, q.Answer, q.Sentence)
	default:
		choice := r.Choice
		if choice == "" {
			choice = r.Text
		}
		return choice, choice == q.Answer
	}
}

// Advance moves past an answered question. It returns the resulting phase;
// calls made before the current question is answered change nothing.
func (p *Practice) Advance(ctx context.Context) Phase {
	p.mu.Lock()
	if p.phase != PhaseAnswered {
		phase := p.phase
		p.mu.Unlock()
		return phase
	}
	p.cues.reset()

	if p.hearts == 0 || p.index+1 >= len(p.questions) {
		p.phase = PhaseEnded
		summary := p.summaryLocked()
		p.log.WithFields(logrus.Fields{
			"session": p.sessionID,
			"percent": summary.Percent,
			"hearts":  p.hearts,
		}).Debug("practice ended")
		p.mu.Unlock()

		p.opts.Presenter.ShowResults(summary)
		return PhaseEnded
	}

	p.index++
	view, counters := p.renderLocked()
	p.mu.Unlock()

	p.opts.Presenter.Render(view)
	p.opts.Presenter.UpdateCounters(counters)
	return PhaseRendered
}

func (p *Practice) summaryLocked() Summary {
	answered := p.correct + p.wrong
	pct := percent(p.correct, answered)
	return Summary{
		Correct: p.correct,
		Wrong:   p.wrong,
		Total:   len(p.questions),
		Percent: pct,
		XP:      p.xp,
		Hearts:  p.hearts,
		Tier:    PracticeTier(pct, p.hearts == 0),
	}
}

// Pick appends token i of the current ordered question to the selection.
// Each token can be picked once.
func (p *Practice) Pick(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	q, ok := p.orderedLocked()
	if !ok || i < 0 || i >= len(q.Tokens) || lo.Contains(p.selection, i) {
		return false
	}
	p.selection = append(p.selection, i)
	return true
}

// Unpick removes the token at position pos of the selection.
func (p *Practice) Unpick(pos int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.orderedLocked(); !ok || pos < 0 || pos >= len(p.selection) {
		return false
	}
	p.selection = append(p.selection[:pos], p.selection[pos+1:]...)
	return true
}

// ClearSelection empties the pending ordered selection.
func (p *Practice) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.orderedLocked(); ok {
		p.selection = p.selection[:0]
	}
}

// Selection returns the picked tokens in order.
func (p *Practice) Selection() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectionLocked()
}

func (p *Practice) selectionLocked() []string {
	if p.index >= len(p.questions) {
		return nil
	}
	tokens := p.questions[p.index].Tokens
	return lo.Map(p.selection, func(i int, _ int) string { return tokens[i] })
}

func (p *Practice) orderedLocked() (Question, bool) {
	if p.phase != PhaseRendered {
		return Question{}, false
	}
	q := p.questions[p.index]
	return q, q.Kind == KindOrdered
}

// PlayCue replays the current question's audio cue, if it has one.
func (p *Practice) PlayCue() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhaseRendered && p.phase != PhaseAnswered {
		return
	}
	q := p.questions[p.index]
	p.cues.play(q.TTSText, q.TTSLang)
}

// Current returns the question on screen.
func (p *Practice) Current() (Question, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhaseRendered && p.phase != PhaseAnswered {
		return Question{}, false
	}
	return p.questions[p.index], true
}

// State returns a snapshot of the session.
func (p *Practice) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		SessionID: p.sessionID,
		Phase:     p.phase,
		Index:     p.index,
		Total:     len(p.questions),
		Hearts:    p.hearts,
		XP:        p.xp,
		Correct:   p.correct,
		Wrong:     p.wrong,
		Answered:  p.phase == PhaseAnswered,
		Selection: p.selectionLocked(),
	}
}
