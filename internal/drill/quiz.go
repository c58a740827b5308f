package drill

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"languagecoach/internal/progress"
)

// QuizState is a snapshot of a quiz session.
type QuizState struct {
	SessionID string
	Phase     Phase
	Index     int
	Total     int
	Correct   int
	Wrong     int
}

// Quiz runs a lesson quiz: multiple choice only, no hearts, and a single
// completion report when the learner reaches the results.
type Quiz struct {
	mu        sync.Mutex
	questions []QuizQuestion
	opts      Options
	log       logrus.FieldLogger
	cues      *cueTrack

	sessionID string
	phase     Phase
	index     int
	correct   int
	wrong     int
	completed bool
}

// NewQuiz creates a quiz engine over questions.
func NewQuiz(questions []QuizQuestion, opts Options) *Quiz {
	opts = opts.withDefaults()
	q := &Quiz{
		questions: questions,
		opts:      opts,
		log:       opts.Logger.WithField("drill", "quiz"),
	}
	q.cues = newCueTrack(&q.mu, opts.Scheduler, opts.Speaker)
	return q
}

// Start begins (or restarts) the quiz. It reports false when there are no
// questions.
func (q *Quiz) Start(ctx context.Context) bool {
	q.mu.Lock()
	if len(q.questions) == 0 {
		q.mu.Unlock()
		return false
	}
	q.cues.reset()
	q.sessionID = uuid.NewString()
	q.index = 0
	q.correct = 0
	q.wrong = 0
	q.completed = false
	view, counters := q.renderLocked()
	q.mu.Unlock()

	q.opts.Presenter.Render(view)
	q.opts.Presenter.UpdateCounters(counters)
	return true
}

func (q *Quiz) renderLocked() (View, Counters) {
	qq := q.questions[q.index]
	q.phase = PhaseRendered
	view := View{
		Index:    q.index,
		Total:    len(q.questions),
		Kind:     KindChoice,
		Mode:     qq.Mode,
		PromptEN: qq.QuestionEN,
		PromptBN: qq.QuestionBN,
		Choices:  append([]string(nil), qq.Choices...),
		HasCue:   strings.TrimSpace(qq.TTSText) != "",
	}
	return view, q.countersLocked(q.index)
}

func (q *Quiz) countersLocked(completed int) Counters {
	return Counters{
		Correct:  q.correct,
		Wrong:    q.wrong,
		Progress: percent(completed, len(q.questions)),
	}
}

// Choose submits a choice for the current question. Only an exact match
// with the recorded answer is correct.
func (q *Quiz) Choose(ctx context.Context, choice string) (Feedback, bool) {
	q.mu.Lock()
	ans, ok := q.chooseLocked(choice)
	q.mu.Unlock()
	if !ok {
		return Feedback{}, false
	}
	q.deliver(ctx, ans)
	return ans.feedback, true
}

// ChooseNth submits the nth (1-based) choice of the current question.
func (q *Quiz) ChooseNth(ctx context.Context, n int) (Feedback, bool) {
	q.mu.Lock()
	if q.phase != PhaseRendered {
		q.mu.Unlock()
		return Feedback{}, false
	}
	choices := q.questions[q.index].Choices
	if n < 1 || n > len(choices) {
		q.mu.Unlock()
		return Feedback{}, false
	}
	ans, ok := q.chooseLocked(choices[n-1])
	q.mu.Unlock()
	if !ok {
		return Feedback{}, false
	}
	q.deliver(ctx, ans)
	return ans.feedback, true
}

// quizAnswer carries an accepted answer's side effects out of the lock.
type quizAnswer struct {
	sessionID string
	word      string
	feedback  Feedback
	counters  Counters
}

func (q *Quiz) chooseLocked(choice string) (quizAnswer, bool) {
	if q.phase != PhaseRendered {
		return quizAnswer{}, false
	}
	qq := q.questions[q.index]
	correct := choice == qq.Correct

	q.phase = PhaseAnswered
	xp := DefaultXPWrong
	if correct {
		q.correct++
		xp = DefaultXPCorrect
	} else {
		q.wrong++
	}
	return quizAnswer{
		sessionID: q.sessionID,
		word:      qq.Word,
		feedback:  Feedback{Correct: correct, Given: choice, Answer: qq.Correct, XP: xp},
		counters:  q.countersLocked(q.index + 1),
	}, true
}

func (q *Quiz) deliver(ctx context.Context, ans quizAnswer) {
	if strings.TrimSpace(ans.word) != "" {
		q.opts.Reporter.ReportWord(progress.WithSession(ctx, ans.sessionID), progress.WordResult{
			Language: q.opts.Language,
			Word:     ans.word,
			Correct:  progress.Flag(ans.feedback.Correct),
			Source:   progress.SourceQuiz,
			XP:       ans.feedback.XP,
		})
	}
	q.opts.Presenter.ShowFeedback(ans.feedback)
	q.opts.Presenter.UpdateCounters(ans.counters)
}

// Advance moves to the next question. Reaching the end shows the results
// and reports the lesson score once per run.
func (q *Quiz) Advance(ctx context.Context) Phase {
	q.mu.Lock()
	if q.phase != PhaseAnswered {
		phase := q.phase
		q.mu.Unlock()
		return phase
	}
	q.cues.reset()

	if q.index+1 < len(q.questions) {
		q.index++
		view, counters := q.renderLocked()
		q.mu.Unlock()

		q.opts.Presenter.Render(view)
		q.opts.Presenter.UpdateCounters(counters)
		return PhaseRendered
	}

	q.phase = PhaseEnded
	answered := q.correct + q.wrong
	pct := percent(q.correct, answered)
	summary := Summary{
		Correct: q.correct,
		Wrong:   q.wrong,
		Total:   answered,
		Percent: pct,
		Tier:    QuizTier(pct),
	}
	report := !q.completed && q.opts.Language != "" && q.opts.LessonID != 0
	q.completed = true
	sessionID := q.sessionID
	q.log.WithFields(logrus.Fields{
		"session": sessionID,
		"percent": pct,
	}).Debug("quiz ended")
	q.mu.Unlock()

	q.opts.Presenter.ShowResults(summary)
	if report {
		q.opts.Reporter.ReportCompletion(progress.WithSession(ctx, sessionID), progress.LessonResult{
			Language: q.opts.Language,
			LessonID: q.opts.LessonID,
			Score:    pct,
		})
	}
	return PhaseEnded
}

// PlayCue speaks the current question's word.
func (q *Quiz) PlayCue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase != PhaseRendered && q.phase != PhaseAnswered {
		return
	}
	qq := q.questions[q.index]
	q.cues.play(qq.TTSText, qq.TTSLang)
}

// State returns a snapshot of the quiz.
func (q *Quiz) State() QuizState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QuizState{
		SessionID: q.sessionID,
		Phase:     q.phase,
		Index:     q.index,
		Total:     len(q.questions),
		Correct:   q.correct,
		Wrong:     q.wrong,
	}
}
