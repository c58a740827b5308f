// Package drill implements the interactive exercise engines: practice,
// dictation, quiz and flashcards.
//
// Each engine owns its session state behind a mutex and talks to the outside
// world only through injected collaborators: a Presenter for display, a
// Reporter for progress telemetry, a Speaker for audio cues and a
// schedule.Scheduler for delayed work. Presenter and Reporter calls are made
// after the engine lock is released.
package drill

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/progress"
	"languagecoach/internal/schedule"
)

// Kind is the interaction style of a practice question.
type Kind string

const (
	KindChoice  Kind = "mcq"
	KindTyped   Kind = "type"
	KindOrdered Kind = "order"
)

const (
	// StartingHearts is the wrong-answer budget of a practice session.
	StartingHearts = 3

	DefaultXPCorrect   = 10
	DefaultXPWrong     = 2
	DictationXPCorrect = 15
	DictationXPWrong   = 3

	// AutoCueDelay lets the view settle before a listening cue plays.
	AutoCueDelay = 350 * time.Millisecond
)

// Question is one practice item.
type Question struct {
	ID        int      `json:"id,omitempty"`
	Kind      Kind     `json:"kind"`
	Mode      string   `json:"mode,omitempty"`
	ModeLabel string   `json:"mode_label,omitempty"`
	PromptEN  string   `json:"prompt_en"`
	PromptBN  string   `json:"prompt_bn,omitempty"`
	HintBN    string   `json:"hint_bn,omitempty"`
	Answer    string   `json:"answer"`
	Sentence  string   `json:"sentence,omitempty"`
	Choices   []string `json:"choices,omitempty"`
	Tokens    []string `json:"tokens,omitempty"`
	TTSText   string   `json:"tts_text,omitempty"`
	TTSLang   string   `json:"tts_lang,omitempty"`
	Word      string   `json:"word,omitempty"`
	XPCorrect *int     `json:"xp_correct,omitempty"`
	XPWrong   *int     `json:"xp_wrong,omitempty"`
}

// Listening reports whether the question is an audio-first exercise.
func (q Question) Listening() bool {
	return strings.HasPrefix(q.Mode, "listen")
}

// ExpectedText is the answer shown to the learner after a submission.
func (q Question) ExpectedText() string {
	if q.Kind == KindOrdered && strings.TrimSpace(q.Answer) == "" {
		return q.Sentence
	}
	return q.Answer
}

func (q Question) xpFor(correct bool) int {
	xp := DefaultXPWrong
	override := q.XPWrong
	if correct {
		xp = DefaultXPCorrect
		override = q.XPCorrect
	}
	if override != nil {
		xp = *override
	}
	if xp < 0 {
		return 0
	}
	return xp
}

// DictationItem is one listen-and-type vocabulary entry.
type DictationItem struct {
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation,omitempty"`
	English       string `json:"english,omitempty"`
	Bengali       string `json:"bengali,omitempty"`
	TTSText       string `json:"tts_text"`
	TTSLang       string `json:"tts_lang"`
}

// QuizQuestion is a multiple-choice lesson quiz item. Grammar questions
// carry no Word and are not reported per word.
type QuizQuestion struct {
	Kind       string   `json:"kind,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	Word       string   `json:"word,omitempty"`
	TTSText    string   `json:"tts_text,omitempty"`
	TTSLang    string   `json:"tts_lang,omitempty"`
	QuestionEN string   `json:"question_en"`
	QuestionBN string   `json:"question_bn,omitempty"`
	Correct    string   `json:"correct"`
	Choices    []string `json:"choices"`
}

// VocabEntry is a flashcard.
type VocabEntry struct {
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation,omitempty"`
	English       string `json:"english"`
	Bengali       string `json:"bengali,omitempty"`
	Example       string `json:"example,omitempty"`
	ExampleEN     string `json:"example_en,omitempty"`
	ExampleBN     string `json:"example_bn,omitempty"`
	TTSLang       string `json:"tts_lang,omitempty"`
}

// Phase is the lifecycle position of a question-driven session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRendered
	PhaseAnswered
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRendered:
		return "rendered"
	case PhaseAnswered:
		return "answered"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Response is a learner submission. Choice is read for multiple-choice
// questions, Text for typed ones and Tokens for ordered ones. An ordered
// submission without tokens uses the pending selection.
type Response struct {
	Choice string
	Text   string
	Tokens []string
}

// View is what the presentation layer needs to draw the current item.
type View struct {
	Index     int
	Total     int
	Kind      Kind
	Mode      string
	ModeLabel string
	PromptEN  string
	PromptBN  string
	Hint      string
	Choices   []string
	Tokens    []string
	HasCue    bool
}

// Feedback describes the outcome of one submission. The dictation engine
// also fills the reveal fields.
type Feedback struct {
	Correct bool
	Given   string
	Answer  string
	XP      int

	Word          string
	Pronunciation string
	English       string
	Bengali       string
}

// Counters is the running scoreboard. Hearts is zero for drills that do not
// use hearts. Progress is the percentage of items completed.
type Counters struct {
	Hearts   int
	XP       int
	Correct  int
	Wrong    int
	Progress int
}

// Summary is shown when a session ends.
type Summary struct {
	Correct int
	Wrong   int
	Total   int
	Percent int
	XP      int
	Hearts  int
	// Score is "correct / total"; only dictation fills it.
	Score string
	Tier  Tier
}

// Presenter is the view layer driven by an engine.
type Presenter interface {
	Render(v View)
	ShowFeedback(f Feedback)
	UpdateCounters(c Counters)
	ShowResults(s Summary)
}

// Reporter receives progress telemetry. Implementations must not block.
type Reporter interface {
	ReportWord(ctx context.Context, result progress.WordResult)
	ReportCompletion(ctx context.Context, result progress.LessonResult)
}

// Speaker plays an audio cue. speech.Adapter satisfies it.
type Speaker interface {
	Speak(text, lang string) schedule.Task
}

// Options wires an engine to its collaborators. Nil collaborators are
// replaced by no-op implementations.
type Options struct {
	Language  string
	LessonID  int64
	Presenter Presenter
	Reporter  Reporter
	Speaker   Speaker
	Scheduler schedule.Scheduler
	Logger    logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Presenter == nil {
		o.Presenter = NopPresenter{}
	}
	if o.Reporter == nil {
		o.Reporter = nopReporter{}
	}
	if o.Speaker == nil {
		o.Speaker = nopSpeaker{}
	}
	if o.Scheduler == nil {
		o.Scheduler = schedule.Real{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) Render(View)             {}
func (NopPresenter) ShowFeedback(Feedback)   {}
func (NopPresenter) UpdateCounters(Counters) {}
func (NopPresenter) ShowResults(Summary)     {}

type nopReporter struct{}

func (nopReporter) ReportWord(context.Context, progress.WordResult)         {}
func (nopReporter) ReportCompletion(context.Context, progress.LessonResult) {}

type nopSpeaker struct{}

func (nopSpeaker) Speak(string, string) schedule.Task { return schedule.Noop{} }

// percent is 100*part/whole rounded half up, or 0 for an empty whole.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
