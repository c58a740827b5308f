package drill

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/progress"
	"languagecoach/internal/schedule"
)

type recordingPresenter struct {
	mu       sync.Mutex
	views    []View
	feedback []Feedback
	counters []Counters
	results  []Summary
}

func (p *recordingPresenter) Render(v View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
}

func (p *recordingPresenter) ShowFeedback(f Feedback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feedback = append(p.feedback, f)
}

func (p *recordingPresenter) UpdateCounters(c Counters) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counters = append(p.counters, c)
}

func (p *recordingPresenter) ShowResults(s Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, s)
}

func (p *recordingPresenter) lastCounters() Counters {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.counters) == 0 {
		return Counters{}
	}
	return p.counters[len(p.counters)-1]
}

type recordingReporter struct {
	mu        sync.Mutex
	words     []progress.WordResult
	lessons   []progress.LessonResult
	sessionID string
}

func (r *recordingReporter) ReportWord(ctx context.Context, result progress.WordResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.words = append(r.words, result)
	r.sessionID = progress.SessionFromContext(ctx)
}

func (r *recordingReporter) ReportCompletion(ctx context.Context, result progress.LessonResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lessons = append(r.lessons, result)
}

type spoken struct {
	text string
	lang string
}

type recordingSpeaker struct {
	mu   sync.Mutex
	cues []spoken
}

func (s *recordingSpeaker) Speak(text, lang string) schedule.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cues = append(s.cues, spoken{text: text, lang: lang})
	return schedule.Noop{}
}

func (s *recordingSpeaker) said() []spoken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]spoken(nil), s.cues...)
}

type harness struct {
	presenter *recordingPresenter
	reporter  *recordingReporter
	speaker   *recordingSpeaker
	clock     *schedule.Manual
}

func newHarness() *harness {
	return &harness{
		presenter: &recordingPresenter{},
		reporter:  &recordingReporter{},
		speaker:   &recordingSpeaker{},
		clock:     schedule.NewManual(),
	}
}

func (h *harness) options() Options {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return Options{
		Language:  "french",
		LessonID:  3,
		Presenter: h.presenter,
		Reporter:  h.reporter,
		Speaker:   h.speaker,
		Scheduler: h.clock,
		Logger:    log,
	}
}

func intPtr(v int) *int { return &v }

func choiceQuestion(word, answer string, choices ...string) Question {
	return Question{
		Kind:     KindChoice,
		Mode:     "word_to_english",
		PromptEN: "What does " + word + " mean?",
		Answer:   answer,
		Choices:  choices,
		Word:     word,
	}
}
