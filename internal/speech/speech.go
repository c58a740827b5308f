// Package speech wraps a text-to-speech engine for short learner cues.
//
// Some engines stop responding after a period of inactivity, or drop an
// utterance that is issued in the same tick as a cancel. The Adapter always
// resumes and cancels the engine first and then dispatches the new utterance
// after a short delay.
package speech

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/schedule"
)

const (
	// DispatchDelay separates cancel from speak.
	DispatchDelay = 50 * time.Millisecond

	// LearnerRate is slower than the engine default of 1.0.
	LearnerRate = 0.9
)

// Voice is one voice offered by an engine.
type Voice struct {
	Name    string
	Lang    string
	Default bool
}

// Utterance is a single speak request.
type Utterance struct {
	Text  string
	Lang  string
	Rate  float64
	Voice *Voice // nil lets the engine pick
}

// Engine is the platform speech capability.
type Engine interface {
	Resume() error
	Cancel() error
	Speak(u Utterance) error
	// Voices may be empty until the engine has finished loading them.
	Voices() []Voice
}

// Adapter issues cues on an Engine. A nil engine makes every call a no-op.
type Adapter struct {
	engine    Engine
	scheduler schedule.Scheduler
	log       logrus.FieldLogger
}

// NewAdapter creates an adapter. engine may be nil.
func NewAdapter(engine Engine, scheduler schedule.Scheduler, log logrus.FieldLogger) *Adapter {
	if scheduler == nil {
		scheduler = schedule.Real{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Adapter{engine: engine, scheduler: scheduler, log: log}
}

// Speak queues text in the given language. The returned task can be stopped
// to drop the utterance before it is dispatched.
func (a *Adapter) Speak(text, lang string) schedule.Task {
	text = strings.TrimSpace(text)
	if a == nil || a.engine == nil || text == "" {
		return schedule.Noop{}
	}

	a.call("resume", a.engine.Resume)
	a.call("cancel", a.engine.Cancel)

	return a.scheduler.AfterFunc(DispatchDelay, func() {
		u := Utterance{
			Text:  text,
			Lang:  lang,
			Rate:  LearnerRate,
			Voice: a.pickVoice(lang),
		}
		a.call("speak", func() error { return a.engine.Speak(u) })
	})
}

// Stop cancels whatever the engine is currently saying.
func (a *Adapter) Stop() {
	if a == nil || a.engine == nil {
		return
	}
	a.call("cancel", a.engine.Cancel)
}

func (a *Adapter) pickVoice(lang string) *Voice {
	var voices []Voice
	a.call("voices", func() error {
		voices = a.engine.Voices()
		return nil
	})
	v, ok := SelectVoice(voices, lang)
	if !ok {
		return nil
	}
	return &v
}

// call runs an engine operation and discards any error or panic.
func (a *Adapter) call(op string, f func() error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithField("op", op).Debugf("speech engine panicked: %v", r)
		}
	}()
	if err := f(); err != nil {
		a.log.WithField("op", op).WithError(err).Debug("speech engine call failed")
	}
}

// SelectVoice prefers an exact language-tag match, then a voice sharing the
// primary subtag ("fr" for "fr-FR"). ok is false when neither exists.
func SelectVoice(voices []Voice, lang string) (Voice, bool) {
	want := canonicalTag(lang)
	if want == "" || len(voices) == 0 {
		return Voice{}, false
	}
	for _, v := range voices {
		if canonicalTag(v.Lang) == want {
			return v, true
		}
	}
	primary := primarySubtag(want)
	for _, v := range voices {
		if primarySubtag(canonicalTag(v.Lang)) == primary {
			return v, true
		}
	}
	return Voice{}, false
}

func canonicalTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

func primarySubtag(tag string) string {
	primary, _, _ := strings.Cut(tag, "-")
	return primary
}

// String renders an utterance for logs.
func (u Utterance) String() string {
	voice := "default"
	if u.Voice != nil {
		voice = u.Voice.Name
	}
	return fmt.Sprintf("%q [%s, rate %.2f, voice %s]", u.Text, u.Lang, u.Rate, voice)
}
