// Package keyboard turns key presses into drill actions.
package keyboard

import (
	"context"
	"strings"

	"languagecoach/internal/drill"
)

// Target is the element that had focus when a key was pressed.
type Target int

const (
	// Page is any non-editable element.
	Page Target = iota
	// TextInput is an editable field the drill does not own.
	TextInput
	// AnswerInput is the drill's own answer field.
	AnswerInput
)

// Key names used by the routers.
const (
	KeyEnter = "Enter"
	KeyCue   = "l"

	// MaxChoiceKey is the highest digit key that picks a choice.
	MaxChoiceKey = 4
)

// Event is one key press.
type Event struct {
	Key    string
	Target Target
	// Composing is set while an input method is assembling a character.
	Composing bool
	// Modified is set when ctrl, alt or meta is held.
	Modified bool
	// Value is the answer field's text at the time of the press.
	Value string
}

// PracticeDrill is the part of drill.Practice the router drives.
type PracticeDrill interface {
	Current() (drill.Question, bool)
	State() drill.State
	Submit(ctx context.Context, r drill.Response) (drill.Feedback, bool)
	ChooseNth(ctx context.Context, n int) (drill.Feedback, bool)
	Advance(ctx context.Context) drill.Phase
	PlayCue()
}

// DictationDrill is the part of drill.Dictation the router drives.
type DictationDrill interface {
	Phase() drill.Phase
	Submit(ctx context.Context, text string) (drill.Feedback, bool)
	Advance(ctx context.Context) drill.Phase
	PlayCue()
}

// QuizDrill is the part of drill.Quiz the router drives.
type QuizDrill interface {
	State() drill.QuizState
	ChooseNth(ctx context.Context, n int) (drill.Feedback, bool)
	Advance(ctx context.Context) drill.Phase
	PlayCue()
}

// Router dispatches key events to one drill. The zero Router ignores
// everything.
type Router struct {
	dispatch func(ctx context.Context, ev Event) bool
}

// Handle routes ev and reports whether it triggered an action.
func (r *Router) Handle(ctx context.Context, ev Event) bool {
	if r == nil || r.dispatch == nil {
		return false
	}
	if ev.Composing || ev.Modified {
		return false
	}
	switch ev.Target {
	case TextInput:
		return false
	case AnswerInput:
		if ev.Key != KeyEnter {
			return false
		}
	}
	return r.dispatch(ctx, ev)
}

// NewPracticeRouter binds the practice key table:
//
//	l       replay the cue
//	Enter   advance after feedback, or submit a typed/ordered answer
//	1-4     pick the nth choice of a multiple-choice question
func NewPracticeRouter(d PracticeDrill) *Router {
	if d == nil {
		return &Router{}
	}
	return &Router{dispatch: func(ctx context.Context, ev Event) bool {
		st := d.State()
		switch {
		case isCueKey(ev.Key):
			if st.Phase != drill.PhaseRendered && st.Phase != drill.PhaseAnswered {
				return false
			}
			d.PlayCue()
			return true

		case ev.Key == KeyEnter:
			if st.Phase == drill.PhaseAnswered {
				d.Advance(ctx)
				return true
			}
			q, ok := d.Current()
			if !ok || st.Phase != drill.PhaseRendered {
				return false
			}
			switch q.Kind {
			case drill.KindTyped:
				_, ok := d.Submit(ctx, drill.Response{Text: ev.Value})
				return ok
			case drill.KindOrdered:
				_, ok := d.Submit(ctx, drill.Response{})
				return ok
			}
			return false

		default:
			n, ok := choiceDigit(ev.Key)
			if !ok || st.Phase != drill.PhaseRendered {
				return false
			}
			_, ok = d.ChooseNth(ctx, n)
			return ok
		}
	}}
}

// NewDictationRouter binds the dictation key table:
//
//	l       replay the cue
//	Enter   submit the typed word, or advance once it is revealed
func NewDictationRouter(d DictationDrill) *Router {
	if d == nil {
		return &Router{}
	}
	return &Router{dispatch: func(ctx context.Context, ev Event) bool {
		phase := d.Phase()
		switch {
		case isCueKey(ev.Key):
			if phase != drill.PhaseRendered && phase != drill.PhaseAnswered {
				return false
			}
			d.PlayCue()
			return true
		case ev.Key == KeyEnter:
			switch phase {
			case drill.PhaseRendered:
				_, ok := d.Submit(ctx, ev.Value)
				return ok
			case drill.PhaseAnswered:
				d.Advance(ctx)
				return true
			}
		}
		return false
	}}
}

// NewQuizRouter binds the quiz key table: digits choose, Enter advances and
// l replays the cue.
func NewQuizRouter(d QuizDrill) *Router {
	if d == nil {
		return &Router{}
	}
	return &Router{dispatch: func(ctx context.Context, ev Event) bool {
		phase := d.State().Phase
		switch {
		case isCueKey(ev.Key):
			if phase != drill.PhaseRendered && phase != drill.PhaseAnswered {
				return false
			}
			d.PlayCue()
			return true
		case ev.Key == KeyEnter:
			if phase != drill.PhaseAnswered {
				return false
			}
			d.Advance(ctx)
			return true
		default:
			n, ok := choiceDigit(ev.Key)
			if !ok || phase != drill.PhaseRendered {
				return false
			}
			_, ok = d.ChooseNth(ctx, n)
			return ok
		}
	}}
}

func isCueKey(key string) bool {
	return strings.EqualFold(key, KeyCue)
}

func choiceDigit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || int(key[0]-'0') > MaxChoiceKey {
		return 0, false
	}
	return int(key[0] - '0'), true
}
