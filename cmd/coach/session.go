package main

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"languagecoach/internal/drill"
	"languagecoach/internal/keyboard"
)

// quitCommand ends a session early. It cannot collide with a typed answer.
const quitCommand = ":q"

// lineDrill applies one line of learner input to a drill and reports
// whether the drill has ended.
type lineDrill interface {
	handle(ctx context.Context, line string) (ended bool)
}

// runLines feeds in to d until the drill ends, the learner quits or input
// runs out.
func runLines(ctx context.Context, d lineDrill, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == quitCommand {
			return nil
		}
		if d.handle(ctx, line) {
			return nil
		}
	}
	return scanner.Err()
}

// lineEvent maps a terminal line onto the key event a browser would send:
// a blank line is Enter and "l" replays the cue. When typing is false a
// digit from 1 to keyboard.MaxChoiceKey picks a choice. Anything else is an
// answer submitted from the answer field.
func lineEvent(line string, typing bool) keyboard.Event {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return keyboard.Event{Key: keyboard.KeyEnter, Target: keyboard.Page}
	case strings.EqualFold(trimmed, keyboard.KeyCue):
		return keyboard.Event{Key: keyboard.KeyCue, Target: keyboard.Page}
	case !typing && len(trimmed) == 1 && trimmed[0] >= '1' && int(trimmed[0]-'0') <= keyboard.MaxChoiceKey:
		return keyboard.Event{Key: trimmed, Target: keyboard.Page}
	}
	return keyboard.Event{Key: keyboard.KeyEnter, Target: keyboard.AnswerInput, Value: line}
}

// extraChoice parses a choice number past the digit keys. The router has
// no key for those, so sessions pick them on the drill directly.
func extraChoice(line string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n <= keyboard.MaxChoiceKey {
		return 0, false
	}
	return n, true
}

// tokenIndices parses "2 1 3" into zero-based token positions.
func tokenIndices(line string) ([]int, bool) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return nil, false
	}
	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return nil, false
		}
		indices = append(indices, n-1)
	}
	return indices, true
}

type practiceSession struct {
	drill  *drill.Practice
	router *keyboard.Router
}

func newPracticeSession(p *drill.Practice) *practiceSession {
	return &practiceSession{drill: p, router: keyboard.NewPracticeRouter(p)}
}

func (s *practiceSession) handle(ctx context.Context, line string) bool {
	q, ok := s.drill.Current()
	if ok && q.Kind == drill.KindOrdered && s.drill.State().Phase == drill.PhaseRendered {
		if indices, ok := tokenIndices(line); ok {
			s.drill.ClearSelection()
			for _, i := range indices {
				s.drill.Pick(i)
			}
			s.router.Handle(ctx, keyboard.Event{Key: keyboard.KeyEnter, Target: keyboard.Page})
			return s.drill.State().Phase == drill.PhaseEnded
		}
	}
	if ok && q.Kind == drill.KindChoice {
		if n, ok := extraChoice(line); ok {
			s.drill.ChooseNth(ctx, n)
			return s.drill.State().Phase == drill.PhaseEnded
		}
	}
	s.router.Handle(ctx, lineEvent(line, ok && q.Kind == drill.KindTyped))
	return s.drill.State().Phase == drill.PhaseEnded
}

type dictationSession struct {
	drill  *drill.Dictation
	router *keyboard.Router
}

func newDictationSession(d *drill.Dictation) *dictationSession {
	return &dictationSession{drill: d, router: keyboard.NewDictationRouter(d)}
}

func (s *dictationSession) handle(ctx context.Context, line string) bool {
	s.router.Handle(ctx, lineEvent(line, true))
	return s.drill.Phase() == drill.PhaseEnded
}

type quizSession struct {
	drill  *drill.Quiz
	router *keyboard.Router
}

func newQuizSession(q *drill.Quiz) *quizSession {
	return &quizSession{drill: q, router: keyboard.NewQuizRouter(q)}
}

func (s *quizSession) handle(ctx context.Context, line string) bool {
	if n, ok := extraChoice(line); ok {
		s.drill.ChooseNth(ctx, n)
		return s.drill.State().Phase == drill.PhaseEnded
	}
	s.router.Handle(ctx, lineEvent(line, false))
	return s.drill.State().Phase == drill.PhaseEnded
}

// deckSession drives flashcards with single-letter commands. The session
// ends once every card carries a mark.
type deckSession struct {
	deck *drill.Deck
}

func (s *deckSession) handle(ctx context.Context, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "f", "":
		s.deck.Flip()
	case "k":
		s.deck.MarkCurrent(ctx, true)
	case "u":
		s.deck.MarkCurrent(ctx, false)
	case "n":
		s.deck.Next()
	case "p":
		s.deck.Prev()
	case "s":
		s.deck.Shuffle(ctx)
	case "r":
		s.deck.Restart(ctx)
	case keyboard.KeyCue:
		s.deck.PlayCue()
	}
	return s.deck.View().Complete
}
