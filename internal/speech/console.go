package speech

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleEngine prints utterances instead of playing them. It backs the
// terminal drill runner, where no audio device is assumed.
type ConsoleEngine struct {
	mu     sync.Mutex
	out    io.Writer
	voices []Voice
}

// NewConsoleEngine creates an engine that writes to out.
func NewConsoleEngine(out io.Writer, voices ...Voice) *ConsoleEngine {
	return &ConsoleEngine{out: out, voices: voices}
}

func (e *ConsoleEngine) Resume() error { return nil }

func (e *ConsoleEngine) Cancel() error { return nil }

func (e *ConsoleEngine) Speak(u Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := fmt.Fprintf(e.out, "🔊 %s\n", u)
	return err
}

func (e *ConsoleEngine) Voices() []Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Voice(nil), e.voices...)
}
