package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"languagecoach/internal/drill"
)

var (
	correctColor = color.New(color.FgGreen, color.Bold)
	wrongColor   = color.New(color.FgRed, color.Bold)
	headingColor = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
)

// terminalPresenter draws drills as plain text. Speech cues fire on timer
// goroutines, so writes are serialized.
type terminalPresenter struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalPresenter(out io.Writer) *terminalPresenter {
	return &terminalPresenter{out: out}
}

func (p *terminalPresenter) Render(v drill.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out)
	label := v.ModeLabel
	if label == "" {
		label = v.Mode
	}
	heading := fmt.Sprintf("Question %d/%d", v.Index+1, v.Total)
	if label != "" {
		heading += "  [" + label + "]"
	}
	headingColor.Fprintln(p.out, heading)

	if v.PromptEN != "" {
		fmt.Fprintln(p.out, v.PromptEN)
	}
	if v.PromptBN != "" {
		dimColor.Fprintln(p.out, v.PromptBN)
	}
	if v.Hint != "" {
		dimColor.Fprintf(p.out, "Hint: %s\n", v.Hint)
	}
	for i, c := range v.Choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
	}
	if len(v.Tokens) > 0 {
		parts := make([]string, len(v.Tokens))
		for i, t := range v.Tokens {
			parts[i] = fmt.Sprintf("%d:%s", i+1, t)
		}
		fmt.Fprintf(p.out, "Tokens: %s\n", strings.Join(parts, "  "))
		dimColor.Fprintln(p.out, "Type the token numbers in order, e.g. 2 1 3")
	}
	if v.HasCue {
		dimColor.Fprintln(p.out, "(l) replay audio")
	}
}

func (p *terminalPresenter) ShowFeedback(f drill.Feedback) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f.Correct {
		correctColor.Fprintf(p.out, "✓ Correct! +%d XP\n", f.XP)
	} else {
		wrongColor.Fprintf(p.out, "✗ Not quite. Answer: %s\n", f.Answer)
	}
	if f.Word != "" {
		reveal := f.Word
		if f.Pronunciation != "" {
			reveal += " /" + f.Pronunciation + "/"
		}
		if f.English != "" {
			reveal += " = " + f.English
		}
		fmt.Fprintln(p.out, reveal)
		if f.Bengali != "" {
			dimColor.Fprintln(p.out, f.Bengali)
		}
	}
	dimColor.Fprintln(p.out, "Press Enter to continue")
}

func (p *terminalPresenter) UpdateCounters(c drill.Counters) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var parts []string
	if c.Hearts > 0 {
		parts = append(parts, strings.Repeat("♥", c.Hearts))
	}
	parts = append(parts,
		fmt.Sprintf("XP %d", c.XP),
		fmt.Sprintf("✓ %d", c.Correct),
		fmt.Sprintf("✗ %d", c.Wrong),
		fmt.Sprintf("%d%%", c.Progress),
	)
	dimColor.Fprintln(p.out, strings.Join(parts, "  "))
}

func (p *terminalPresenter) ShowResults(s drill.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out)
	headingColor.Fprintf(p.out, "%s %s\n", s.Tier.Emoji, s.Tier.Title)
	if s.Tier.TitleBN != "" {
		dimColor.Fprintln(p.out, s.Tier.TitleBN)
	}
	score := s.Score
	if score == "" {
		score = fmt.Sprintf("%d / %d", s.Correct, s.Total)
	}
	fmt.Fprintf(p.out, "Score: %s (%d%%)  XP: %d\n", score, s.Percent, s.XP)
}

func (p *terminalPresenter) ShowCard(v drill.CardView) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v.Total == 0 {
		return
	}
	fmt.Fprintln(p.out)
	headingColor.Fprintf(p.out, "Card %d/%d", v.Index+1, v.Total)
	dimColor.Fprintf(p.out, "  known %d  unknown %d\n", v.Known, v.Unknown)

	if v.Flipped {
		fmt.Fprintln(p.out, v.Card.English)
		if v.Card.Bengali != "" {
			dimColor.Fprintln(p.out, v.Card.Bengali)
		}
		if v.Card.Example != "" {
			fmt.Fprintf(p.out, "  %s\n", v.Card.Example)
			if v.Card.ExampleEN != "" {
				dimColor.Fprintf(p.out, "  %s\n", v.Card.ExampleEN)
			}
		}
	} else {
		word := v.Card.Word
		if v.Card.Pronunciation != "" {
			word += " /" + v.Card.Pronunciation + "/"
		}
		fmt.Fprintln(p.out, word)
	}

	switch v.Mark {
	case drill.Known:
		correctColor.Fprintln(p.out, "marked known")
	case drill.Unknown:
		wrongColor.Fprintln(p.out, "marked unknown")
	}
	if v.Complete {
		headingColor.Fprintf(p.out, "Deck complete: %d known, %d to review\n", v.Known, v.Unknown)
		return
	}
	dimColor.Fprintln(p.out, "(f)lip  (k)nown  (u)nknown  (n)ext  (p)rev  (s)huffle  (r)estart  (l) audio")
}
