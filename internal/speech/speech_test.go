package speech

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/schedule"
)

type fakeEngine struct {
	calls      []string
	spoken     []Utterance
	voices     []Voice
	failResume bool
	panicSpeak bool
}

func (e *fakeEngine) Resume() error {
	e.calls = append(e.calls, "resume")
	if e.failResume {
		return errors.New("engine asleep")
	}
	return nil
}

func (e *fakeEngine) Cancel() error {
	e.calls = append(e.calls, "cancel")
	return nil
}

func (e *fakeEngine) Speak(u Utterance) error {
	e.calls = append(e.calls, "speak")
	if e.panicSpeak {
		panic("synthesis crashed")
	}
	e.spoken = append(e.spoken, u)
	return nil
}

func (e *fakeEngine) Voices() []Voice { return e.voices }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func TestSpeakResumesCancelsThenDelays(t *testing.T) {
	engine := &fakeEngine{voices: []Voice{{Name: "Amélie", Lang: "fr-FR"}}}
	clock := schedule.NewManual()
	a := NewAdapter(engine, clock, quietLogger())

	a.Speak("bonjour", "fr-FR")

	if got := strings.Join(engine.calls, ","); got != "resume,cancel" {
		t.Fatalf("calls before delay = %q, want resume,cancel", got)
	}

	clock.Advance(DispatchDelay - time.Millisecond)
	if len(engine.spoken) != 0 {
		t.Fatal("utterance dispatched before the delay elapsed")
	}

	clock.Advance(time.Millisecond)
	if len(engine.spoken) != 1 {
		t.Fatalf("spoken = %d utterances, want 1", len(engine.spoken))
	}
	u := engine.spoken[0]
	if u.Text != "bonjour" || u.Lang != "fr-FR" {
		t.Errorf("utterance = %+v", u)
	}
	if u.Rate >= 1.0 {
		t.Errorf("rate = %v, want below engine default", u.Rate)
	}
	if u.Voice == nil || u.Voice.Name != "Amélie" {
		t.Errorf("voice = %+v, want Amélie", u.Voice)
	}
}

func TestSpeakNoops(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		engine := &fakeEngine{}
		clock := schedule.NewManual()
		NewAdapter(engine, clock, quietLogger()).Speak("   ", "es-ES")
		clock.Advance(time.Second)
		if len(engine.calls) != 0 {
			t.Errorf("engine called %v for empty text", engine.calls)
		}
	})

	t.Run("no engine", func(t *testing.T) {
		task := NewAdapter(nil, schedule.NewManual(), quietLogger()).Speak("hola", "es-ES")
		if task == nil {
			t.Fatal("Speak returned nil task")
		}
	})
}

func TestSpeakSwallowsEngineFailures(t *testing.T) {
	engine := &fakeEngine{failResume: true, panicSpeak: true}
	clock := schedule.NewManual()
	a := NewAdapter(engine, clock, quietLogger())

	a.Speak("gracias", "es-ES")
	clock.Advance(DispatchDelay)

	if got := strings.Join(engine.calls, ","); got != "resume,cancel,speak" {
		t.Fatalf("calls = %q", got)
	}
}

func TestStoppedTaskIsNotSpoken(t *testing.T) {
	engine := &fakeEngine{}
	clock := schedule.NewManual()
	a := NewAdapter(engine, clock, quietLogger())

	task := a.Speak("merci", "fr-FR")
	task.Stop()
	clock.Advance(time.Second)

	if len(engine.spoken) != 0 {
		t.Fatalf("stopped utterance was spoken: %+v", engine.spoken)
	}
}

func TestSelectVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Jorge", Lang: "es-MX"},
		{Name: "Monica", Lang: "es_ES"},
		{Name: "Thomas", Lang: "fr-CA"},
	}

	tests := []struct {
		name   string
		lang   string
		want   string
		wantOK bool
	}{
		{name: "exact match beats primary", lang: "es-ES", want: "Monica", wantOK: true},
		{name: "case insensitive", lang: "ES-es", want: "Monica", wantOK: true},
		{name: "primary subtag fallback", lang: "fr-FR", want: "Thomas", wantOK: true},
		{name: "bare primary", lang: "es", want: "Jorge", wantOK: true},
		{name: "no match", lang: "bn-BD", wantOK: false},
		{name: "empty tag", lang: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := SelectVoice(voices, tt.lang)
			if ok != tt.wantOK {
				t.Fatalf("SelectVoice(%q) ok = %v, want %v", tt.lang, ok, tt.wantOK)
			}
			if ok && v.Name != tt.want {
				t.Errorf("SelectVoice(%q) = %s, want %s", tt.lang, v.Name, tt.want)
			}
		})
	}

	if _, ok := SelectVoice(nil, "fr-FR"); ok {
		t.Error("SelectVoice with no voices should not match")
	}
}

func TestConsoleEngine(t *testing.T) {
	var buf bytes.Buffer
	engine := NewConsoleEngine(&buf, Voice{Name: "Léa", Lang: "fr-FR"})
	clock := schedule.NewManual()

	NewAdapter(engine, clock, quietLogger()).Speak("au revoir", "fr-FR")
	clock.Advance(DispatchDelay)

	out := buf.String()
	if !strings.Contains(out, `"au revoir"`) || !strings.Contains(out, "Léa") {
		t.Errorf("console output = %q", out)
	}
}
