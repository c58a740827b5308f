package drill

import (
	"context"
	"testing"
	"time"

	"languagecoach/internal/progress"
)

func dictationItems() []DictationItem {
	return []DictationItem{
		{Word: "maison", Pronunciation: "meh-zon", English: "house", Bengali: "বাড়ি", TTSText: "maison", TTSLang: "fr-FR"},
		{Word: "pain", Pronunciation: "pan", English: "bread", Bengali: "রুটি", TTSText: "pain", TTSLang: "fr-FR"},
		{Word: "école", Pronunciation: "ay-kol", English: "school", Bengali: "বিদ্যালয়", TTSText: "école", TTSLang: "fr-FR"},
	}
}

func TestDictationScenario(t *testing.T) {
	h := newHarness()
	d := NewDictation(dictationItems(), h.options())
	if !d.Start(context.Background()) {
		t.Fatal("Start() reported false")
	}

	inputs := []string{"Maison", "pin", "ecole"}
	for i, in := range inputs {
		fb, ok := d.Submit(context.Background(), in)
		if !ok {
			t.Fatalf("item %d: Submit rejected", i)
		}
		if want := i != 1; fb.Correct != want {
			t.Errorf("item %d: correct = %v, want %v", i, fb.Correct, want)
		}
		d.Advance(context.Background())
	}

	if d.Phase() != PhaseEnded {
		t.Fatalf("phase = %v, want ended", d.Phase())
	}
	if len(h.presenter.results) != 1 {
		t.Fatalf("results shown %d times", len(h.presenter.results))
	}
	s := h.presenter.results[0]
	if s.Score != "2 / 3" {
		t.Errorf("Score = %q, want 2 / 3", s.Score)
	}
	if s.Percent != 67 {
		t.Errorf("Percent = %d, want 67", s.Percent)
	}
	if s.Tier.Title != "Keep Listening!" {
		t.Errorf("Tier = %q, want Keep Listening!", s.Tier.Title)
	}
}

func TestDictationRevealsRegardlessOfCorrectness(t *testing.T) {
	h := newHarness()
	d := NewDictation(dictationItems(), h.options())
	d.Start(context.Background())

	fb, _ := d.Submit(context.Background(), "mason")
	if fb.Correct {
		t.Fatal("misspelling judged correct")
	}
	if fb.Word != "maison" || fb.Pronunciation != "meh-zon" || fb.English != "house" || fb.Bengali != "বাড়ি" {
		t.Errorf("reveal = %+v", fb)
	}
}

func TestDictationReportsFixedRewards(t *testing.T) {
	h := newHarness()
	d := NewDictation(dictationItems(), h.options())
	d.Start(context.Background())

	d.Submit(context.Background(), "maison")
	d.Advance(context.Background())
	d.Submit(context.Background(), "")

	want := []progress.WordResult{
		{Language: "french", Word: "maison", Correct: true, Source: progress.SourceDictation, XP: DictationXPCorrect},
		{Language: "french", Word: "pain", Correct: false, Source: progress.SourceDictation, XP: DictationXPWrong},
	}
	if len(h.reporter.words) != len(want) {
		t.Fatalf("reports = %+v", h.reporter.words)
	}
	for i := range want {
		if h.reporter.words[i] != want[i] {
			t.Errorf("report %d = %+v, want %+v", i, h.reporter.words[i], want[i])
		}
	}
}

func TestDictationCueEveryItem(t *testing.T) {
	h := newHarness()
	d := NewDictation(dictationItems(), h.options())
	d.Start(context.Background())

	h.clock.Advance(AutoCueDelay)
	d.Submit(context.Background(), "maison")
	d.Advance(context.Background())
	h.clock.Advance(AutoCueDelay)

	got := h.speaker.said()
	if len(got) != 2 || got[0].text != "maison" || got[1].text != "pain" {
		t.Errorf("cues = %+v", got)
	}

	d.PlayCue()
	if got := h.speaker.said(); len(got) != 3 || got[2].text != "pain" {
		t.Errorf("replay cues = %+v", got)
	}
}

func TestDictationStaleCueDropped(t *testing.T) {
	h := newHarness()
	d := NewDictation(dictationItems()[:1], h.options())
	d.Start(context.Background())

	d.Submit(context.Background(), "maison")
	d.Advance(context.Background())
	h.clock.Advance(time.Second)

	if got := h.speaker.said(); len(got) != 0 {
		t.Errorf("cue played after the session moved on: %+v", got)
	}
}

func TestDictationGuards(t *testing.T) {
	h := newHarness()
	d := NewDictation(nil, h.options())
	if d.Start(context.Background()) {
		t.Fatal("Start() with no items should report false")
	}

	d = NewDictation(dictationItems(), h.options())
	d.Start(context.Background())
	if got := d.Advance(context.Background()); got != PhaseRendered {
		t.Errorf("Advance before answering = %v", got)
	}
	d.Submit(context.Background(), "maison")
	if _, ok := d.Submit(context.Background(), "maison"); ok {
		t.Error("double Submit accepted")
	}
	if st := d.State(); st.Correct != 1 || st.Wrong != 0 {
		t.Errorf("state = %+v", st)
	}
}
