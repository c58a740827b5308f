package models

import (
	"testing"
	"time"
)

var now = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

func TestWordReview(t *testing.T) {
	tests := []struct {
		name        string
		box         int
		correct     bool
		wantBox     int
		wantNextDue string
	}{
		{"new word correct", 1, true, 2, "2026-10-18T09:30:00"},
		{"box 2 correct", 2, true, 3, "2026-10-20T09:30:00"},
		{"box 3 correct", 3, true, 4, "2026-10-23T09:30:00"},
		{"box 4 correct", 4, true, 5, "2026-10-30T09:30:00"},
		{"top box stays", 5, true, 5, "2026-10-30T09:30:00"},
		{"miss resets", 4, false, 1, "2026-10-16T15:30:00"},
		{"corrupt box treated as first", 0, true, 2, "2026-10-18T09:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWordProgress("french", "chat")
			w.Box = tt.box
			w.Review(tt.correct, now)

			if w.Box != tt.wantBox {
				t.Errorf("Box = %d, want %d", w.Box, tt.wantBox)
			}
			if w.NextDue != tt.wantNextDue {
				t.Errorf("NextDue = %s, want %s", w.NextDue, tt.wantNextDue)
			}
			if w.LastReview != "2026-10-16T09:30:00" {
				t.Errorf("LastReview = %s", w.LastReview)
			}
		})
	}
}

func TestWordReviewCounts(t *testing.T) {
	w := NewWordProgress("spanish", "perro")
	w.Review(true, now)
	w.Review(false, now)
	w.Review(true, now)
	if w.Correct != 2 || w.Incorrect != 1 || w.Box != 2 {
		t.Errorf("after three reviews = %+v", w)
	}
}

func TestWordIsDue(t *testing.T) {
	w := NewWordProgress("french", "chat")
	if !w.IsDue(now) {
		t.Error("unseen word should be due")
	}
	w.Review(false, now)
	if w.IsDue(now) {
		t.Error("missed word due before the retry delay")
	}
	if !w.IsDue(now.Add(RetryDelay)) {
		t.Error("missed word not due after the retry delay")
	}
}

func TestLessonComplete(t *testing.T) {
	l := &LessonProgress{Language: "french", LessonID: 3}
	l.Complete(80, now)
	l.Complete(40, now.Add(time.Hour))

	if !l.Completed || l.BestScore != 80 || l.Attempts != 2 {
		t.Errorf("lesson = %+v", l)
	}
	if l.LastSeen != "2026-10-16T10:30:00" {
		t.Errorf("LastSeen = %s", l.LastSeen)
	}
}

func TestStreakDays(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"none", nil, 0},
		{"today only", []string{"2026-10-16"}, 1},
		{"three in a row", []string{"2026-10-16", "2026-10-15", "2026-10-14"}, 3},
		{"gap breaks it", []string{"2026-10-16", "2026-10-14"}, 1},
		{"yesterday without today", []string{"2026-10-15"}, 0},
		{"across a month", []string{"2026-10-01", "2026-09-30"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StreakDays(tt.dates, now); got != tt.want {
				t.Errorf("StreakDays() = %d, want %d", got, tt.want)
			}
		})
	}

	oct1 := time.Date(2026, 10, 1, 8, 0, 0, 0, time.Local)
	if got := StreakDays([]string{"2026-10-01", "2026-09-30"}, oct1); got != 2 {
		t.Errorf("streak across a month boundary = %d, want 2", got)
	}
}

func TestDailyActivityIsZero(t *testing.T) {
	if !(DailyActivity{Date: "2026-10-16"}).IsZero() {
		t.Error("empty activity should be zero")
	}
	if (DailyActivity{Reviews: 1}).IsZero() {
		t.Error("a review is not zero")
	}
}
