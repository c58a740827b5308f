// Package progress defines the learner progress reports and a best-effort
// HTTP client that posts them to the progress server.
package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source identifies the exercise that produced a word result.
type Source string

const (
	SourcePractice   Source = "practice"
	SourceQuiz       Source = "quiz"
	SourceFlashcards Source = "flashcards"
	SourceDictation  Source = "dictation"
)

// Flag is a boolean encoded as 0 or 1 on the wire.
type Flag bool

// MarshalJSON encodes the flag as 1 or 0
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts 0/1, true/false and their quoted forms.
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(raw) {
	case "", "null", "0", "false":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid correct flag %q", raw)
	}
	*f = n != 0
	return nil
}

// WordResult is one answered vocabulary item.
type WordResult struct {
	Language string `json:"language"`
	Word     string `json:"word"`
	Correct  Flag   `json:"correct"`
	Source   Source `json:"source,omitempty"`
	XP       int    `json:"xp"`
}

// UnmarshalJSON decodes a report, reading xp leniently: a malformed xp
// counts as 0 so the review itself is still recorded.
func (r *WordResult) UnmarshalJSON(data []byte) error {
	type wire WordResult
	aux := struct {
		*wire
		XP json.RawMessage `json:"xp"`
	}{wire: (*wire)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.XP = lenientInt(aux.XP)
	return nil
}

// lenientInt reads a number (truncated toward zero), a boolean or a quoted
// integer. Anything else is 0.
func lenientInt(raw json.RawMessage) int {
	s := string(bytes.TrimSpace(raw))
	switch s {
	case "", "null", "false":
		return 0
	case "true":
		return 1
	}
	if strings.HasPrefix(s, `"`) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(f))))
}

// LessonResult is sent once when a lesson quiz finishes.
type LessonResult struct {
	Language string `json:"language"`
	LessonID int64  `json:"lesson_id"`
	Score    int    `json:"score"`
}

// LessonVisit records that a lesson was opened, finished or not.
type LessonVisit struct {
	Language string `json:"language"`
	LessonID int64  `json:"lesson_id"`
}

// ActivitySummary is the learner's activity for today.
type ActivitySummary struct {
	XPToday      int `json:"xp_today"`
	ReviewsToday int `json:"reviews_today"`
	StreakDays   int `json:"streak_days"`
}

// ClampXP limits a client-supplied XP value to the accepted range.
func ClampXP(xp int) int {
	if xp < 0 {
		return 0
	}
	if xp > MaxXP {
		return MaxXP
	}
	return xp
}

// MaxXP is the largest XP award accepted for a single word result.
const MaxXP = 50
