package models

import "time"

// Timestamps are stored as local wall-clock text so that lexical order is
// time order.
const (
	TimestampLayout = "2006-01-02T15:04:05"
	DateLayout      = "2006-01-02"
)

// Leitner box bounds and the retry delay after a miss
const (
	MinBox     = 1
	MaxBox     = 5
	RetryDelay = 6 * time.Hour
)

// boxIntervalDays is how long a word rests after a correct answer moves it
// into a box.
var boxIntervalDays = map[int]int{1: 1, 2: 2, 3: 4, 4: 7, 5: 14}

// FormatTimestamp renders t in the stored timestamp layout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatDate renders t's calendar day in the stored date layout
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WordProgress is the spaced-repetition record for one word
type WordProgress struct {
	ID         int64  `json:"id,omitempty"`
	Language   string `json:"language"`
	Word       string `json:"word"`
	Correct    int    `json:"correct"`
	Incorrect  int    `json:"incorrect"`
	Box        int    `json:"box"`
	NextDue    string `json:"next_due,omitempty"`
	LastReview string `json:"last_review,omitempty"`
}

// NewWordProgress returns an unseen word in the first box
func NewWordProgress(language, word string) *WordProgress {
	return &WordProgress{Language: language, Word: word, Box: MinBox}
}

// Review applies one answer at now. A correct answer promotes the word one
// box and rests it for that box's interval; a miss sends it back to the
// first box and retries it after RetryDelay.
func (w *WordProgress) Review(correct bool, now time.Time) {
	if w.Box < MinBox || w.Box > MaxBox {
		w.Box = MinBox
	}

	var next time.Time
	if correct {
		w.Correct++
		w.Box = min(w.Box+1, MaxBox)
		next = now.AddDate(0, 0, boxIntervalDays[w.Box])
	} else {
		w.Incorrect++
		w.Box = MinBox
		next = now.Add(RetryDelay)
	}

	w.NextDue = FormatTimestamp(next)
	w.LastReview = FormatTimestamp(now)
}

// IsDue reports whether the word should be reviewed at now
func (w *WordProgress) IsDue(now time.Time) bool {
	return w.NextDue == "" || w.NextDue <= FormatTimestamp(now)
}

// LessonProgress tracks one lesson's completion
type LessonProgress struct {
	ID        int64  `json:"id,omitempty"`
	Language  string `json:"language"`
	LessonID  int64  `json:"lesson_id"`
	Completed bool   `json:"completed"`
	BestScore int    `json:"best_score"`
	Attempts  int    `json:"attempts"`
	LastSeen  string `json:"last_seen,omitempty"`
}

// Complete records a finished attempt with the given score
func (l *LessonProgress) Complete(score int, now time.Time) {
	l.Completed = true
	l.BestScore = max(l.BestScore, score)
	l.Attempts++
	l.LastSeen = FormatTimestamp(now)
}

// DailyActivity aggregates one calendar day
type DailyActivity struct {
	Date    string `json:"date"`
	XP      int    `json:"xp"`
	Reviews int    `json:"reviews"`
	Correct int    `json:"correct"`
	Wrong   int    `json:"wrong"`
}

// IsZero reports whether the activity carries no counts
func (a DailyActivity) IsZero() bool {
	return a.XP == 0 && a.Reviews == 0 && a.Correct == 0 && a.Wrong == 0
}

// StreakDays counts consecutive active days ending today. A day without
// activity today means no streak.
func StreakDays(activeDates []string, today time.Time) int {
	active := make(map[string]bool, len(activeDates))
	for _, d := range activeDates {
		active[d] = true
	}

	streak := 0
	for cursor := today; active[FormatDate(cursor)]; cursor = cursor.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// Backup is the portable export of every progress table
type Backup struct {
	Version    int              `json:"version"`
	ExportedAt string           `json:"exported_at"`
	Lessons    []LessonProgress `json:"lesson_progress"`
	Words      []WordProgress   `json:"word_progress"`
	Activity   []DailyActivity  `json:"daily_activity"`
}

// BackupVersion is the current Backup format
const BackupVersion = 1
