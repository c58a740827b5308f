package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"languagecoach/internal/database"
	"languagecoach/internal/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// ProgressRepository handles the progress tables
type ProgressRepository struct {
	db   database.DBTX
	root *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db, root: db}
}

// WithTx runs fn with a repository bound to a single transaction.
func (r *ProgressRepository) WithTx(ctx context.Context, fn func(repo *ProgressRepository) error) error {
	if r.root == nil {
		return fn(r)
	}
	return r.root.WithTx(ctx, func(tx *database.Tx) error {
		return fn(&ProgressRepository{db: tx})
	})
}

// GetWord retrieves the record for a word
func (r *ProgressRepository) GetWord(ctx context.Context, language, word string) (*models.WordProgress, error) {
	query := `
		SELECT id, language, word, correct, incorrect, box, next_due, last_review
		FROM word_progress
		WHERE language = ? AND word = ?
	`

	w, err := scanWord(r.db.QueryRowContext(ctx, query, language, word))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CreateWord inserts a new word record and sets its ID
func (r *ProgressRepository) CreateWord(ctx context.Context, w *models.WordProgress) error {
	query := `
		INSERT INTO word_progress (language, word, correct, incorrect, box, next_due, last_review)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(ctx, query,
		w.Language, w.Word, w.Correct, w.Incorrect, w.Box, nullString(w.NextDue), nullString(w.LastReview))
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}

// UpdateWord stores a word record's counters and schedule
func (r *ProgressRepository) UpdateWord(ctx context.Context, w *models.WordProgress) error {
	query := `
		UPDATE word_progress
		SET correct = ?, incorrect = ?, box = ?, next_due = ?, last_review = ?
		WHERE language = ? AND word = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		w.Correct, w.Incorrect, w.Box, nullString(w.NextDue), nullString(w.LastReview), w.Language, w.Word)
	return err
}

// DueWords lists words due at now, earliest first, then lowest box, then
// most missed. Words never scheduled come first.
func (r *ProgressRepository) DueWords(ctx context.Context, language, now string, limit int) ([]models.WordProgress, error) {
	query := `
		SELECT id, language, word, correct, incorrect, box, next_due, last_review
		FROM word_progress
		WHERE language = ?
		  AND (next_due IS NULL OR next_due <= ?)
		ORDER BY COALESCE(next_due, '') ASC, box ASC, incorrect DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, language, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWords(rows)
}

// ListWords returns every word record
func (r *ProgressRepository) ListWords(ctx context.Context) ([]models.WordProgress, error) {
	query := `
		SELECT id, language, word, correct, incorrect, box, next_due, last_review
		FROM word_progress
		ORDER BY language, word
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWords(rows)
}

// GetLesson retrieves one lesson's progress
func (r *ProgressRepository) GetLesson(ctx context.Context, language string, lessonID int64) (*models.LessonProgress, error) {
	query := `
		SELECT id, language, lesson_id, completed, best_score, attempts, last_seen
		FROM lesson_progress
		WHERE language = ? AND lesson_id = ?
	`

	l, err := scanLesson(r.db.QueryRowContext(ctx, query, language, lessonID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// SaveLesson inserts or updates a lesson's progress
func (r *ProgressRepository) SaveLesson(ctx context.Context, l *models.LessonProgress) error {
	if l.ID == 0 {
		query := `
			INSERT INTO lesson_progress (language, lesson_id, completed, best_score, attempts, last_seen)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		id, err := r.db.ExecReturningID(ctx, query,
			l.Language, l.LessonID, boolInt(l.Completed), l.BestScore, l.Attempts, nullString(l.LastSeen))
		if err != nil {
			return err
		}
		l.ID = id
		return nil
	}

	query := `
		UPDATE lesson_progress
		SET completed = ?, best_score = ?, attempts = ?, last_seen = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, boolInt(l.Completed), l.BestScore, l.Attempts, nullString(l.LastSeen), l.ID)
	return err
}

// ListLessons returns lesson progress, for one language or for all when
// language is empty
func (r *ProgressRepository) ListLessons(ctx context.Context, language string) ([]models.LessonProgress, error) {
	query := `
		SELECT id, language, lesson_id, completed, best_score, attempts, last_seen
		FROM lesson_progress
	`
	var args []interface{}
	if language != "" {
		query += " WHERE language = ?"
		args = append(args, language)
	}
	query += " ORDER BY language, lesson_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []models.LessonProgress
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

// AddActivity adds delta's counts to the day named by delta.Date in a
// single upsert
func (r *ProgressRepository) AddActivity(ctx context.Context, delta models.DailyActivity) error {
	if delta.IsZero() {
		return nil
	}

	query := `
		INSERT INTO daily_activity (activity_date, xp, reviews, correct, wrong)
		VALUES (?, ?, ?, ?, ?)
	` + r.db.GetDialect().AccumulateClause("daily_activity", "activity_date", "xp", "reviews", "correct", "wrong")

	_, err := r.db.ExecContext(ctx, query, delta.Date, delta.XP, delta.Reviews, delta.Correct, delta.Wrong)
	return err
}

// GetActivity returns the counts for one day; a day without a row is all zeros
func (r *ProgressRepository) GetActivity(ctx context.Context, date string) (models.DailyActivity, error) {
	a := models.DailyActivity{Date: date}
	err := r.db.QueryRowContext(ctx,
		"SELECT xp, reviews, correct, wrong FROM daily_activity WHERE activity_date = ?", date,
	).Scan(&a.XP, &a.Reviews, &a.Correct, &a.Wrong)
	if errors.Is(err, sql.ErrNoRows) {
		return a, nil
	}
	return a, err
}

// ActiveDates returns up to limit most recent days that earned XP, newest first
func (r *ProgressRepository) ActiveDates(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT activity_date FROM daily_activity WHERE xp > 0 ORDER BY activity_date DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ListActivity returns every day's counts, oldest first
func (r *ProgressRepository) ListActivity(ctx context.Context) ([]models.DailyActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT activity_date, xp, reviews, correct, wrong FROM daily_activity ORDER BY activity_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.DailyActivity
	for rows.Next() {
		var a models.DailyActivity
		if err := rows.Scan(&a.Date, &a.XP, &a.Reviews, &a.Correct, &a.Wrong); err != nil {
			return nil, err
		}
		days = append(days, a)
	}
	return days, rows.Err()
}

// Replace swaps the whole contents of the progress tables for b. Call it
// inside WithTx.
func (r *ProgressRepository) Replace(ctx context.Context, b *models.Backup) error {
	for _, table := range []string{"lesson_progress", "word_progress", "daily_activity"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i := range b.Lessons {
		l := b.Lessons[i]
		l.ID = 0
		if err := r.SaveLesson(ctx, &l); err != nil {
			return fmt.Errorf("failed to restore lesson %s/%d: %w", l.Language, l.LessonID, err)
		}
	}
	for i := range b.Words {
		w := b.Words[i]
		if err := r.CreateWord(ctx, &w); err != nil {
			return fmt.Errorf("failed to restore word %s/%s: %w", w.Language, w.Word, err)
		}
	}
	for _, a := range b.Activity {
		if a.IsZero() {
			continue
		}
		if err := r.AddActivity(ctx, a); err != nil {
			return fmt.Errorf("failed to restore activity %s: %w", a.Date, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWord(row scanner) (*models.WordProgress, error) {
	w := &models.WordProgress{}
	var nextDue, lastReview sql.NullString
	err := row.Scan(&w.ID, &w.Language, &w.Word, &w.Correct, &w.Incorrect, &w.Box, &nextDue, &lastReview)
	if err != nil {
		return nil, err
	}
	w.NextDue = nextDue.String
	w.LastReview = lastReview.String
	return w, nil
}

func collectWords(rows *sql.Rows) ([]models.WordProgress, error) {
	var words []models.WordProgress
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, *w)
	}
	return words, rows.Err()
}

func scanLesson(row scanner) (*models.LessonProgress, error) {
	l := &models.LessonProgress{}
	var completed int
	var lastSeen sql.NullString
	err := row.Scan(&l.ID, &l.Language, &l.LessonID, &completed, &l.BestScore, &l.Attempts, &lastSeen)
	if err != nil {
		return nil, err
	}
	l.Completed = completed != 0
	l.LastSeen = lastSeen.String
	return l, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
