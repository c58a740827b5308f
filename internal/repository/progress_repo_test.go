package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"languagecoach/internal/database"
	"languagecoach/internal/models"
)

func newTestRepo(t *testing.T) *ProgressRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return NewProgressRepository(db)
}

func TestWordRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetWord(ctx, "french", "chat"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetWord on empty table = %v, want ErrNotFound", err)
	}

	w := models.NewWordProgress("french", "chat")
	if err := repo.CreateWord(ctx, w); err != nil {
		t.Fatalf("CreateWord failed: %v", err)
	}
	if w.ID == 0 {
		t.Error("CreateWord did not set the ID")
	}

	w.Correct = 3
	w.Box = 4
	w.NextDue = "2026-10-20T09:00:00"
	if err := repo.UpdateWord(ctx, w); err != nil {
		t.Fatalf("UpdateWord failed: %v", err)
	}

	got, err := repo.GetWord(ctx, "french", "chat")
	if err != nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if got.Correct != 3 || got.Box != 4 || got.NextDue != "2026-10-20T09:00:00" || got.LastReview != "" {
		t.Errorf("GetWord() = %+v", got)
	}
}

func TestDueWordsOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []models.WordProgress{
		{Language: "french", Word: "later", Box: 2, NextDue: "2026-10-20T00:00:00"},
		{Language: "french", Word: "due-box3", Box: 3, NextDue: "2026-10-15T08:00:00"},
		{Language: "french", Word: "due-box1", Box: 1, NextDue: "2026-10-15T08:00:00", Incorrect: 1},
		{Language: "french", Word: "due-box1-missed", Box: 1, NextDue: "2026-10-15T08:00:00", Incorrect: 4},
		{Language: "french", Word: "never", Box: 1},
		{Language: "spanish", Word: "perro", Box: 1},
	}
	for i := range seed {
		if err := repo.CreateWord(ctx, &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	due, err := repo.DueWords(ctx, "french", "2026-10-16T09:00:00", 10)
	if err != nil {
		t.Fatalf("DueWords failed: %v", err)
	}
	want := []string{"never", "due-box1-missed", "due-box1", "due-box3"}
	if len(due) != len(want) {
		t.Fatalf("DueWords() returned %d words, want %d", len(due), len(want))
	}
	for i, w := range due {
		if w.Word != want[i] {
			t.Errorf("due[%d] = %s, want %s", i, w.Word, want[i])
		}
	}

	limited, err := repo.DueWords(ctx, "french", "2026-10-16T09:00:00", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit ignored: %d words", len(limited))
	}
}

func TestLessonSave(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	l := &models.LessonProgress{Language: "spanish", LessonID: 2, Attempts: 1, BestScore: 50, Completed: true}
	if err := repo.SaveLesson(ctx, l); err != nil {
		t.Fatalf("SaveLesson insert failed: %v", err)
	}
	l.BestScore = 90
	l.Attempts = 2
	if err := repo.SaveLesson(ctx, l); err != nil {
		t.Fatalf("SaveLesson update failed: %v", err)
	}

	got, err := repo.GetLesson(ctx, "spanish", 2)
	if err != nil {
		t.Fatalf("GetLesson failed: %v", err)
	}
	if !got.Completed || got.BestScore != 90 || got.Attempts != 2 {
		t.Errorf("GetLesson() = %+v", got)
	}

	if _, err := repo.GetLesson(ctx, "french", 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLesson for another language = %v", err)
	}

	all, err := repo.ListLessons(ctx, "")
	if err != nil || len(all) != 1 {
		t.Errorf("ListLessons() = %v, %v", all, err)
	}
}

func TestActivity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, delta := range []models.DailyActivity{
		{Date: "2026-10-16", XP: 10, Reviews: 1, Correct: 1},
		{Date: "2026-10-16", XP: 2, Reviews: 1, Wrong: 1},
		{Date: "2026-10-15", XP: 5, Reviews: 1, Correct: 1},
		{Date: "2026-10-14", Reviews: 1, Wrong: 1},
		{Date: "2026-10-13"},
	} {
		if err := repo.AddActivity(ctx, delta); err != nil {
			t.Fatalf("AddActivity failed: %v", err)
		}
	}

	today, err := repo.GetActivity(ctx, "2026-10-16")
	if err != nil {
		t.Fatal(err)
	}
	if today.XP != 12 || today.Reviews != 2 || today.Correct != 1 || today.Wrong != 1 {
		t.Errorf("today = %+v", today)
	}

	empty, err := repo.GetActivity(ctx, "2026-01-01")
	if err != nil || !empty.IsZero() {
		t.Errorf("missing day = %+v, %v", empty, err)
	}

	dates, err := repo.ActiveDates(ctx, 60)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || dates[0] != "2026-10-16" || dates[1] != "2026-10-15" {
		t.Errorf("ActiveDates() = %v", dates)
	}

	days, err := repo.ListActivity(ctx)
	if err != nil || len(days) != 3 {
		t.Errorf("ListActivity() = %v, %v (zero deltas must not create rows)", days, err)
	}
}

func TestConcurrentActivityAccumulates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const reports = 20
	var wg sync.WaitGroup
	for i := 0; i < reports; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.AddActivity(ctx, models.DailyActivity{Date: "2026-10-16", XP: 10, Reviews: 1, Correct: 1}); err != nil {
				t.Errorf("AddActivity failed: %v", err)
			}
		}()
	}
	wg.Wait()

	day, err := repo.GetActivity(ctx, "2026-10-16")
	if err != nil {
		t.Fatal(err)
	}
	if day.XP != 10*reports || day.Reviews != reports || day.Correct != reports {
		t.Errorf("day = %+v, want %d reviews", day, reports)
	}
}

func TestReplaceInTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateWord(ctx, models.NewWordProgress("french", "old")); err != nil {
		t.Fatal(err)
	}

	backup := &models.Backup{
		Version:  models.BackupVersion,
		Lessons:  []models.LessonProgress{{ID: 99, Language: "french", LessonID: 1, Completed: true, BestScore: 70, Attempts: 1}},
		Words:    []models.WordProgress{{Language: "french", Word: "chat", Box: 3, Correct: 2}},
		Activity: []models.DailyActivity{{Date: "2026-10-16", XP: 40, Reviews: 4}},
	}
	err := repo.WithTx(ctx, func(tx *ProgressRepository) error {
		return tx.Replace(ctx, backup)
	})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	words, _ := repo.ListWords(ctx)
	if len(words) != 1 || words[0].Word != "chat" || words[0].Box != 3 {
		t.Errorf("words after replace = %+v", words)
	}
	lessons, _ := repo.ListLessons(ctx, "french")
	if len(lessons) != 1 || lessons[0].BestScore != 70 {
		t.Errorf("lessons after replace = %+v", lessons)
	}

	// A failing import leaves the tables untouched.
	bad := &models.Backup{Words: []models.WordProgress{
		{Language: "french", Word: "dup", Box: 1},
		{Language: "french", Word: "dup", Box: 1},
	}}
	if err := repo.WithTx(ctx, func(tx *ProgressRepository) error { return tx.Replace(ctx, bad) }); err == nil {
		t.Fatal("Replace with duplicate words succeeded")
	}
	words, _ = repo.ListWords(ctx)
	if len(words) != 1 || words[0].Word != "chat" {
		t.Errorf("failed import changed the table: %+v", words)
	}
}
