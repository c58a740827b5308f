package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/metrics"
	"languagecoach/internal/models"
	"languagecoach/internal/progress"
	"languagecoach/internal/repository"
	"languagecoach/internal/validation"
)

// Due-word list bounds
const (
	DefaultDueLimit = 40
	MinDueLimit     = 5
	MaxDueLimit     = 80

	// streakLookback is how many active days are read to compute a streak.
	streakLookback = 60
)

// ProgressService records word and lesson results and summarizes activity
type ProgressService struct {
	repo    *repository.ProgressRepository
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(repo *repository.ProgressRepository, m *metrics.Metrics, log logrus.FieldLogger) *ProgressService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProgressService{repo: repo, metrics: m, log: log, now: time.Now}
}

// SetClock replaces the time source. Tests use it to pin "now".
func (s *ProgressService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordWord applies one answered word: it moves the word between Leitner
// boxes and adds the answer to today's activity, in one transaction.
func (s *ProgressService) RecordWord(ctx context.Context, result progress.WordResult) (*models.WordProgress, error) {
	if err := validation.ValidateLanguage(result.Language); err != nil {
		return nil, err
	}
	if err := validation.ValidateWord(result.Word); err != nil {
		return nil, err
	}

	now := s.now()
	correct := bool(result.Correct)
	delta := models.DailyActivity{
		Date:    models.FormatDate(now),
		XP:      progress.ClampXP(result.XP),
		Reviews: 1,
	}
	if correct {
		delta.Correct = 1
	} else {
		delta.Wrong = 1
	}

	var word *models.WordProgress
	err := s.repo.WithTx(ctx, func(repo *repository.ProgressRepository) error {
		w, err := repo.GetWord(ctx, result.Language, result.Word)
		isNew := errors.Is(err, repository.ErrNotFound)
		if err != nil && !isNew {
			return fmt.Errorf("failed to load word: %w", err)
		}
		if isNew {
			w = models.NewWordProgress(result.Language, result.Word)
		}

		w.Review(correct, now)

		if isNew {
			err = repo.CreateWord(ctx, w)
		} else {
			err = repo.UpdateWord(ctx, w)
		}
		if err != nil {
			return fmt.Errorf("failed to save word: %w", err)
		}

		if err := repo.AddActivity(ctx, delta); err != nil {
			return fmt.Errorf("failed to add activity: %w", err)
		}
		word = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.WordReported(result.Language, string(result.Source), correct)
	s.log.WithFields(logrus.Fields{
		"language": result.Language,
		"word":     result.Word,
		"correct":  correct,
		"source":   result.Source,
		"box":      word.Box,
		"xp":       delta.XP,
	}).Debug("word progress recorded")

	return word, nil
}

// CompleteLesson records a finished lesson attempt
func (s *ProgressService) CompleteLesson(ctx context.Context, result progress.LessonResult) (*models.LessonProgress, error) {
	if err := validation.ValidateLanguage(result.Language); err != nil {
		return nil, err
	}
	if err := validation.ValidateLessonID(result.LessonID); err != nil {
		return nil, err
	}

	now := s.now()
	lesson, err := s.updateLesson(ctx, result.Language, result.LessonID, func(l *models.LessonProgress) {
		l.Complete(result.Score, now)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LessonCompleted(result.Language)
	s.log.WithFields(logrus.Fields{
		"language":   result.Language,
		"lesson_id":  result.LessonID,
		"score":      result.Score,
		"best_score": lesson.BestScore,
	}).Info("lesson completed")
	return lesson, nil
}

// TouchLesson marks a lesson as seen without completing it
func (s *ProgressService) TouchLesson(ctx context.Context, visit progress.LessonVisit) (*models.LessonProgress, error) {
	if err := validation.ValidateLanguage(visit.Language); err != nil {
		return nil, err
	}
	if err := validation.ValidateLessonID(visit.LessonID); err != nil {
		return nil, err
	}

	now := s.now()
	return s.updateLesson(ctx, visit.Language, visit.LessonID, func(l *models.LessonProgress) {
		l.LastSeen = models.FormatTimestamp(now)
	})
}

func (s *ProgressService) updateLesson(ctx context.Context, language string, lessonID int64, apply func(*models.LessonProgress)) (*models.LessonProgress, error) {
	var lesson *models.LessonProgress
	err := s.repo.WithTx(ctx, func(repo *repository.ProgressRepository) error {
		l, err := repo.GetLesson(ctx, language, lessonID)
		if errors.Is(err, repository.ErrNotFound) {
			l = &models.LessonProgress{Language: language, LessonID: lessonID}
		} else if err != nil {
			return fmt.Errorf("failed to load lesson: %w", err)
		}

		apply(l)
		if err := repo.SaveLesson(ctx, l); err != nil {
			return fmt.Errorf("failed to save lesson: %w", err)
		}
		lesson = l
		return nil
	})
	return lesson, err
}

// Lessons lists lesson progress for a language
func (s *ProgressService) Lessons(ctx context.Context, language string) ([]models.LessonProgress, error) {
	if err := validation.ValidateLanguage(language); err != nil {
		return nil, err
	}
	return s.repo.ListLessons(ctx, language)
}

// ActivitySummary reports today's XP and reviews and the current streak
func (s *ProgressService) ActivitySummary(ctx context.Context) (progress.ActivitySummary, error) {
	var summary progress.ActivitySummary
	today := s.now()

	activity, err := s.repo.GetActivity(ctx, models.FormatDate(today))
	if err != nil {
		return summary, fmt.Errorf("failed to load activity: %w", err)
	}
	dates, err := s.repo.ActiveDates(ctx, streakLookback)
	if err != nil {
		return summary, fmt.Errorf("failed to load active dates: %w", err)
	}

	summary.XPToday = activity.XP
	summary.ReviewsToday = activity.Reviews
	summary.StreakDays = models.StreakDays(dates, today)
	return summary, nil
}

// DueWords lists the words due for review now. limit is clamped to
// MinDueLimit..MaxDueLimit; zero means DefaultDueLimit.
func (s *ProgressService) DueWords(ctx context.Context, language string, limit int) ([]models.WordProgress, error) {
	if err := validation.ValidateLanguage(language); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = DefaultDueLimit
	}
	limit = max(MinDueLimit, min(MaxDueLimit, limit))

	return s.repo.DueWords(ctx, language, models.FormatTimestamp(s.now()), limit)
}
