package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"languagecoach/internal/models"
	"languagecoach/internal/repository"
	"languagecoach/internal/validation"
)

// BackupService exports and restores the progress tables
type BackupService struct {
	repo *repository.ProgressRepository
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(repo *repository.ProgressRepository, log logrus.FieldLogger) *BackupService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BackupService{repo: repo, log: log, now: time.Now}
}

// Snapshot reads every progress table into a Backup
func (s *BackupService) Snapshot(ctx context.Context) (*models.Backup, error) {
	backup := &models.Backup{
		Version:    models.BackupVersion,
		ExportedAt: models.FormatTimestamp(s.now()),
	}

	var err error
	if backup.Lessons, err = s.repo.ListLessons(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to export lessons: %w", err)
	}
	if backup.Words, err = s.repo.ListWords(ctx); err != nil {
		return nil, fmt.Errorf("failed to export words: %w", err)
	}
	if backup.Activity, err = s.repo.ListActivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to export activity: %w", err)
	}
	return backup, nil
}

// ExportToWriter writes a JSON backup to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"lessons":  len(backup.Lessons),
		"words":    len(backup.Words),
		"activity": len(backup.Activity),
	}).Info("Progress exported")
	return nil
}

// Export writes a JSON backup to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := s.ExportToWriter(ctx, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ImportFromReader replaces all progress with the backup read from r. The
// tables are only touched when the whole backup is valid, and the
// replacement happens in a single transaction.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup models.Backup
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if err := checkBackup(&backup); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"version":     backup.Version,
		"exported_at": backup.ExportedAt,
	}).Info("Starting progress import")

	err := s.repo.WithTx(ctx, func(repo *repository.ProgressRepository) error {
		return repo.Replace(ctx, &backup)
	})
	if err != nil {
		return fmt.Errorf("failed to import backup: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"lessons":  len(backup.Lessons),
		"words":    len(backup.Words),
		"activity": len(backup.Activity),
	}).Info("Progress import completed")
	return nil
}

// Import replaces all progress with the backup at inputPath
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(ctx, file)
}

func checkBackup(b *models.Backup) error {
	if b.Version != models.BackupVersion {
		return fmt.Errorf("unsupported backup version %d", b.Version)
	}

	for _, w := range b.Words {
		if err := validation.ValidateLanguage(w.Language); err != nil {
			return fmt.Errorf("word %q: %w", w.Word, err)
		}
		if err := validation.ValidateWord(w.Word); err != nil {
			return err
		}
		if w.Box < models.MinBox || w.Box > models.MaxBox {
			return fmt.Errorf("word %q: box %d out of range", w.Word, w.Box)
		}
	}
	for _, l := range b.Lessons {
		if err := validation.ValidateLanguage(l.Language); err != nil {
			return fmt.Errorf("lesson %d: %w", l.LessonID, err)
		}
	}

	if dups := lo.FindDuplicatesBy(b.Words, func(w models.WordProgress) string {
		return w.Language + "/" + w.Word
	}); len(dups) > 0 {
		return fmt.Errorf("duplicate word %s/%s", dups[0].Language, dups[0].Word)
	}
	if dups := lo.FindDuplicatesBy(b.Lessons, func(l models.LessonProgress) string {
		return fmt.Sprintf("%s/%d", l.Language, l.LessonID)
	}); len(dups) > 0 {
		return fmt.Errorf("duplicate lesson %s/%d", dups[0].Language, dups[0].LessonID)
	}
	if dups := lo.FindDuplicatesBy(b.Activity, func(a models.DailyActivity) string {
		return a.Date
	}); len(dups) > 0 {
		return fmt.Errorf("duplicate activity date %s", dups[0].Date)
	}
	return nil
}
