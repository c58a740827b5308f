package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"sync"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/models"
	"languagecoach/internal/progress"
	"languagecoach/internal/schedule"
	"languagecoach/internal/validation"
)

// Digest is the content of one daily progress email
type Digest struct {
	Date    string
	Summary progress.ActivitySummary
	// Due counts the words due for review per language.
	Due []LanguageDue
}

// LanguageDue is the number of due words in one language
type LanguageDue struct {
	Language string
	Words    int
}

var digestText = template.Must(template.New("digest").Parse(`Your language coach digest for {{.Date}}

XP today:       {{.Summary.XPToday}}
Reviews today:  {{.Summary.ReviewsToday}}
Streak:         {{.Summary.StreakDays}} day(s)
{{range .Due}}
{{.Language}}: {{.Words}} word(s) due for review{{end}}

---
This is an automated email. Please do not reply.
`))

var digestHTML = htmltemplate.Must(htmltemplate.New("digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h1>Your digest for {{.Date}}</h1>
	<ul>
		<li><strong>XP today:</strong> {{.Summary.XPToday}}</li>
		<li><strong>Reviews today:</strong> {{.Summary.ReviewsToday}}</li>
		<li><strong>Streak:</strong> {{.Summary.StreakDays}} day(s)</li>
	</ul>
	{{if .Due}}<h2>Due for review</h2>
	<ul>{{range .Due}}
		<li>{{.Language}}: {{.Words}}</li>{{end}}
	</ul>{{end}}
	<p style="font-size: 12px; color: #666;">This is an automated email. Please do not reply.</p>
</body>
</html>
`))

// DigestService emails a daily activity summary
type DigestService struct {
	progress  *ProgressService
	email     *EmailService
	to        string
	hourUTC   int
	scheduler schedule.Scheduler
	log       logrus.FieldLogger
	now       func() time.Time

	mu   sync.Mutex
	task schedule.Task
}

// NewDigestService creates a digest sender for one recipient. hourUTC is the
// hour of day the digest goes out.
func NewDigestService(p *ProgressService, email *EmailService, to string, hourUTC int, scheduler schedule.Scheduler, log logrus.FieldLogger) (*DigestService, error) {
	if err := validation.ValidateEmail(to); err != nil {
		return nil, fmt.Errorf("invalid digest recipient: %w", err)
	}
	if scheduler == nil {
		scheduler = schedule.Real{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DigestService{
		progress:  p,
		email:     email,
		to:        to,
		hourUTC:   hourUTC,
		scheduler: scheduler,
		log:       log,
		now:       time.Now,
	}, nil
}

// Compose gathers today's summary and due-word counts
func (s *DigestService) Compose(ctx context.Context) (Digest, error) {
	d := Digest{Date: models.FormatDate(s.progress.now())}

	summary, err := s.progress.ActivitySummary(ctx)
	if err != nil {
		return d, err
	}
	d.Summary = summary

	for _, lang := range validation.Languages {
		due, err := s.progress.DueWords(ctx, lang, MaxDueLimit)
		if err != nil {
			return d, fmt.Errorf("failed to count due words: %w", err)
		}
		d.Due = append(d.Due, LanguageDue{Language: lang, Words: len(due)})
	}
	return d, nil
}

// Send composes and emails today's digest
func (s *DigestService) Send(ctx context.Context) error {
	d, err := s.Compose(ctx)
	if err != nil {
		return err
	}
	subject, html, text, err := renderDigest(d)
	if err != nil {
		return err
	}
	return s.email.Send(ctx, s.to, subject, html, text)
}

// Start schedules the digest daily at the configured hour until ctx ends
// or Stop is called.
func (s *DigestService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(ctx)
}

// Stop cancels the pending digest
func (s *DigestService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
}

func (s *DigestService) scheduleLocked(ctx context.Context) {
	wait := untilHour(s.now().UTC(), s.hourUTC)
	s.log.WithField("in", wait.Round(time.Minute)).Debug("digest scheduled")

	s.task = s.scheduler.AfterFunc(wait, func() {
		if ctx.Err() != nil {
			return
		}
		if err := s.Send(ctx); err != nil {
			s.log.WithError(err).Warn("digest failed")
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if ctx.Err() == nil && s.task != nil {
			s.scheduleLocked(ctx)
		}
	})
}

// untilHour returns the wait from now until the next time the UTC clock
// reads hour:00. At exactly hour:00 it waits a full day.
func untilHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func renderDigest(d Digest) (subject, html, text string, err error) {
	var textBuf, htmlBuf bytes.Buffer
	if err := digestText.Execute(&textBuf, d); err != nil {
		return "", "", "", fmt.Errorf("failed to render digest: %w", err)
	}
	if err := digestHTML.Execute(&htmlBuf, d); err != nil {
		return "", "", "", fmt.Errorf("failed to render digest: %w", err)
	}
	subject = fmt.Sprintf("Language coach: %d XP today, %d-day streak", d.Summary.XPToday, d.Summary.StreakDays)
	return subject, htmlBuf.String(), textBuf.String(), nil
}
