package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"languagecoach/internal/logging"
	"languagecoach/internal/progress"
	"languagecoach/internal/schedule"
)

type fakeSES struct {
	mu     sync.Mutex
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSES) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func TestEmailServiceDisabled(t *testing.T) {
	s, err := NewEmailService(context.Background(), "", "", "", logging.Discard())
	if err != nil {
		t.Fatalf("NewEmailService failed: %v", err)
	}
	if s.IsEnabled() {
		t.Error("service without a sender address should be disabled")
	}
	if err := s.Send(context.Background(), "a@example.com", "s", "<p>h</p>", "t"); err != nil {
		t.Errorf("disabled Send() = %v", err)
	}
}

func TestEmailServiceSend(t *testing.T) {
	ses := &fakeSES{}
	s := NewEmailServiceWithClient(ses, "coach@example.com", "Language Coach", logging.Discard())

	if err := s.Send(context.Background(), "learner@example.com", "Hello", "<p>hi</p>", "hi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	in := ses.inputs[0]
	if *in.FromEmailAddress != "Language Coach <coach@example.com>" {
		t.Errorf("from = %s", *in.FromEmailAddress)
	}
	if in.Destination.ToAddresses[0] != "learner@example.com" || *in.Content.Simple.Subject.Data != "Hello" {
		t.Errorf("input = %+v", in)
	}

	ses.err = errors.New("throttled")
	if err := s.Send(context.Background(), "learner@example.com", "Hello", "", ""); err == nil {
		t.Error("Send should surface SES errors")
	}
}

func TestDigest(t *testing.T) {
	ps, _ := newTestProgressService(t)
	ctx := context.Background()
	ps.RecordWord(ctx, progress.WordResult{Language: "french", Word: "chien", XP: 2})
	ps.RecordWord(ctx, progress.WordResult{Language: "spanish", Word: "gato", Correct: true, XP: 10})

	ses := &fakeSES{}
	email := NewEmailServiceWithClient(ses, "coach@example.com", "", logging.Discard())

	if _, err := NewDigestService(ps, email, "not-an-address", 18, nil, logging.Discard()); err == nil {
		t.Error("invalid recipient accepted")
	}

	sched := schedule.NewManual()
	d, err := NewDigestService(ps, email, "learner@example.com", 18, sched, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	d.now = func() time.Time { return time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC) }

	digest, err := d.Compose(ctx)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if digest.Summary.XPToday != 12 || digest.Summary.ReviewsToday != 2 {
		t.Errorf("summary = %+v", digest.Summary)
	}
	if len(digest.Due) != 2 || digest.Due[0].Words != 0 {
		t.Errorf("due = %+v", digest.Due)
	}

	d.Start(ctx)
	sched.Advance(7 * time.Hour)
	if ses.sent() != 0 {
		t.Fatal("digest sent before the configured hour")
	}
	sched.Advance(time.Hour)
	if ses.sent() != 1 {
		t.Fatalf("sent = %d, want 1", ses.sent())
	}
	body := *ses.inputs[0].Content.Simple.Body.Text.Data
	if !strings.Contains(body, "XP today:") || !strings.Contains(body, "12") || !strings.Contains(body, "Streak:") {
		t.Errorf("text body = %q", body)
	}

	if sched.Pending() != 1 {
		t.Errorf("next digest not scheduled: pending = %d", sched.Pending())
	}
	d.Stop()
	if sched.Pending() != 0 {
		t.Errorf("Stop left %d pending digests", sched.Pending())
	}
}

func TestUntilHour(t *testing.T) {
	tests := []struct {
		now  time.Time
		hour int
		want time.Duration
	}{
		{time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC), 18, 8 * time.Hour},
		{time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC), 18, 24 * time.Hour},
		{time.Date(2026, 10, 16, 20, 30, 0, 0, time.UTC), 6, 9*time.Hour + 30*time.Minute},
	}
	for _, tt := range tests {
		if got := untilHour(tt.now, tt.hour); got != tt.want {
			t.Errorf("untilHour(%v, %d) = %v, want %v", tt.now, tt.hour, got, tt.want)
		}
	}
}
