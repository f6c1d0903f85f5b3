// Package digest runs the scheduled weekly analytics summary: learning
// velocity plus the current top struggling cards, pushed through a Notifier.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/flashlytics/internal/analytics"
	"github.com/example/flashlytics/internal/logger"
	"github.com/example/flashlytics/pkg/models"
)

// Notifier delivers a rendered digest to one recipient.
type Notifier interface {
	SendDigest(chatID int64, text string) error
}

// Recipient pairs a learner with their delivery channel.
type Recipient struct {
	UserID int64
	ChatID int64
}

// Scheduler runs the weekly digest job.
type Scheduler struct {
	log        *logger.Logger
	scheduler  *gocron.Scheduler
	engine     *analytics.Engine
	notifier   Notifier
	recipients []Recipient
}

// New creates a scheduler; Start arms it.
func New(log *logger.Logger, engine *analytics.Engine, notifier Notifier, recipients []Recipient) *Scheduler {
	return &Scheduler{
		log:        log.With("component", "digest"),
		scheduler:  gocron.NewScheduler(time.UTC),
		engine:     engine,
		notifier:   notifier,
		recipients: recipients,
	}
}

// Start schedules the weekly run and returns immediately.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Week().Monday().At("08:00").Do(s.run)
	s.scheduler.StartAsync()
}

// Stop terminates the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow forces one digest pass, used by operators and tests.
func (s *Scheduler) RunNow() {
	s.run()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, r := range s.recipients {
		text, err := s.render(ctx, r.UserID)
		if err != nil {
			s.log.Error("digest render failed", "user_id", r.UserID, "error", err)
			continue
		}
		if err := s.notifier.SendDigest(r.ChatID, text); err != nil {
			s.log.Error("digest send failed", "chat_id", r.ChatID, "error", err)
		}
	}
}

func (s *Scheduler) render(ctx context.Context, userID int64) (string, error) {
	history, err := s.engine.UserVelocityHistory(ctx, userID, 4)
	if err != nil {
		return "", err
	}
	struggling, err := s.engine.StrugglingCards(ctx, userID, 0, 5)
	if err != nil {
		return "", err
	}
	return Render(history, struggling), nil
}

// Render formats the digest text. Exported for tests and previews.
func Render(history *models.VelocityHistory, struggling []models.StruggleScore) string {
	var b strings.Builder
	b.WriteString("Your week in review\n\n")

	mastered := 0
	for _, w := range history.Weeks {
		mastered += w.MasteredCount
	}
	fmt.Fprintf(&b, "Cards mastered in the last %d weeks: %d\n", len(history.Weeks), mastered)
	if history.Trend != nil {
		fmt.Fprintf(&b, "Learning pace: %s\n", *history.Trend)
	}

	if len(struggling) > 0 {
		b.WriteString("\nCards that need attention:\n")
		for _, s := range struggling {
			fmt.Fprintf(&b, "- card %d (score %.2f, %d lapses)\n", s.CardID, s.Score, s.LapseCount)
		}
	}
	return b.String()
}
