// Package campaign drives the throttled send loop: one recipient at a time,
// separated by the configured interval, with cooperative pause/resume.
package campaign

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/recipient"
)

// Status of the active campaign.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// EventsTopic is where the runner publishes one event per send outcome.
const EventsTopic = "send_events"

// sendTimeout bounds a single Gmail call; a timed-out send counts as failed
// and the loop moves on.
const sendTimeout = 30 * time.Second

// Draft is the composed subject/body for one recipient, ready to send.
type Draft struct {
	Recipient   recipient.Recipient `json:"recipient"`
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// Progress is one line of the per-recipient send log.
type Progress struct {
	Email   string    `json:"email"`
	Company string    `json:"company"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// Snapshot is a consistent read of the campaign state for status queries.
type Snapshot struct {
	CampaignID      string     `json:"campaign_id,omitempty"`
	Status          Status     `json:"status"`
	Total           int        `json:"total"`
	Sent            int        `json:"sent"`
	Failed          int        `json:"failed"`
	IntervalSeconds int        `json:"interval_seconds"`
	CurrentEmail    string     `json:"current_email,omitempty"`
	Progress        []Progress `json:"progress"`
}

// EventSink receives send events; queue.Queue satisfies it.
type EventSink interface {
	Publish(topic string, payload any) error
}

// Runner owns the state of one campaign at a time. The send loop is the
// only writer of the counters; status queries read a snapshot under the
// same lock. Construct one per process (or per test) instead of sharing
// package globals.
type Runner struct {
	sender mailer.Sender
	events EventSink // optional

	mu       sync.Mutex
	cond     *sync.Cond
	status   Status
	id       string
	name     string
	total    int
	sent     int
	failed   int
	interval time.Duration
	current  string
	progress []Progress
	cancel   context.CancelFunc
}

func NewRunner(sender mailer.Sender, events EventSink) *Runner {
	r := &Runner{
		sender: sender,
		events: events,
		status: StatusIdle,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Start begins a new campaign. Legal only when no campaign is running or
// paused; starting after completion resets the counters for the new run.
func (r *Runner) Start(name string, drafts []Draft, interval time.Duration) (string, error) {
	if r.sender == nil {
		return "", appErrors.NewConfigError("Gmail", "configure credentials.json and token.json before starting a campaign")
	}
	if len(drafts) == 0 {
		return "", appErrors.NewValidationError("no emails provided")
	}
	if interval < 0 {
		return "", appErrors.NewValidationError("interval cannot be negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusRunning || r.status == StatusPaused {
		return "", appErrors.NewValidationError("campaign already running")
	}

	r.id = uuid.NewString()
	r.name = name
	r.status = StatusRunning
	r.total = len(drafts)
	r.sent = 0
	r.failed = 0
	r.interval = interval
	r.current = ""
	r.progress = nil

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go r.run(ctx, drafts)
	return r.id, nil
}

// Pause halts further sends after the in-flight one completes. Legal only
// while running.
func (r *Runner) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusRunning {
		return appErrors.NewValidationError("no running campaign to pause")
	}
	r.status = StatusPaused
	return nil
}

// Resume continues from the next un-sent recipient, preserving counters.
// Legal only while paused.
func (r *Runner) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPaused {
		return appErrors.NewValidationError("no paused campaign to resume")
	}
	r.status = StatusRunning
	r.cond.Broadcast()
	return nil
}

// Cancel stops the campaign at the next safe point between sends; an
// in-flight send is never interrupted. The runner returns to idle once the
// loop observes the cancellation.
func (r *Runner) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusRunning && r.status != StatusPaused {
		return appErrors.NewValidationError("no active campaign to cancel")
	}
	r.cancel()
	r.cond.Broadcast()
	return nil
}

// Snapshot returns a consistent copy of the campaign state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	progress := make([]Progress, len(r.progress))
	copy(progress, r.progress)

	return Snapshot{
		CampaignID:      r.id,
		Status:          r.status,
		Total:           r.total,
		Sent:            r.sent,
		Failed:          r.failed,
		IntervalSeconds: int(r.interval / time.Second),
		CurrentEmail:    r.current,
		Progress:        progress,
	}
}

func (r *Runner) run(ctx context.Context, drafts []Draft) {
	for i, d := range drafts {
		if !r.awaitRunning(ctx) {
			r.finish(StatusIdle, model.EventCancelled)
			return
		}

		r.mu.Lock()
		r.current = d.Recipient.Email
		r.mu.Unlock()

		sendCtx, cancelSend := context.WithTimeout(ctx, sendTimeout)
		err := r.sender.Send(sendCtx, mailer.Message{
			To:      d.Recipient.Email,
			Subject: d.Subject,
			Body:    d.Body,
		})
		cancelSend()

		r.record(d, err)

		// Throttle before the next recipient; the last send skips the wait.
		if i < len(drafts)-1 {
			select {
			case <-time.After(r.interval):
			case <-ctx.Done():
				r.finish(StatusIdle, model.EventCancelled)
				return
			}
		}
	}
	r.finish(StatusCompleted, model.EventCompleted)
}

// awaitRunning blocks while the campaign is paused. It returns false once
// the campaign is cancelled.
func (r *Runner) awaitRunning(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.status == StatusPaused && ctx.Err() == nil {
		r.cond.Wait()
	}
	return ctx.Err() == nil
}

func (r *Runner) record(d Draft, err error) {
	entry := Progress{
		Email:   d.Recipient.Email,
		Company: d.Recipient.Company,
		Status:  model.EventSent,
		Time:    time.Now(),
	}
	if err != nil {
		entry.Status = model.EventFailed
		entry.Error = err.Error()
		log.Printf("campaign: send to %s failed: %v", d.Recipient.Email, err)
	}

	r.mu.Lock()
	if err != nil {
		r.failed++
	} else {
		r.sent++
	}
	r.progress = append(r.progress, entry)
	id := r.id
	r.mu.Unlock()

	r.publish(model.SendEvent{
		CampaignID: id,
		Email:      entry.Email,
		Company:    entry.Company,
		Status:     entry.Status,
		LastError:  entry.Error,
		OccurredAt: entry.Time,
	})
}

func (r *Runner) finish(status Status, eventStatus string) {
	r.mu.Lock()
	r.status = status
	r.current = ""
	id := r.id
	r.mu.Unlock()

	r.publish(model.SendEvent{
		CampaignID: id,
		Status:     eventStatus,
		OccurredAt: time.Now(),
	})
}

func (r *Runner) publish(ev model.SendEvent) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(EventsTopic, ev); err != nil {
		log.Println("campaign: failed to publish send event:", err)
	}
}
