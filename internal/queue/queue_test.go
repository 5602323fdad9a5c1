package queue

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// fakeCampaignRepo records counter bumps and completions.
type fakeCampaignRepo struct {
	mu        sync.Mutex
	sent      map[string]int
	failed    map[string]int
	completed map[string]string
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		sent:      make(map[string]int),
		failed:    make(map[string]int),
		completed: make(map[string]string),
	}
}

func (f *fakeCampaignRepo) Create(c *model.Campaign) error              { return nil }
func (f *fakeCampaignRepo) GetByID(id string) (*model.Campaign, error)  { return nil, nil }
func (f *fakeCampaignRepo) List(o, l int) ([]*model.Campaign, int, error) {
	return nil, 0, nil
}
func (f *fakeCampaignRepo) Stats() (map[string]int, error) { return nil, nil }

func (f *fakeCampaignRepo) IncrementCounters(id string, sent, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[id] += sent
	f.failed[id] += failed
	return nil
}

func (f *fakeCampaignRepo) MarkCompleted(id string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] = status
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []model.SendEvent
}

func (f *fakeEventRepo) Insert(ev model.SendEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEventRepo) ListByCampaign(id string) ([]model.SendEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SendEvent(nil), f.events...), nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPublishWithoutSubscribersFails(t *testing.T) {
	q := NewInMemoryQueue()
	if err := q.Publish("send_events", model.SendEvent{}); err == nil {
		t.Error("expected error when no subscribers exist")
	}
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	q := NewInMemoryQueue()

	var mu sync.Mutex
	var got []model.SendEvent
	q.Subscribe("send_events", func(payload any) error {
		ev, err := DecodeSendEvent(payload)
		if err != nil {
			return err
		}
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		return nil
	})

	if err := q.Publish("send_events", model.SendEvent{CampaignID: "c1", Status: model.EventSent}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	waitFor(t, "delivery", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
	if got[0].CampaignID != "c1" {
		t.Errorf("unexpected event: %+v", got[0])
	}
}

func TestHandlerRetriesUntilSuccess(t *testing.T) {
	q := NewInMemoryQueue()

	var mu sync.Mutex
	attempts := 0
	q.Subscribe("send_events", func(payload any) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err := q.Publish("send_events", model.SendEvent{}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	waitFor(t, "retry", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	})
}

func TestDecodeSendEventFromJSON(t *testing.T) {
	body, _ := json.Marshal(model.SendEvent{CampaignID: "c1", Email: "a@x.io", Status: model.EventFailed})

	ev, err := DecodeSendEvent(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.CampaignID != "c1" || ev.Status != model.EventFailed {
		t.Errorf("unexpected event: %+v", ev)
	}

	if _, err := DecodeSendEvent(42); err == nil {
		t.Error("expected error for unsupported payload type")
	}
}

func TestSendEventSubscriberPersistsOutcomes(t *testing.T) {
	q := NewInMemoryQueue()
	campaignRepo := newFakeCampaignRepo()
	eventRepo := &fakeEventRepo{}

	StartSendEventSubscriber(q, campaignRepo, eventRepo)
	waitFor(t, "subscription", func() bool {
		return q.Publish("send_events", model.SendEvent{CampaignID: "c1", Email: "a@x.io", Status: model.EventSent}) == nil
	})

	q.Publish("send_events", model.SendEvent{CampaignID: "c1", Email: "b@x.io", Status: model.EventFailed, LastError: "boom"})
	q.Publish("send_events", model.SendEvent{CampaignID: "c1", Status: model.EventCompleted})

	waitFor(t, "persistence", func() bool {
		campaignRepo.mu.Lock()
		defer campaignRepo.mu.Unlock()
		return campaignRepo.sent["c1"] == 1 && campaignRepo.failed["c1"] == 1 && campaignRepo.completed["c1"] == "completed"
	})

	events, _ := eventRepo.ListByCampaign("c1")
	if len(events) != 2 {
		t.Errorf("expected 2 per-recipient events, got %d", len(events))
	}
}
