package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-memory queue with retry, used when AMQP_URL is
// not configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// DecodeSendEvent accepts both in-memory (typed) and AMQP (JSON bytes)
// payloads.
func DecodeSendEvent(payload any) (model.SendEvent, error) {
	switch p := payload.(type) {
	case model.SendEvent:
		return p, nil
	case []byte:
		var ev model.SendEvent
		if err := json.Unmarshal(p, &ev); err != nil {
			return model.SendEvent{}, fmt.Errorf("invalid send event payload: %w", err)
		}
		return ev, nil
	default:
		return model.SendEvent{}, fmt.Errorf("invalid send event payload type %T", payload)
	}
}

// StartSendEventSubscriber persists the runner's send events: per-recipient
// events become send_events rows plus counter bumps, terminal events close
// the campaign record.
func StartSendEventSubscriber(q Queue, campaignRepo repository.CampaignRepositoryInterface, eventRepo repository.EventRepositoryInterface) {
	go func() {
		err := q.Subscribe("send_events", func(payload any) error {
			ev, err := DecodeSendEvent(payload)
			if err != nil {
				log.Println("⚠️ Dropping malformed send event:", err)
				return nil // no retry
			}

			switch ev.Status {
			case model.EventSent:
				if err := eventRepo.Insert(ev); err != nil {
					log.Println("⚠️ Failed to insert send event:", err)
					return err
				}
				return campaignRepo.IncrementCounters(ev.CampaignID, 1, 0)

			case model.EventFailed:
				if err := eventRepo.Insert(ev); err != nil {
					log.Println("⚠️ Failed to insert send event:", err)
					return err
				}
				return campaignRepo.IncrementCounters(ev.CampaignID, 0, 1)

			case model.EventCompleted, model.EventCancelled:
				status := "completed"
				if ev.Status == model.EventCancelled {
					status = "cancelled"
				}
				return campaignRepo.MarkCompleted(ev.CampaignID, status)

			default:
				log.Println("⚠️ Unknown send event status:", ev.Status)
				return nil
			}
		})

		if err != nil {
			log.Println("⚠️ Failed to start subscriber for send_events:", err)
		}
	}()
}
