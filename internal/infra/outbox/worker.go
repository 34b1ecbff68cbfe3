package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "drively/internal/app/outbox"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// PendingEvent is a queued record plus delivery bookkeeping.
type PendingEvent struct {
	Record        appoutbox.EventRecord
	Attempts      int
	ClaimedBy     string
	NextAttemptAt time.Time
	LastError     string
}

// Store is the durable queue the worker drains. Claim must hand each record
// to at most one worker at a time.
type Store interface {
	Claim(ctx context.Context, workerID string) (*PendingEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, nextAttempt time.Time, reason string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker relays checkout events from the outbox to Kafka as CloudEvents.
type Worker struct {
	Store       Store
	Producer    Producer
	Logger      *slog.Logger
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	ev, err := w.Store.Claim(ctx, w.workerID())
	if err != nil || ev == nil {
		return err
	}
	topic := w.topicFor(ev.Record.Name)
	payload, headers, err := w.formatPayload(ev.Record)
	if err != nil {
		w.logFailure(ev, err)
		_ = w.Store.MarkFailed(ctx, ev.Record.ID, w.nextRetry(ev.Attempts), err.Error())
		return nil
	}
	if err := w.Producer.Publish(ctx, topic, ev.Record.Aggregate, payload, headers); err != nil {
		w.logFailure(ev, err)
		_ = w.Store.MarkFailed(ctx, ev.Record.ID, w.nextRetry(ev.Attempts), err.Error())
		return nil
	}
	return w.Store.MarkSent(ctx, ev.Record.ID)
}

func (w *Worker) formatPayload(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          w.source(),
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor routes by the event name's first segment: checkout.* events land
// on checkout.events.v1.
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	topic := base + ".events.v1"
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + topic
	}
	return topic
}

func (w *Worker) logFailure(ev *PendingEvent, err error) {
	if w.Logger == nil {
		return
	}
	w.Logger.Warn("outbox publish failed", "event_id", ev.Record.ID, "event", ev.Record.Name, "attempts", ev.Attempts, "error", err)
}

// workerID assigns the worker a stable identity on first use so every claim
// made over the worker's lifetime is attributed to the same id.
func (w *Worker) workerID() string {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return w.ID
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://drively"
}
