package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultNotifySubject is the subject update events are published on.
const DefaultNotifySubject = "timetable.updated"

// NATSNotifier publishes a sync-completed event so downstream consumers can
// re-read the published document instead of polling.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to the NATS server. An empty subject falls back
// to DefaultNotifySubject.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("timetable-sync"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	if subject == "" {
		subject = DefaultNotifySubject
	}
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Notify publishes the update event.
func (n *NATSNotifier) Notify(runID, objectKey string, days, entries int) error {
	payload, err := json.Marshal(map[string]any{
		"run_id":     runID,
		"object_key": objectKey,
		"days":       days,
		"entries":    entries,
		"synced_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return n.conn.Flush()
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() {
	_ = n.conn.Drain()
}
