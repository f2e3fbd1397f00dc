package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/contextkeys"
	"github.com/platinummonkey/shopadmin/pkg/httputil"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log records an audit event
	Log(ctx context.Context, event *Event) error

	// Close flushes buffered events and releases resources
	Close() error
}

// NopLogger discards every event
type NopLogger struct{}

func (NopLogger) Log(ctx context.Context, event *Event) error { return nil }

func (NopLogger) Close() error { return nil }

// NewRequestEvent builds an event carrying the request's client address,
// user agent, request id and authenticated user
func NewRequestEvent(r *http.Request, eventType EventType, status EventStatus, trustProxy bool) *Event {
	ctx := r.Context()
	return &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		ActorID:   contextkeys.GetUserID(ctx),
		IPAddress: httputil.ClientIP(r, trustProxy),
		UserAgent: r.UserAgent(),
		RequestID: contextkeys.GetRequestID(ctx),
	}
}
