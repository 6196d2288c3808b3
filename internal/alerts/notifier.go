// Package alerts posts failure notifications to an external webhook so
// operators hear about broken runs without watching logs.
package alerts

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/logger"
)

// Payload is the alert body the webhook expects.
type Payload struct {
	Status       string  `json:"status"`
	FunctionName string  `json:"functionName"`
	Message      string  `json:"message"`
	Timestamp    string  `json:"timestamp"`
	Details      Details `json:"details"`
}

// Details carries supplemental diagnostics for the alert.
type Details struct {
	StackTrace    string `json:"stackTrace"`
	CorrelationID string `json:"correlationId"`
}

// Notifier sends alerts over HTTP. Delivery is best-effort: the pipeline's
// own failure handling must not depend on the alert channel being healthy,
// so transport errors are logged and swallowed.
type Notifier struct {
	http     *resty.Client
	endpoint string
}

// New creates a Notifier targeting endpoint. An empty endpoint disables
// delivery; notifications are logged only.
func New(endpoint string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Notifier{http: client, endpoint: endpoint}
}

// Notify posts one failure alert. The correlation id ties the alert back to
// the run; when empty a fresh id is generated so the webhook side can still
// dedupe.
func (n *Notifier) Notify(ctx context.Context, source, message, correlationID string) {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	log := logger.FromContext(ctx).WithField(logger.FieldRunID, correlationID)
	log.Errorf("Alert from %s: %s", source, message)

	if n.endpoint == "" {
		return
	}

	payload := Payload{
		Status:       "error",
		FunctionName: source,
		Message:      message,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Details: Details{
			StackTrace:    message,
			CorrelationID: correlationID,
		},
	}

	resp, err := n.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.endpoint)
	if err != nil {
		log.WithError(err).Warn("Failed to deliver alert")
		return
	}
	if resp.IsError() {
		log.Warnf("Alert endpoint returned %d", resp.StatusCode())
	}
}
