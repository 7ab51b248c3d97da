package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

var ErrSendFailed = errors.New("notification send failed")

// Sender delivers outbound messages (order receipts) to a user's contact
// address. Callers treat delivery as best effort.
type Sender interface {
	Send(to, subject, body string) error
}

// WebhookSender posts notifications to an external delivery endpoint.
type WebhookSender struct {
	endpoint string
	client   *http.Client
}

func NewWebhookSender(endpoint string) *WebhookSender {
	return &WebhookSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *WebhookSender) Send(to, subject, body string) error {
	payload, err := json.Marshal(message{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	res, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return ErrSendFailed
	}
	return nil
}

// NopSender is used when no delivery endpoint is configured.
type NopSender struct{}

func (NopSender) Send(string, string, string) error { return nil }
