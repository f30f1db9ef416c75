package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Channel delivers a payload to one social destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, p Payload) error
}

// Webhook POSTs the payload as JSON to a URL. Any non-2xx status is a failure.
type Webhook struct {
	name   string
	url    string
	client *http.Client
}

// NewWebhook creates a webhook channel. A nil client uses http.DefaultClient;
// deadlines come from the context.
func NewWebhook(name, url string, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{name: name, url: url, client: client}
}

// PlatformWebhooks returns the whatsapp and facebook webhook channels served at
// <baseURL>/v1/webhooks/<platform>.
func PlatformWebhooks(baseURL string, client *http.Client) []Channel {
	return []Channel{
		NewWebhook("whatsapp", baseURL+"/v1/webhooks/whatsapp", client),
		NewWebhook("facebook", baseURL+"/v1/webhooks/facebook", client),
	}
}

func (w *Webhook) Name() string { return w.name }

func (w *Webhook) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s responded %d", w.name, resp.StatusCode)
	}
	return nil
}

type topicPublisher interface {
	Publish(ctx context.Context, subject, message string) error
}

// Topic publishes the payload JSON to a message topic (SNS).
type Topic struct {
	name string
	pub  topicPublisher
}

func NewTopic(name string, pub topicPublisher) *Topic {
	return &Topic{name: name, pub: pub}
}

func (t *Topic) Name() string { return t.name }

func (t *Topic) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return t.pub.Publish(ctx, "New ad: "+p.Title, string(body))
}
