package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultExpoEndpoint = "https://exp.host/--/api/v2/push/send"

// Message is one Expo push message.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

type Gateway interface {
	// Send delivers msg and returns the provider's raw response.
	Send(ctx context.Context, msg Message) (json.RawMessage, error)
}

type ExpoGateway struct {
	endpoint string
	client   *http.Client
}

func NewExpoGateway(endpoint string, client *http.Client) *ExpoGateway {
	if endpoint == "" {
		endpoint = DefaultExpoEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ExpoGateway{endpoint: endpoint, client: client}
}

func (g *ExpoGateway) Send(ctx context.Context, msg Message) (json.RawMessage, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("push provider returned invalid JSON")
	}
	return data, nil
}
