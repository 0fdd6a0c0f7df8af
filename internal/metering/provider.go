package metering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Snapshot is a read-only view of the TTS provider's current billing cycle.
// It is opaque to the billing engine: the engine never computes from it, the
// dashboard renders it next to the computed TTS overage figures.
type Snapshot struct {
	Provider        string    `json:"provider"`
	MinutesUsed     float64   `json:"minutes_used"`
	MinutesIncluded float64   `json:"minutes_included"`
	OverLimit       bool      `json:"over_limit"`
	ResetAt         time.Time `json:"reset_at,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// Provider is the provider-agnostic metering interface.
//
// Rules:
// - No provider SDK calls outside metering adapters.
// - Responses are snapshots; polling cadence is the caller's concern.
type Provider interface {
	Name() string
	Subscription(ctx context.Context) (Snapshot, error)
}

// HTTPProvider reads the account-usage endpoint of a TTS vendor.
type HTTPProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	clock   func() time.Time
}

type HTTPProviderConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewHTTPProvider(cfg HTTPProviderConfig) (*HTTPProvider, error) {
	if cfg.Name == "" || cfg.BaseURL == "" {
		return nil, errors.New("metering: name and base url are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		clock:   time.Now,
	}, nil
}

func (p *HTTPProvider) Name() string { return p.name }

// subscriptionResponse matches the vendor's usage payload. Character quotas
// are converted to minutes using the vendor's published ~900 chars/minute
// speech rate when minute fields are absent.
type subscriptionResponse struct {
	MinutesUsed     *float64 `json:"minutes_used"`
	MinutesIncluded *float64 `json:"minutes_included"`

	CharacterCount *int64 `json:"character_count"`
	CharacterLimit *int64 `json:"character_limit"`

	NextResetUnix int64 `json:"next_character_count_reset_unix"`
}

const charsPerMinute = 900

func (p *HTTPProvider) Subscription(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/user/subscription", nil)
	if err != nil {
		return Snapshot{}, err
	}
	if p.apiKey != "" {
		req.Header.Set("xi-api-key", p.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("metering: %s request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("metering: %s returned status %d", p.name, resp.StatusCode)
	}

	var body subscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Snapshot{}, fmt.Errorf("metering: decode %s response: %w", p.name, err)
	}

	s := Snapshot{Provider: p.name, FetchedAt: p.clock().UTC()}
	switch {
	case body.MinutesUsed != nil && body.MinutesIncluded != nil:
		s.MinutesUsed = *body.MinutesUsed
		s.MinutesIncluded = *body.MinutesIncluded
	case body.CharacterCount != nil && body.CharacterLimit != nil:
		s.MinutesUsed = float64(*body.CharacterCount) / charsPerMinute
		s.MinutesIncluded = float64(*body.CharacterLimit) / charsPerMinute
	default:
		return Snapshot{}, fmt.Errorf("metering: %s response has no usage fields", p.name)
	}
	s.OverLimit = s.MinutesIncluded > 0 && s.MinutesUsed >= s.MinutesIncluded
	if body.NextResetUnix > 0 {
		s.ResetAt = time.Unix(body.NextResetUnix, 0).UTC()
	}
	return s, nil
}
