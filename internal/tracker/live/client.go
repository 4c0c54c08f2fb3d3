package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
)

// Source é o lado "fetch" do viewer: leituras completas do estado autoritativo
type Source interface {
	FetchBets(ctx context.Context) ([]model.Bet, error)
	FetchMarker(ctx context.Context) (time.Time, error)
	FetchRate(ctx context.Context) (model.ExchangeRate, error)
}

// APIClient implementa Source sobre a API REST do tracker
type APIClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewAPIClient(base string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *APIClient) FetchBets(ctx context.Context) ([]model.Bet, error) {
	var out []model.Bet
	if err := c.get(ctx, "/api/bets", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Bet{}
	}
	return out, nil
}

func (c *APIClient) FetchMarker(ctx context.Context) (time.Time, error) {
	var out struct {
		UpdatedAt time.Time `json:"updatedAt"`
	}
	if err := c.get(ctx, "/api/last-updated", &out); err != nil {
		return time.Time{}, err
	}
	return out.UpdatedAt, nil
}

func (c *APIClient) FetchRate(ctx context.Context) (model.ExchangeRate, error) {
	var out model.ExchangeRate
	if err := c.get(ctx, "/api/rate", &out); err != nil {
		return model.ExchangeRate{}, err
	}
	return out, nil
}

func (c *APIClient) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("get %s: http %d", path, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
