package refdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Provider fetches geographic lists from an upstream source.
type Provider interface {
	Countries(ctx context.Context) ([]Place, error)
	States(ctx context.Context, countryID int) ([]Place, error)
	Cities(ctx context.Context, countryID, stateID int) ([]Place, error)
}

// HTTPProvider reads geography from a JSON API laid out as
// /countries, /countries/{id}/states and /countries/{id}/states/{id}/cities,
// each answering a bare array of {id, name}.
type HTTPProvider struct {
	http *resty.Client
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &HTTPProvider{http: c}
}

func (p *HTTPProvider) get(ctx context.Context, path string) ([]Place, error) {
	var out []Place
	resp, err := p.http.R().SetContext(ctx).SetResult(&out).Get(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: get %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("refdata: get %s: status %d", path, resp.StatusCode())
	}
	return out, nil
}

func (p *HTTPProvider) Countries(ctx context.Context) ([]Place, error) {
	return p.get(ctx, "/countries")
}

func (p *HTTPProvider) States(ctx context.Context, countryID int) ([]Place, error) {
	return p.get(ctx, fmt.Sprintf("/countries/%d/states", countryID))
}

func (p *HTTPProvider) Cities(ctx context.Context, countryID, stateID int) ([]Place, error) {
	return p.get(ctx, fmt.Sprintf("/countries/%d/states/%d/cities", countryID, stateID))
}
