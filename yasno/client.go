package yasno

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"svitlo/infra/logger"
)

// Source supplies the two-day outage schedule for a group.
type Source interface {
	Group(ctx context.Context, group string) (GroupSchedule, error)
}

// NewSource creates a Source depending on cfg.Mode ("client" or "mock").
func NewSource(cfg Config) (Source, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == "mock" {
		return NewFileSource(cfg.FixturePath, cfg.City)
	}
	return NewClient(cfg), nil
}

// Client fetches planned outages from the blackout-service API.
type Client struct {
	http *http.Client
	url  string
	city string
	log  logger.Logger
}

// NewClient creates an API client for the configured region and operator.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		url:  fmt.Sprintf("%s/regions/%s/dsos/%s/planned-outages", cfg.BaseURL, cfg.RegionID, cfg.DSOID),
		city: cfg.City,
		log:  logger.New("yasno-client"),
	}
}

// Group fetches the full schedule and extracts the given group's confirmed
// outages for today and tomorrow. An unknown group yields an
// UnknownGroupError listing the groups the service knows.
func (c *Client) Group(ctx context.Context, group string) (GroupSchedule, error) {
	groups, err := c.fetch(ctx)
	if err != nil {
		return GroupSchedule{}, err
	}
	g, ok := groups[group]
	if !ok {
		return GroupSchedule{}, &UnknownGroupError{Group: group, Available: groupNames(groups)}
	}
	return groupSchedule(c.city, group, g), nil
}

func (c *Client) fetch(ctx context.Context) (map[string]wireGroup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("fetching schedule from %s", c.url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schedule: unexpected status %s", resp.Status)
	}
	var groups map[string]wireGroup
	if err := json.NewDecoder(resp.Body).Decode(&groups); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return groups, nil
}
