package intervals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"healthdash-sync/internal/metrics"
)

// The bridge API can itself be slow when it has to reach through to the
// device vendor, so the timeout is generous.
const requestTimeout = 30 * time.Second

// Client is a typed client for the intervals.icu bridge API.
// Authentication is HTTP basic auth with the API key as username and a blank
// password; every request carries it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	athleteID  string
	logger     *slog.Logger
}

// NewClient creates a bridge API client. It fails fast when credentials are
// missing; that is a configuration error, never retried.
func NewClient(apiKey, athleteID, baseURL string) (*Client, error) {
	if apiKey == "" || athleteID == "" {
		return nil, fmt.Errorf("intervals API credentials not configured")
	}

	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		athleteID:  athleteID,
		logger:     slog.Default(),
	}, nil
}

// get performs an authenticated GET and decodes the JSON response into out
func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("bridge request failed", "operation", operation, "error", err, "duration_ms", duration.Milliseconds())
		metrics.BridgeAPIRequestsTotal.WithLabelValues(operation, "0").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	statusStr := strconv.Itoa(resp.StatusCode)
	metrics.BridgeAPIRequestsTotal.WithLabelValues(operation, statusStr).Inc()
	metrics.BridgeAPIRequestDuration.WithLabelValues(operation, statusStr).Observe(duration.Seconds())

	c.logger.Info("bridge_api_request",
		"operation", operation,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchAthlete retrieves the athlete profile
func (c *Client) FetchAthlete(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	path := fmt.Sprintf("/athlete/%s", c.athleteID)
	if err := c.get(ctx, metrics.OpGetAthlete, path, nil, &athlete); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// FetchWellness retrieves wellness data for an inclusive date range
func (c *Client) FetchWellness(ctx context.Context, start, end time.Time) ([]WellnessRecord, error) {
	var records []WellnessRecord
	path := fmt.Sprintf("/athlete/%s/wellness/%s/%s",
		c.athleteID, start.Format(DateFormat), end.Format(DateFormat))
	if err := c.get(ctx, metrics.OpGetWellness, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchWellnessForDate retrieves wellness data for a single date. A "not
// found" upstream is an absence, not an error: it returns (nil, nil).
func (c *Client) FetchWellnessForDate(ctx context.Context, date time.Time) (*WellnessRecord, error) {
	records, err := c.FetchWellness(ctx, date, date)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// FetchActivities retrieves activities for an inclusive date range
func (c *Client) FetchActivities(ctx context.Context, start, end time.Time) ([]ActivityPayload, error) {
	var activities []ActivityPayload
	path := fmt.Sprintf("/athlete/%s/activities", c.athleteID)
	query := url.Values{
		"oldest": {start.Format(DateFormat)},
		"newest": {end.Format(DateFormat)},
	}
	if err := c.get(ctx, metrics.OpGetActivities, path, query, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// FetchActivity retrieves a single activity by its upstream identifier
func (c *Client) FetchActivity(ctx context.Context, activityID string) (*ActivityPayload, error) {
	var activity ActivityPayload
	path := fmt.Sprintf("/athlete/%s/activities/%s", c.athleteID, activityID)
	if err := c.get(ctx, metrics.OpGetActivity, path, nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// FetchAllWellnessSince fetches wellness data from start through today,
// walking forward in calendar-month chunks to respect the upstream range
// limit, and concatenating the results.
func (c *Client) FetchAllWellnessSince(ctx context.Context, start time.Time) ([]WellnessRecord, error) {
	var all []WellnessRecord
	for _, chunk := range MonthChunks(start, time.Now()) {
		records, err := c.FetchWellness(ctx, chunk.Start, chunk.End)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch wellness %s to %s: %w",
				chunk.Start.Format(DateFormat), chunk.End.Format(DateFormat), err)
		}
		all = append(all, records...)
	}
	return all, nil
}

// TestConnection verifies authentication by fetching the athlete profile
func (c *Client) TestConnection(ctx context.Context) bool {
	if _, err := c.FetchAthlete(ctx); err != nil {
		c.logger.Error("bridge connection test failed", "error", err)
		return false
	}
	return true
}
