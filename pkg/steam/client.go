package steam

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	errs "steamreviews/pkg/errors"
	"steamreviews/pkg/logger"
)

// Client is an HTTP client for Steam's public review and store endpoints.
type Client struct {
	httpClient     *http.Client
	headers        map[string]string
	reviewsBaseURL string
	storeBaseURL   string
	logger         logger.Logger
}

// NewClient creates a new Steam API client.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "steamreviews/1.0",
			"Accept":     "application/json",
		},
		reviewsBaseURL: DefaultReviewsBaseURL,
		storeBaseURL:   DefaultStoreBaseURL,
		logger:         log,
	}
}

// SetHeader sets a custom header for the client.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBaseURLs overrides the endpoint prefixes. Tests point them at a mock
// server.
func (c *Client) SetBaseURLs(reviews, store string) {
	if reviews != "" {
		c.reviewsBaseURL = reviews
	}
	if store != "" {
		c.storeBaseURL = store
	}
}

// FetchReviewPage performs exactly one page fetch and classifies the outcome.
// It has no side effects beyond the network call.
func (c *Client) FetchReviewPage(appid int, cursor string, q PageQuery) (*Page, error) {
	requestURL := ReviewsURL(c.reviewsBaseURL, appid, cursor, q)

	c.logger.DebugWithFields("fetching review page", map[string]interface{}{
		"appid":  appid,
		"cursor": cursor,
	})

	body, err := c.getBody(requestURL)
	if err != nil {
		return nil, err
	}

	var resp ReviewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse review page", map[string]interface{}{
			"appid":        appid,
			"body_preview": preview,
			"error":        err.Error(),
		})
		return nil, errs.New(errs.KindMalformed, 0, err, "failed to parse review page")
	}

	if resp.Success != 1 {
		return nil, errs.New(errs.KindAPIFailure, resp.Success, nil,
			"API reported failure for appid %d", appid)
	}

	page := &Page{
		Reviews:        resp.Reviews,
		NextCursor:     resp.Cursor,
		TotalAvailable: -1,
	}
	if resp.QuerySummary.TotalReviews > 0 {
		page.TotalAvailable = resp.QuerySummary.TotalReviews
	}
	return page, nil
}

// FetchReviewSummary fetches the aggregate review counts for an appid.
func (c *Client) FetchReviewSummary(appid int) (*Summary, error) {
	body, err := c.getBody(SummaryURL(c.reviewsBaseURL, appid))
	if err != nil {
		return nil, err
	}

	var resp ReviewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.New(errs.KindMalformed, 0, err, "failed to parse review summary")
	}
	if resp.Success != 1 {
		return nil, errs.New(errs.KindAPIFailure, resp.Success, nil,
			"API reported failure for appid %d", appid)
	}

	return &Summary{
		Total:    resp.QuerySummary.TotalReviews,
		Positive: resp.QuerySummary.TotalPositive,
		Negative: resp.QuerySummary.TotalNegative,
	}, nil
}

// getBody performs a GET and returns the response body, classifying
// transport-level failures.
func (c *Client) getBody(requestURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errs.New(errs.KindUnknown, 0, err, "failed to create request")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		kind := errs.KindConnection
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = errs.KindTimeout
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      requestURL,
			"kind":     string(kind),
			"duration": duration,
			"error":    err.Error(),
		})
		return nil, errs.New(kind, 0, err, "request failed")
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      requestURL,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		// A non-200 from the storefront follows the same checkpoint-and-stop
		// path as a broken connection; the status code is kept for diagnostics.
		return nil, errs.New(errs.KindConnection, resp.StatusCode, nil,
			"unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.KindConnection, resp.StatusCode, err,
			"failed to read response body")
	}
	return body, nil
}
