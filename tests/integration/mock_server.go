package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"steamreviews/pkg/steam"
)

// pageScript is one canned review page, keyed by the cursor that requests it.
type pageScript struct {
	reviews    []steam.Review
	nextCursor string
}

// MockSteamServer simulates the appreviews and appdetails endpoints with
// scriptable pages and fault injection.
type MockSteamServer struct {
	server       *httptest.Server
	mu           sync.Mutex
	pages        map[string]pageScript
	totalReviews int
	failures     map[string]int
	requests     int32
	gameName     string
}

// NewMockSteamServer starts a server that knows one game. Pages are added
// with AddPage; unknown cursors answer with an empty page and an unchanged
// cursor, which is the live API's end-of-sequence signal.
func NewMockSteamServer(gameName string) *MockSteamServer {
	m := &MockSteamServer{
		pages:    make(map[string]pageScript),
		failures: make(map[string]int),
		gameName: gameName,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/appreviews/", m.handleReviews)
	mux.HandleFunc("/api/appdetails/", m.handleAppDetails)

	m.server = httptest.NewServer(mux)
	return m
}

func (m *MockSteamServer) Close() {
	m.server.Close()
}

// ReviewsBase returns the base URL to hand to Client.SetBaseURLs.
func (m *MockSteamServer) ReviewsBase() string {
	return m.server.URL + "/appreviews/"
}

// StoreBase returns the appdetails base URL.
func (m *MockSteamServer) StoreBase() string {
	return m.server.URL + "/api/appdetails/"
}

// AddPage scripts the response for one cursor.
func (m *MockSteamServer) AddPage(cursor string, reviews []steam.Review, nextCursor string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[cursor] = pageScript{reviews: reviews, nextCursor: nextCursor}
	m.totalReviews += len(reviews)
}

// FailTimes makes the next n requests for the given cursor answer 500.
func (m *MockSteamServer) FailTimes(cursor string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[cursor] = n
}

// Requests reports how many review-page requests the server has seen.
func (m *MockSteamServer) Requests() int32 {
	return atomic.LoadInt32(&m.requests)
}

func (m *MockSteamServer) handleReviews(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requests, 1)
	cursor := r.URL.Query().Get("cursor")

	m.mu.Lock()
	if remaining := m.failures[cursor]; remaining > 0 {
		m.failures[cursor] = remaining - 1
		m.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	script, ok := m.pages[cursor]
	total := m.totalReviews
	m.mu.Unlock()

	resp := steam.ReviewsResponse{Success: 1, Cursor: cursor}
	if ok {
		resp.Cursor = script.nextCursor
		resp.Reviews = script.reviews
	}
	// The live API reports totals on the first page of a query only.
	if cursor == steam.CursorSentinel {
		resp.QuerySummary.TotalReviews = total
	}
	resp.QuerySummary.NumReviews = len(resp.Reviews)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (m *MockSteamServer) handleAppDetails(w http.ResponseWriter, r *http.Request) {
	appid := r.URL.Query().Get("appids")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		appid: map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"type":      "game",
				"name":      m.gameName,
				"steam_appid": mustAtoi(appid),
			},
		},
	})
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
