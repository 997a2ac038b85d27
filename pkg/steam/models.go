package steam

import "encoding/json"

// CursorSentinel is the cursor value that requests the first page.
const CursorSentinel = "*"

// ReviewsResponse is the top-level response from the appreviews endpoint.
type ReviewsResponse struct {
	Success      int          `json:"success"`
	QuerySummary QuerySummary `json:"query_summary"`
	Cursor       string       `json:"cursor"`
	Reviews      []Review     `json:"reviews"`
}

// QuerySummary carries aggregate counts; only the first page of a query
// populates the totals.
type QuerySummary struct {
	NumReviews      int    `json:"num_reviews"`
	ReviewScore     int    `json:"review_score"`
	ReviewScoreDesc string `json:"review_score_desc"`
	TotalPositive   int    `json:"total_positive"`
	TotalNegative   int    `json:"total_negative"`
	TotalReviews    int    `json:"total_reviews"`
}

// Author describes the reviewer.
type Author struct {
	SteamID          string `json:"steamid"`
	NumGamesOwned    int    `json:"num_games_owned"`
	NumReviews       int    `json:"num_reviews"`
	PlaytimeForever  int    `json:"playtime_forever"`
	PlaytimeAtReview int    `json:"playtime_at_review"`
	LastPlayed       int64  `json:"last_played"`
}

// Review is one review record. Playtime fields are in minutes.
type Review struct {
	RecommendationID string `json:"recommendationid"`
	Author           Author `json:"author"`
	Language         string `json:"language"`
	Review           string `json:"review"`
	TimestampCreated int64  `json:"timestamp_created"`
	TimestampUpdated int64  `json:"timestamp_updated"`
	VotedUp          bool   `json:"voted_up"`
	VotesUp          int    `json:"votes_up"`
	VotesFunny       int    `json:"votes_funny"`
	// The API emits this field as either a JSON string or a number.
	WeightedVoteScore        json.Number `json:"weighted_vote_score,omitempty"`
	CommentCount             int         `json:"comment_count"`
	SteamPurchase            bool        `json:"steam_purchase"`
	ReceivedForFree          bool        `json:"received_for_free"`
	WrittenDuringEarlyAccess bool        `json:"written_during_early_access"`
}

// Page is one classified successful fetch.
type Page struct {
	Reviews []Review
	// NextCursor is the cursor for the following page. May equal the cursor
	// just used, or be empty, when the sequence is exhausted.
	NextCursor string
	// TotalAvailable is the API-reported total review count, or -1 when the
	// response carried no total.
	TotalAvailable int
}

// Summary holds the aggregate counts from the review summary endpoint.
type Summary struct {
	Total    int
	Positive int
	Negative int
}

// PageQuery carries the filter parameters passed through to the API
// unmodified.
type PageQuery struct {
	Filter       string
	Language     string
	ReviewType   string
	PurchaseType string
	PageSize     int
}
