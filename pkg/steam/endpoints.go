package steam

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultReviewsBaseURL is the appreviews endpoint prefix; the appid is
	// appended as a path segment.
	DefaultReviewsBaseURL = "https://store.steampowered.com/appreviews/"

	// DefaultStoreBaseURL is the store appdetails endpoint.
	DefaultStoreBaseURL = "https://store.steampowered.com/api/appdetails/"

	// MaxPageSize is the largest page the appreviews endpoint honors.
	MaxPageSize = 100
)

// ReviewsURL constructs the URL for one review page request.
//
// filter=recent walks every review sorted by creation time; filter=updated
// would miss reviews that were never edited.
func ReviewsURL(base string, appid int, cursor string, q PageQuery) string {
	size := q.PageSize
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}

	params := url.Values{}
	params.Set("json", "1")
	params.Set("filter", q.Filter)
	params.Set("language", q.Language)
	params.Set("review_type", q.ReviewType)
	params.Set("purchase_type", q.PurchaseType)
	params.Set("num_per_page", strconv.Itoa(size))
	params.Set("cursor", cursor)

	return fmt.Sprintf("%s%d?%s", base, appid, params.Encode())
}

// SummaryURL constructs the URL for the review summary request.
func SummaryURL(base string, appid int) string {
	params := url.Values{}
	params.Set("json", "1")
	params.Set("language", "all")
	return fmt.Sprintf("%s%d?%s", base, appid, params.Encode())
}

// AppDetailsURL constructs the URL for the store appdetails request.
func AppDetailsURL(base string, appid int) string {
	params := url.Values{}
	params.Set("appids", strconv.Itoa(appid))
	return fmt.Sprintf("%s?%s", base, params.Encode())
}
