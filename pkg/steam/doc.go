// Package steam implements the HTTP client for Steam's public review and
// store APIs.
//
// The central operation is Client.FetchReviewPage, which performs exactly one
// page fetch against the cursor-paginated appreviews endpoint and classifies
// the outcome: a successful page, an API-reported failure, or a transport
// failure (timeout, connection, malformed body). It has no side effects
// beyond the network call; pagination policy and persistence live in the
// scraper package.
//
// Cursors are opaque strings. The sentinel "*" requests the first page; the
// API signals end-of-sequence by returning an empty page with an unchanged
// (or absent) cursor.
package steam
