// Package ratelimit paces outbound requests to the Steam Web API.
//
// The appreviews endpoint is unauthenticated but throttled server-side;
// sustained bursts get HTTP 429 responses. The fetch loop combines a fixed
// inter-request delay with one of these limiters so a run stays under the
// configured requests-per-minute budget even when individual requests return
// quickly.
//
// Available Implementations:
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//   - Default implementation used by the fetch loop
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - More accurate rate limiting over time
//   - Better for consistent request patterns
//
// All limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait(ctx) error - Block until a request is allowed or ctx is done
//   - Reset() - Reset the limiter state
package ratelimit
