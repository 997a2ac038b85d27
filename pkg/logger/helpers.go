package logger

import "time"

// LogPageFetch emits the consolidated per-page fetch line.
func LogPageFetch(appid int, page, added, total, totalAvailable int, duration time.Duration, cursor string) {
	fields := map[string]interface{}{
		"appid":    appid,
		"page":     page,
		"added":    added,
		"total":    total,
		"duration": duration,
		"cursor":   cursor,
	}
	if totalAvailable > 0 {
		fields["total_available"] = totalAvailable
		fields["progress_pct"] = float64(total) / float64(totalAvailable) * 100
	}
	GetLogger().InfoWithFields("page fetched", fields)
}

// LogCheckpoint emits a checkpoint-save line.
func LogCheckpoint(appid int, page, count int) {
	GetLogger().InfoWithFields("checkpoint saved", map[string]interface{}{
		"appid": appid,
		"page":  page,
		"count": count,
	})
}
