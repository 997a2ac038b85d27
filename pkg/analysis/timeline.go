package analysis

import (
	"fmt"
	"sort"
	"time"

	"steamreviews/pkg/dataset"
)

// TimelineParams configure a review timeline analysis.
type TimelineParams struct {
	// Language filters to one Steam language code; "all" keeps everything.
	Language string
	// RollingWindow is the rolling-average window in days; 0 picks a window
	// automatically from the dataset's date range.
	RollingWindow int
}

// TimelinePoint is one calendar day of the timeline. Rate fields are nil on
// days without the data to compute them.
type TimelinePoint struct {
	Date               string   `json:"date"`
	DailyTotal         int      `json:"daily_total"`
	DailyPositive      int      `json:"daily_positive"`
	DailyNegative      int      `json:"daily_negative"`
	DailyRate          *float64 `json:"daily_rate"`
	RollingRate        *float64 `json:"rolling_rate"`
	RollingWindowTotal int      `json:"rolling_window_total"`
	CumulativeTotal    int      `json:"cumulative_total"`
	CumulativePositive int      `json:"cumulative_positive"`
	CumulativeRate     *float64 `json:"cumulative_rate"`
}

// TimelineResult is the output of a timeline analysis.
type TimelineResult struct {
	AppID               int             `json:"appid"`
	Language            string          `json:"language"`
	TotalReviews        int             `json:"total_reviews"`
	TotalPositive       int             `json:"total_positive"`
	TotalNegative       int             `json:"total_negative"`
	OverallPositiveRate float64         `json:"overall_positive_rate"`
	RollingWindow       int             `json:"rolling_window"`
	DateRangeStart      string          `json:"date_range_start"`
	DateRangeEnd        string          `json:"date_range_end"`
	AnalysisDate        string          `json:"analysis_date"`
	Timeline            []TimelinePoint `json:"timeline"`
	SavedTo             string          `json:"saved_to,omitempty"`
}

type dayCounts struct {
	positive int
	total    int
}

// Timeline buckets reviews by creation day and computes daily, rolling, and
// cumulative positive rates over the gap-filled date range. Returns nil
// when no review matches the filter or none has a usable timestamp.
func (a *Analyzer) Timeline(ds *dataset.Dataset, params TimelineParams) (*TimelineResult, error) {
	if params.Language == "" {
		params.Language = "all"
	}

	filtered := filterReviews(ds.Reviews, params.Language, "both")
	if len(filtered) == 0 {
		return nil, nil
	}

	daily := make(map[string]dayCounts)
	totalPositive := 0
	for i := range filtered {
		r := &filtered[i]
		if r.TimestampCreated <= 0 {
			continue
		}
		day := time.Unix(r.TimestampCreated, 0).UTC().Format("2006-01-02")
		counts := daily[day]
		counts.total++
		if r.VotedUp {
			counts.positive++
			totalPositive++
		}
		daily[day] = counts
	}
	if len(daily) == 0 {
		return nil, nil
	}

	window := params.RollingWindow
	if window <= 0 {
		window = autoWindow(daily)
	}

	days := sortedDays(daily)
	timeline := buildTimeline(daily, days, window)

	result := &TimelineResult{
		AppID:               ds.Metadata.AppID,
		Language:            params.Language,
		TotalReviews:        len(filtered),
		TotalPositive:       totalPositive,
		TotalNegative:       len(filtered) - totalPositive,
		OverallPositiveRate: float64(totalPositive) / float64(len(filtered)) * 100,
		RollingWindow:       window,
		DateRangeStart:      days[0],
		DateRangeEnd:        days[len(days)-1],
		AnalysisDate:        time.Now().UTC().Format(time.RFC3339),
		Timeline:            timeline,
	}

	gameName := a.gameName(ds.Metadata.AppID)
	filename := fmt.Sprintf("%d_%s_%s_timeline_w%d_%s.json",
		ds.Metadata.AppID, sanitizeFilename(gameName), params.Language,
		window, time.Now().UTC().Format("2006-01-02"))
	path, err := a.saveInsight(result, filename)
	if err != nil {
		return nil, err
	}
	result.SavedTo = path
	return result, nil
}

// autoWindow picks a rolling window proportional to the dataset's span.
func autoWindow(daily map[string]dayCounts) int {
	days := sortedDays(daily)
	start, errStart := time.Parse("2006-01-02", days[0])
	end, errEnd := time.Parse("2006-01-02", days[len(days)-1])
	if errStart != nil || errEnd != nil {
		return 7
	}

	span := int(end.Sub(start).Hours() / 24)
	switch {
	case span < 30:
		return 3
	case span < 90:
		return 7
	case span < 180:
		return 14
	case span < 365:
		return 30
	default:
		return 60
	}
}

func sortedDays(daily map[string]dayCounts) []string {
	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// buildTimeline walks every calendar day from first to last review,
// including days with no reviews, so rolling windows span real time rather
// than review-bearing days only.
func buildTimeline(daily map[string]dayCounts, days []string, window int) []TimelinePoint {
	start, _ := time.Parse("2006-01-02", days[0])
	end, _ := time.Parse("2006-01-02", days[len(days)-1])

	var allDays []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		allDays = append(allDays, d.Format("2006-01-02"))
	}

	timeline := make([]TimelinePoint, 0, len(allDays))
	cumulativePositive, cumulativeTotal := 0, 0
	var previousRollingRate *float64

	for i, day := range allDays {
		counts := daily[day]
		cumulativePositive += counts.positive
		cumulativeTotal += counts.total

		point := TimelinePoint{
			Date:               day,
			DailyTotal:         counts.total,
			DailyPositive:      counts.positive,
			DailyNegative:      counts.total - counts.positive,
			CumulativeTotal:    cumulativeTotal,
			CumulativePositive: cumulativePositive,
		}

		if counts.total > 0 {
			point.DailyRate = ratePtr(counts.positive, counts.total)
		}
		if cumulativeTotal > 0 {
			point.CumulativeRate = ratePtr(cumulativePositive, cumulativeTotal)
		}

		rollingPositive, rollingTotal := 0, 0
		for j := i - window + 1; j <= i; j++ {
			if j < 0 {
				continue
			}
			past := daily[allDays[j]]
			rollingPositive += past.positive
			rollingTotal += past.total
		}
		point.RollingWindowTotal = rollingTotal
		if rollingTotal > 0 {
			point.RollingRate = ratePtr(rollingPositive, rollingTotal)
			previousRollingRate = point.RollingRate
		} else {
			// Carry the last known rate across silent stretches.
			point.RollingRate = previousRollingRate
		}

		timeline = append(timeline, point)
	}
	return timeline
}

func ratePtr(positive, total int) *float64 {
	rate := float64(positive) / float64(total) * 100
	return &rate
}
