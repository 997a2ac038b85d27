package scraper

import (
	"time"

	"github.com/oklog/ulid/v2"

	"steamreviews/pkg/checkpoint"
	"steamreviews/pkg/dataset"
	errs "steamreviews/pkg/errors"
	"steamreviews/pkg/steam"
)

// State is the lifecycle state of a fetch run.
type State int

const (
	// StateRunning means the run loop is still iterating.
	StateRunning State = iota
	// StateCompleted means the run finished successfully; the dataset
	// artifact is final and no checkpoint remains.
	StateCompleted
	// StateFailedRecoverable means a transport or API error stopped the run
	// after a checkpoint was saved; an explicit resume can continue it.
	StateFailedRecoverable
	// StateCancelled means the caller requested cancellation; a checkpoint
	// was saved so the run can be resumed.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailedRecoverable:
		return "failed-recoverable"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RunState is the complete mutable state of one fetch run. Each run owns
// exactly one RunState; the loop mutates it and hands it wholesale to the
// checkpoint store for serialization. Nothing about a run lives in package
// or process globals.
type RunState struct {
	RunID          string
	AppID          int
	TargetCount    int
	Cursor         string
	Reviews        []steam.Review
	PagesFetched   int
	TotalAvailable int // -1 until the API reports a total
	StartTime      time.Time
	DatasetFile    string
	State          State
	Resumed        bool

	// Err is the classified terminal error, set only in
	// StateFailedRecoverable.
	Err *errs.Error
}

func newRunState(appid, targetCount int) *RunState {
	return &RunState{
		RunID:          ulid.Make().String(),
		AppID:          appid,
		TargetCount:    targetCount,
		Cursor:         steam.CursorSentinel,
		TotalAvailable: -1,
		StartTime:      time.Now(),
		State:          StateRunning,
	}
}

// Count returns the number of reviews accumulated so far.
func (rs *RunState) Count() int {
	return len(rs.Reviews)
}

// checkpoint builds the persistable recovery snapshot for the run.
func (rs *RunState) checkpoint() *checkpoint.Checkpoint {
	return &checkpoint.Checkpoint{
		AppID:            rs.AppID,
		Cursor:           rs.Cursor,
		DatasetFile:      rs.DatasetFile,
		TargetCount:      rs.TargetCount,
		AccumulatedCount: rs.Count(),
		StartTime:        rs.StartTime,
	}
}

// snapshot builds the dataset artifact for the run's current contents.
func (rs *RunState) snapshot() *dataset.Dataset {
	return &dataset.Dataset{
		Metadata: dataset.Metadata{
			AppID:                 rs.AppID,
			TotalReviewsCollected: rs.Count(),
			PagesFetched:          rs.PagesFetched,
			DateCollected:         time.Now().UTC().Format("2006-01-02 15:04:05"),
			TargetCount:           rs.TargetCount,
			StartTime:             rs.StartTime,
		},
		Reviews: rs.Reviews,
	}
}
