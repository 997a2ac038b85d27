// Package checkpoint persists fetch-run recovery state to disk.
//
// A checkpoint records the pagination cursor, the dataset artifact the run
// has written so far, and enough run metadata to resume after a crash,
// cancellation, or transport failure. Checkpoint files are written with a
// monotonically increasing sequence number per appid; the highest sequence
// is authoritative and older sequences are garbage collected after each
// successful save, so a crash mid-save can never shadow newer progress with
// an older file.
//
// A checkpoint is only valid together with its dataset artifact: the
// artifact is written first, the checkpoint second. A crash between the two
// writes leaves a checkpoint whose count is at most the artifact's item
// count, never more.
package checkpoint
