package constants

// RunStatus is the canonical status for rows in batch_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusOK      RunStatus = "OK"      // completed, dataset written
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure
)
