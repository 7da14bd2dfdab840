package navigation

import "time"

// Scan failure reasons reported to a Recorder.
const (
	ScanFailureOpen      = "open"
	ScanFailureDecode    = "decode"
	ScanFailureRead      = "read"
	ScanFailureCancelled = "cancelled"
)

// Outcomes reported to Recorder.ObserveList.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeError  = "error"
)

// Recorder receives navigation metrics.
type Recorder interface {
	ObserveList(operation string, filtered bool, outcome string, duration time.Duration)
	EntryDropped()
	FileScanned(matched bool)
	ScanFailed(reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveList(string, bool, string, time.Duration) {}
func (nopRecorder) EntryDropped()                                  {}
func (nopRecorder) FileScanned(bool)                               {}
func (nopRecorder) ScanFailed(string)                              {}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case IsAccessDenied(err):
		return OutcomeDenied
	default:
		return OutcomeError
	}
}
