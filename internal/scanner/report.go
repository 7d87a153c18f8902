package scanner

import "time"

// Mode selects how much work a scan run does.
type Mode string

const (
	// ModeQuick walks the media root and registers files the catalog has
	// not seen yet. Existing records are only touched to refresh their
	// last-seen timestamp.
	ModeQuick Mode = "quick"

	// ModeFull does everything quick does, then re-reads sidecar metadata
	// and probes durations for every discovered file.
	ModeFull Mode = "full"
)

// ParseMode maps a request parameter onto a scan mode. An empty value
// defaults to quick.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "", ModeQuick:
		return ModeQuick, true
	case ModeFull:
		return ModeFull, true
	}
	return "", false
}

// ScanError records a per-file failure. A failing file never aborts the
// run as a whole.
type ScanError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Report summarizes a single scan run.
type Report struct {
	ID         string      `json:"id"`
	Mode       Mode        `json:"mode"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
	FilesSeen  int         `json:"filesSeen"`
	NewRecords int         `json:"newRecords"`
	Refreshed  int         `json:"refreshed"`
	Errors     []ScanError `json:"errors,omitempty"`
}

func (r *Report) addError(path string, err error) {
	r.Errors = append(r.Errors, ScanError{Path: path, Message: err.Error()})
}
