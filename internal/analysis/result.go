// Package analysis implements the weekly aggregation passes over collected
// market, weather, and economic data.
package analysis

// Status distinguishes a stage that had no input, a stage that computed a
// result, and a stage that failed mid-computation. Failure is never
// silently indistinguishable from absence of data: the serialized report
// keeps empty shapes for both, but Status and Reason record which it was.
type Status string

const (
	StatusEmpty    Status = "empty"
	StatusComputed Status = "computed"
	StatusFailed   Status = "failed"
)

// StageInfo is the outcome descriptor attached to every analysis pass.
type StageInfo struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func computed() StageInfo {
	return StageInfo{Status: StatusComputed}
}

func empty(reason string) StageInfo {
	return StageInfo{Status: StatusEmpty, Reason: reason}
}

func failed(reason string) StageInfo {
	return StageInfo{Status: StatusFailed, Reason: reason}
}

// Stats is the standard descriptive aggregate reported per series.
type Stats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}
