package model

import "time"

// StopReason explains why an annealing run ended.
type StopReason string

const (
	StopCooled         StopReason = "cooled"          // Temperature reached the stop threshold
	StopIterationLimit StopReason = "iteration-limit" // MaxIterations reached
	StopTimeLimit      StopReason = "time-limit"      // TimeLimit elapsed
	StopCancelled      StopReason = "cancelled"       // Context cancelled
	StopAborted        StopReason = "aborted"         // A mid-run error ended the loop
)

// AnnealStats summarizes one annealing run.
type AnnealStats struct {
	Iterations       int           `json:"iterations"`
	Accepted         int           `json:"accepted"`
	Improvements     int           `json:"improvements"`
	Swaps            int           `json:"swaps"`       // Successful swap moves
	Relocations      int           `json:"relocations"` // Successful relocations, flipped or not
	Flips            int           `json:"flips"`       // Relocations that needed a flip
	NoOps            int           `json:"no_ops"`      // Perturbations that changed nothing
	FinalTemperature float64       `json:"final_temperature"`
	StopReason       StopReason    `json:"stop_reason"`
	Elapsed          time.Duration `json:"elapsed"`
}

// TracePoint is one sample of the convergence curve.
type TracePoint struct {
	Iteration   int     `json:"iteration"`
	Temperature float64 `json:"temperature"`
	CurrentArea int     `json:"current_area"`
	BestArea    int     `json:"best_area"`
}

// RunRecord ties one complete run together for save/load and reporting.
type RunRecord struct {
	Version        string        `json:"version"`
	Name           string        `json:"name"`
	CreatedAt      string        `json:"created_at"`
	Settings       Settings      `json:"settings"`
	Canvas         CanvasBounds  `json:"canvas"`
	Input          []Tile        `json:"input"`
	Initial        Configuration `json:"initial"`
	Final          Configuration `json:"final"`
	InitialMetrics Metrics       `json:"initial_metrics"`
	FinalMetrics   Metrics       `json:"final_metrics"`
	Stats          AnnealStats   `json:"stats"`
	Trace          []TracePoint  `json:"trace,omitempty"`
}

// RunRecordVersion is written into every saved RunRecord.
const RunRecordVersion = "1.0.0"

func NewRunRecord(name string, settings Settings, input []Tile) RunRecord {
	return RunRecord{
		Version:   RunRecordVersion,
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Input:     NewConfiguration(input).Tiles,
	}
}

// Improvement returns the percentage by which the bounding-box area shrank
// between the initial and final layouts.
func (r RunRecord) Improvement() float64 {
	if r.InitialMetrics.Area == 0 {
		return 0
	}
	return float64(r.InitialMetrics.Area-r.FinalMetrics.Area) / float64(r.InitialMetrics.Area) * 100.0
}
