package service

import (
	"time"

	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunRequest dispatches a strategy by name
type RunRequest struct {
	Algorithm string        `json:"algorithm"`
	Params    engine.Params `json:"params"`
}

// Execution is the envelope returned for every run
type Execution struct {
	Algorithm     string         `json:"algorithm"`
	Status        string         `json:"status"`
	ExecutionTime float64        `json:"execution_time"` // seconds
	Result        *engine.Result `json:"result,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// SessionRunRequest runs a strategy on a session's map.
// A nil Start uses the map's astronaut cell.
type SessionRunRequest struct {
	Algorithm     string           `json:"algorithm"`
	Start         *engine.Position `json:"start,omitempty"`
	OperatorOrder []string         `json:"operator_order,omitempty"`
	MaxDepth      int              `json:"max_depth,omitempty"`
}

// RunRecord is a run stored in a session's history
type RunRecord struct {
	ID            string          `json:"id"`
	Algorithm     string          `json:"algorithm"`
	MapName       string          `json:"map_name"`
	Start         engine.Position `json:"start"`
	OperatorOrder []string        `json:"operator_order,omitempty"`
	MaxDepth      int             `json:"max_depth,omitempty"`
	Status        string          `json:"status"`
	Result        engine.Result   `json:"result"`
	ExecutionTime float64         `json:"execution_time"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SessionInfo provides information about a mission session
type SessionInfo struct {
	ID             string        `json:"id"`
	MapName        string        `json:"map_name"`
	Loaded         bool          `json:"loaded"`
	Metadata       maps.Metadata `json:"metadata"`
	RunCount       int           `json:"run_count"`
	LastRun        *RunRecord    `json:"last_run,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
}

// MapView is the full map of a session
type MapView struct {
	Grid     [][]int       `json:"grid"`
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Metadata maps.Metadata `json:"metadata"`
	Loaded   bool          `json:"loaded"`
}

// CellInfo describes one cell of a session map
type CellInfo struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value int    `json:"value"`
	Role  string `json:"role"`
}

// HistoryOptions configures run history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated run history
type HistoryResponse struct {
	Runs        []*RunRecord `json:"runs"`
	TotalRuns   int          `json:"total_runs"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	TotalPages  int          `json:"total_pages"`
	HasNext     bool         `json:"has_next"`
	HasPrevious bool         `json:"has_previous"`
}
