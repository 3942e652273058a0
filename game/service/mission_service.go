package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrNoMapLoaded      = errors.New("no map loaded")
	ErrNoStart          = errors.New("no start position")
	ErrOutOfBounds      = errors.New("position out of bounds")
)

// MissionService defines all planner operations
type MissionService interface {
	// Algorithms
	ListAlgorithms(ctx context.Context) []engine.Info
	GetAlgorithm(ctx context.Context, name string) (*engine.Info, error)
	Run(ctx context.Context, req RunRequest) (*Execution, error)

	// Session Management
	CreateSession(ctx context.Context, mapName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Session Map
	UploadMap(ctx context.Context, sessionID, text string) (*SessionInfo, error)
	GetMap(ctx context.Context, sessionID string) (*MapView, error)
	ResetMap(ctx context.Context, sessionID string) (*SessionInfo, error)
	GetCell(ctx context.Context, sessionID string, row, col int) (*CellInfo, error)
	GetMetadata(ctx context.Context, sessionID string) (*maps.Metadata, error)
	SetGoal(ctx context.Context, sessionID string, goal engine.Position) (*maps.Metadata, error)

	// Session Runs
	RunOnSession(ctx context.Context, sessionID string, req SessionRunRequest) (*RunRecord, error)
	GetRunHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Map Library
	ListMaps(ctx context.Context) ([]*maps.MapInfo, error)
	SaveMap(ctx context.Context, name, text string) (*maps.MapInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, mapName string, grid [][]int) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// MapManager handles named map loading
type MapManager interface {
	LoadMap(name string) ([][]int, error)
	ListMaps() ([]*maps.MapInfo, error)
	GetDefault() [][]int
	SaveMap(name, text string) ([][]int, error)
}

// Session is a mission workspace: a loaded map, an optional goal and the runs made on it
type Session struct {
	ID             string
	MapName        string
	Grid           [][]int
	Goal           *engine.Position
	Runs           []*RunRecord
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Loaded reports whether the session holds a map
func (s *Session) Loaded() bool {
	return s.Grid != nil
}

// Metadata analyzes the session map, including its goal
func (s *Session) Metadata() maps.Metadata {
	if !s.Loaded() {
		return maps.Metadata{SamplePositions: []engine.Position{}}
	}
	meta := maps.Analyze(s.Grid)
	meta.Goal = s.Goal
	return meta
}
