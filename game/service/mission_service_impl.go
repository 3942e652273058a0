package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
)

// missionServiceImpl implements the MissionService interface
type missionServiceImpl struct {
	sessions SessionManager
	maps     MapManager
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMissionService creates a new mission service instance
func NewMissionService(sessions SessionManager, mapManager MapManager) MissionService {
	return &missionServiceImpl{
		sessions: sessions,
		maps:     mapManager,
		now:      time.Now,
	}
}

// ListAlgorithms returns the registered strategies
func (s *missionServiceImpl) ListAlgorithms(ctx context.Context) []engine.Info {
	return engine.Strategies()
}

// GetAlgorithm describes one strategy
func (s *missionServiceImpl) GetAlgorithm(ctx context.Context, name string) (*engine.Info, error) {
	info, err := engine.Describe(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	return &info, nil
}

// Run executes a strategy and wraps its result in an execution envelope.
// Invalid parameters still produce an envelope, with status "error".
func (s *missionServiceImpl) Run(ctx context.Context, req RunRequest) (*Execution, error) {
	strategy, err := engine.Lookup(req.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, req.Algorithm)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := s.now()
	result := strategy.Solve(req.Params)
	elapsed := s.now().Sub(started)

	exec := &Execution{
		Algorithm:     strategy.Name(),
		Status:        StatusSuccess,
		ExecutionTime: roundSeconds(elapsed),
		Result:        &result,
	}
	if err := engine.ValidateParams(req.Params); err != nil {
		exec.Status = StatusError
		exec.Error = err.Error()
	}
	return exec, nil
}

// CreateSession creates a new mission session on a named map (or the default map)
func (s *missionServiceImpl) CreateSession(ctx context.Context, mapName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var grid [][]int
	if mapName != "" {
		var err error
		grid, err = s.maps.LoadMap(mapName)
		if err != nil {
			if errors.Is(err, maps.ErrMapNotFound) {
				if infos, listErr := s.maps.ListMaps(); listErr == nil && len(infos) > 0 {
					ids := make([]string, 0, len(infos))
					for _, info := range infos {
						ids = append(ids, info.MapID)
					}
					return nil, fmt.Errorf("%w. Available maps: %v", err, ids)
				}
			}
			return nil, fmt.Errorf("failed to load map %s: %w", mapName, err)
		}
	} else {
		mapName = "default"
		grid = s.maps.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", mapName, grid)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

// GetSession retrieves session information. It takes the write lock because it
// touches the session's last access time.
func (s *missionServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *missionServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// DeleteSession removes a session
func (s *missionServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// UploadMap replaces the session map with a parsed text map
func (s *missionServiceImpl) UploadMap(ctx context.Context, sessionID, text string) (*SessionInfo, error) {
	grid, err := maps.ParseMap(text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Grid = grid
	sess.MapName = "upload"
	sess.Goal = nil
	s.persist(sess)

	return sessionInfo(sess), nil
}

// GetMap returns the full session map
func (s *missionServiceImpl) GetMap(ctx context.Context, sessionID string) (*MapView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return &MapView{
		Grid:     maps.Clone(sess.Grid),
		Rows:     engine.GridSize,
		Cols:     engine.GridSize,
		Metadata: sess.Metadata(),
		Loaded:   sess.Loaded(),
	}, nil
}

// ResetMap unloads the session map and clears its goal. Run history is kept.
func (s *missionServiceImpl) ResetMap(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Grid = nil
	sess.Goal = nil
	sess.MapName = ""
	s.persist(sess)

	return sessionInfo(sess), nil
}

// GetCell returns one cell of the session map
func (s *missionServiceImpl) GetCell(ctx context.Context, sessionID string, row, col int) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.loadedSession(sessionID)
	if err != nil {
		return nil, err
	}

	pos := engine.Position{Row: row, Col: col}
	if !pos.InBounds() {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, pos)
	}

	value := sess.Grid[row][col]
	return &CellInfo{Row: row, Col: col, Value: value, Role: engine.CellCode(value).Role()}, nil
}

// GetMetadata returns the analyzed session map. An unloaded session reports valid=false.
func (s *missionServiceImpl) GetMetadata(ctx context.Context, sessionID string) (*maps.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	meta := sess.Metadata()
	return &meta, nil
}

// SetGoal records a goal cell on the session map
func (s *missionServiceImpl) SetGoal(ctx context.Context, sessionID string, goal engine.Position) (*maps.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadedSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !goal.InBounds() {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, goal)
	}

	sess.Goal = &goal
	s.persist(sess)

	meta := sess.Metadata()
	return &meta, nil
}

// RunOnSession runs a strategy on the session map and records it in the history
func (s *missionServiceImpl) RunOnSession(ctx context.Context, sessionID string, req SessionRunRequest) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadedSession(sessionID)
	if err != nil {
		return nil, err
	}

	start := req.Start
	if start == nil {
		start = maps.Analyze(sess.Grid).Start
	}
	if start == nil {
		return nil, fmt.Errorf("%w: map has no astronaut cell and no start was given", ErrNoStart)
	}

	exec, err := s.Run(ctx, RunRequest{
		Algorithm: req.Algorithm,
		Params: engine.Params{
			Map:           sess.Grid,
			Start:         *start,
			OperatorOrder: req.OperatorOrder,
			MaxDepth:      req.MaxDepth,
		},
	})
	if err != nil {
		return nil, err
	}

	record := &RunRecord{
		ID:            uuid.NewString(),
		Algorithm:     exec.Algorithm,
		MapName:       sess.MapName,
		Start:         *start,
		OperatorOrder: req.OperatorOrder,
		MaxDepth:      req.MaxDepth,
		Status:        exec.Status,
		Result:        *exec.Result,
		ExecutionTime: exec.ExecutionTime,
		CreatedAt:     s.now(),
	}
	sess.Runs = append(sess.Runs, record)
	s.persist(sess)

	log.Printf("[RUN] Session %s: %s from %v -> %d moves, cost %.1f, %d nodes (%s)",
		sess.ID, record.Algorithm, record.Start, record.Result.Moves(), record.Result.Cost,
		record.Result.NodesExpanded, record.Result.Message)

	return record, nil
}

// GetRunHistory returns paginated run history
func (s *missionServiceImpl) GetRunHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Runs
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	runs := []*RunRecord{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			runs = append(runs, history[i])
		}
	} else if start < total {
		runs = append(runs, history[start:end]...)
	}

	return &HistoryResponse{
		Runs:        runs,
		TotalRuns:   total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListMaps returns the maps available in the library
func (s *missionServiceImpl) ListMaps(ctx context.Context) ([]*maps.MapInfo, error) {
	return s.maps.ListMaps()
}

// SaveMap validates and stores a map in the library
func (s *missionServiceImpl) SaveMap(ctx context.Context, name, text string) (*maps.MapInfo, error) {
	grid, err := s.maps.SaveMap(name, text)
	if err != nil {
		return nil, err
	}
	return &maps.MapInfo{Filename: name + ".txt", MapID: name, Metadata: maps.Analyze(grid)}, nil
}

func (s *missionServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return sess, nil
}

func (s *missionServiceImpl) loadedSession(sessionID string) (*Session, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Loaded() {
		return nil, fmt.Errorf("%w: upload a map to session %s first", ErrNoMapLoaded, sess.ID)
	}
	return sess, nil
}

// persist saves a mutated session; failures are logged, not returned
func (s *missionServiceImpl) persist(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Printf("Warning: Failed to persist session %s: %v", sess.ID, err)
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	info := &SessionInfo{
		ID:             sess.ID,
		MapName:        sess.MapName,
		Loaded:         sess.Loaded(),
		Metadata:       sess.Metadata(),
		RunCount:       len(sess.Runs),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
	}
	if n := len(sess.Runs); n > 0 {
		info.LastRun = sess.Runs[n-1]
	}
	return info
}

// roundSeconds reports d in seconds rounded to 4 decimal places
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*10000) / 10000
}
