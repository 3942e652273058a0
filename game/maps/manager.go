package maps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrMapNotFound = errors.New("map not found")

const (
	mapExt         = ".txt"
	defaultMapName = "mission"
)

// MapInfo describes a map available in the manager's directory
type MapInfo struct {
	Filename string   `json:"filename"`
	MapID    string   `json:"map_id"`
	Metadata Metadata `json:"metadata"`
}

// Manager handles map loading and caching
type Manager struct {
	mapDir     string
	defaultMap [][]int
	maps       map[string][][]int
	mu         sync.RWMutex
}

// NewManager creates a new map manager over mapDir
func NewManager(mapDir string) (*Manager, error) {
	if _, err := os.Stat(mapDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("map directory does not exist: %s", mapDir)
	}

	m := &Manager{
		mapDir: mapDir,
		maps:   make(map[string][][]int),
	}

	if err := m.loadDefaultMap(); err != nil {
		return nil, fmt.Errorf("failed to load default map: %w", err)
	}

	return m, nil
}

// LoadMap loads a map by name. The returned grid is a copy owned by the caller.
func (m *Manager) LoadMap(name string) ([][]int, error) {
	name = strings.TrimSuffix(name, mapExt)
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
	}

	m.mu.RLock()
	if grid, exists := m.maps[name]; exists {
		m.mu.RUnlock()
		return Clone(grid), nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if grid, exists := m.maps[name]; exists {
		return Clone(grid), nil
	}

	data, err := os.ReadFile(filepath.Join(m.mapDir, name+mapExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	grid, err := ParseMap(string(data))
	if err != nil {
		return nil, err
	}

	m.maps[name] = grid
	return Clone(grid), nil
}

// ListMaps returns information about all parseable maps in the directory
func (m *Manager) ListMaps() ([]*MapInfo, error) {
	entries, err := os.ReadDir(m.mapDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read map directory: %w", err)
	}

	var infos []*MapInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), mapExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), mapExt)
		grid, err := m.LoadMap(name)
		if err != nil {
			// Skip invalid maps
			continue
		}

		infos = append(infos, &MapInfo{
			Filename: entry.Name(),
			MapID:    name,
			Metadata: Analyze(grid),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].MapID < infos[j].MapID })
	return infos, nil
}

// GetDefault returns a copy of the default map
func (m *Manager) GetDefault() [][]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Clone(m.defaultMap)
}

// SetDefault sets the default map by name
func (m *Manager) SetDefault(name string) error {
	grid, err := m.LoadMap(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMap = grid
	return nil
}

// RefreshCache drops cached maps and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.maps = make(map[string][][]int)
	m.mu.Unlock()

	return m.loadDefaultMap()
}

// SaveMap validates text and writes it to the directory under name
func (m *Manager) SaveMap(name, text string) ([][]int, error) {
	name = strings.TrimSuffix(name, mapExt)
	if !validName(name) {
		return nil, fmt.Errorf("%w: invalid map name %q", ErrInvalidMap, name)
	}

	grid, err := ParseMap(text)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(m.mapDir, name+mapExt)
	if err := os.WriteFile(path, []byte(Format(grid)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write map file: %w", err)
	}

	m.mu.Lock()
	m.maps[name] = grid
	m.mu.Unlock()

	return Clone(grid), nil
}

// loadDefaultMap prefers "mission", then the first map listed, then a built-in map
func (m *Manager) loadDefaultMap() error {
	grid, err := m.LoadMap(defaultMapName)
	if err != nil {
		infos, listErr := m.ListMaps()
		if listErr != nil || len(infos) == 0 {
			grid = BuiltinMap()
		} else if grid, err = m.LoadMap(infos[0].MapID); err != nil {
			grid = BuiltinMap()
		}
	}

	m.mu.Lock()
	m.defaultMap = grid
	m.mu.Unlock()
	return nil
}

// validName rejects names that would escape the map directory
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

// BuiltinMap returns a small valid mission used when no map files exist
func BuiltinMap() [][]int {
	return [][]int{
		{2, 0, 0, 0, 1, 0, 0, 0, 0, 0},
		{0, 1, 1, 0, 1, 0, 3, 3, 0, 0},
		{0, 0, 5, 0, 0, 0, 0, 3, 6, 0},
		{0, 1, 0, 1, 1, 1, 0, 0, 0, 0},
		{0, 1, 0, 0, 0, 4, 4, 1, 1, 0},
		{0, 3, 3, 1, 0, 0, 0, 0, 1, 0},
		{0, 0, 0, 1, 6, 1, 1, 0, 0, 0},
		{1, 1, 0, 0, 0, 0, 1, 4, 1, 0},
		{0, 0, 0, 1, 3, 0, 0, 0, 1, 6},
		{0, 1, 0, 0, 0, 1, 0, 0, 0, 0},
	}
}
