package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
	"github.com/wricardo/mcp-training/smartastronaut/game/service"
)

const sessionExt = ".json"

// FilePersistence keeps one JSON file per session in a directory
type FilePersistence struct {
	dir string
}

// NewFilePersistence creates dir if needed and stores sessions in it
func NewFilePersistence(dir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{dir: dir}, nil
}

// Save writes the session to a temporary file and renames it into place,
// so a crash never leaves a half-written session behind.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	record := sessionRecord{
		Version:        recordVersion,
		ID:             session.ID,
		MapName:        session.MapName,
		Goal:           session.Goal,
		Runs:           session.Runs,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
	}
	if record.Runs == nil {
		record.Runs = []*service.RunRecord{}
	}
	if session.Loaded() {
		record.Map = strings.Split(strings.TrimSuffix(maps.Format(session.Grid), "\n"), "\n")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	tmp, err := os.CreateTemp(fp.dir, session.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	if err := os.Rename(tmp.Name(), fp.path(session.ID)); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// Load reads a session file. A map that no longer parses is reported as maps.ErrInvalidMap.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if record.Version > recordVersion {
		return nil, fmt.Errorf("session %s was written by a newer version (format %d)", id, record.Version)
	}

	sess := &service.Session{
		ID:             strings.ToLower(id),
		MapName:        record.MapName,
		Goal:           record.Goal,
		Runs:           record.Runs,
		CreatedAt:      record.CreatedAt,
		LastAccessedAt: record.LastAccessedAt,
	}
	if record.ID != "" {
		sess.ID = record.ID
	}
	if sess.Runs == nil {
		sess.Runs = []*service.RunRecord{}
	}

	if len(record.Map) > 0 {
		grid, err := maps.ParseMap(strings.Join(record.Map, "\n"))
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", id, err)
		}
		sess.Grid = grid
	}
	return sess, nil
}

func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// ListAll returns the IDs of the session files in the directory
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionExt))
	}
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	info, err := os.Stat(fp.path(id))
	return err == nil && !info.IsDir()
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.dir, id+sessionExt)
}
