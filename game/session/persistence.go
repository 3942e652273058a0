package session

import (
	"time"

	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/service"
)

// SessionPersistence stores mission sessions outside the process
type SessionPersistence interface {
	Save(session *service.Session) error

	// Load returns ErrSessionNotFound when nothing is stored under id
	Load(id string) (*service.Session, error)

	Delete(id string) error

	// ListAll returns the IDs of every stored session
	ListAll() ([]string, error)

	Exists(id string) bool
}

// recordVersion is written into every session file
const recordVersion = 1

// sessionRecord is the on-disk form of a session. The map is kept as text rows
// in the same format as library maps, so a session file can be edited by hand.
type sessionRecord struct {
	Version        int                  `json:"version"`
	ID             string               `json:"id"`
	MapName        string               `json:"map_name"`
	Map            []string             `json:"map,omitempty"`
	Goal           *engine.Position     `json:"goal,omitempty"`
	Runs           []*service.RunRecord `json:"runs"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
}
