package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
)

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	sess, err := manager.Create("", "canyon", maps.BuiltinMap())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(sess.ID) != 4 {
		t.Errorf("Expected 4-character ID, got %q", sess.ID)
	}
	if sess.MapName != "canyon" || !sess.Loaded() {
		t.Errorf("Unexpected session: %+v", sess)
	}
	if sess.CreatedAt.IsZero() || sess.LastAccessedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	named, err := manager.Create("Alpha", "canyon", nil)
	if err != nil {
		t.Fatalf("Create with ID failed: %v", err)
	}
	if named.ID != "alpha" {
		t.Errorf("Expected lowercase ID 'alpha', got %q", named.ID)
	}

	if _, err := manager.Create("ALPHA", "canyon", nil); !errors.Is(err, ErrSessionAlreadyExists) {
		t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
	}
	if _, err := manager.Create("../etc", "canyon", nil); !errors.Is(err, ErrInvalidSessionID) {
		t.Errorf("Expected ErrInvalidSessionID, got %v", err)
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("beef", "canyon", maps.BuiltinMap())

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"exact", "beef", false},
		{"upper case", "BEEF", false},
		{"missing", "cafe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := manager.Get(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrSessionNotFound) {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != created {
				t.Error("Expected the same session instance")
			}
		})
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("dead", "canyon", nil)

	if err := manager.Delete("DEAD"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", manager.Count())
	}
	if err := manager.Delete("dead"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := manager.DeleteFromMemory("dead"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	old, _ := manager.Create("0001", "canyon", nil)
	manager.Create("0002", "canyon", nil)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("0001"); err == nil {
		t.Error("Expected expired session to be gone")
	}
	if _, err := manager.Get("0002"); err != nil {
		t.Errorf("Expected fresh session to remain: %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	sess, _ := manager.Create("abcd", "canyon", nil)
	before := time.Now().Add(-time.Minute)
	sess.LastAccessedAt = before

	if err := manager.UpdateLastAccessed("abcd"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !sess.LastAccessedAt.After(before) {
		t.Error("Expected LastAccessedAt to advance")
	}
	if err := manager.UpdateLastAccessed("zzzz"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager()
	manager.Create("abcd", "canyon", nil)

	if err := manager.Save("abcd"); err != nil {
		t.Errorf("Expected nil error without persistence, got %v", err)
	}
	if err := manager.Save("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	var wg sync.WaitGroup
	ids := make(chan string, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := manager.Create("", "canyon", nil)
			if err != nil {
				t.Errorf("Create failed: %v", err)
				return
			}
			ids <- sess.ID
			manager.Get(sess.ID)
			manager.List()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate session ID %s", id)
		}
		seen[id] = true
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestGenerateSessionID(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := generateSessionID()
		if len(id) != 4 || strings.ToLower(id) != id || !validSessionID(id) {
			t.Errorf("Unexpected session ID %q", id)
		}
	}
}
