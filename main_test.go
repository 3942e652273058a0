package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
	"github.com/wricardo/mcp-training/smartastronaut/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Smart Astronaut Mission Planner"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *mapsDir == "" {
		t.Error("Maps directory should have a default value")
	}
	if *sessionsDir == "" {
		t.Error("Sessions directory should have a default value")
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("SMART_ASTRONAUT_TEST_DIR", "")
	if got := envOrDefault("SMART_ASTRONAUT_TEST_DIR", "maps"); got != "maps" {
		t.Errorf("Expected fallback, got %q", got)
	}

	t.Setenv("SMART_ASTRONAUT_TEST_DIR", "/srv/maps")
	if got := envOrDefault("SMART_ASTRONAUT_TEST_DIR", "maps"); got != "/srv/maps" {
		t.Errorf("Expected environment value, got %q", got)
	}
}

func TestInitializeServices(t *testing.T) {
	mapsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(mapsDir, "canyon.txt"), []byte(maps.Format(maps.BuiltinMap())), 0644); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}
	sessionsDir := filepath.Join(t.TempDir(), "sessions")

	missionService, sessionManager, err := initializeServices(mapsDir, sessionsDir)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	ctx := context.Background()
	info, err := missionService.CreateSession(ctx, "canyon")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sessionManager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", sessionManager.Count())
	}
	if _, err := os.Stat(filepath.Join(sessionsDir, info.ID+".json")); err != nil {
		t.Errorf("Expected session to be persisted: %v", err)
	}
}

func TestInitializeServices_InvalidMapsDir(t *testing.T) {
	_, _, err := initializeServices("/non/existent/path", t.TempDir())
	if err == nil {
		t.Error("Expected error for non-existent maps directory")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := newMCPHandler(mcp.NewClient("http://127.0.0.1:1").GetMCPServer())

	req := httptest.NewRequest("GET", "/mcp", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	req = httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
	w = httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var response struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	names := make(map[string]bool)
	for _, tool := range response.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_algorithms", "run_algorithm", "run_on_session"} {
		if !names[want] {
			t.Errorf("Expected tool %s in %v", want, names)
		}
	}
}

func TestNgrokSettingsFromEnv(t *testing.T) {
	t.Setenv("NGROK_ENABLED", "")
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "")
	t.Setenv("NGROK_DOMAIN", "")

	if _, ok := ngrokSettingsFromEnv(); ok {
		t.Error("Expected tunnel to be disabled by default")
	}

	t.Setenv("NGROK_ENABLED", "true")
	if _, ok := ngrokSettingsFromEnv(); ok {
		t.Error("Expected tunnel to stay disabled without an auth token")
	}

	t.Setenv("NGROK_AUTH_TOKEN", "legacy-token")
	t.Setenv("NGROK_DOMAIN", "astronaut.ngrok.app")
	settings, ok := ngrokSettingsFromEnv()
	if !ok {
		t.Fatal("Expected tunnel to be enabled")
	}
	if settings.authToken != "legacy-token" || settings.domain != "astronaut.ngrok.app" {
		t.Errorf("Unexpected settings: %+v", settings)
	}

	t.Setenv("NGROK_AUTHTOKEN", "primary-token")
	original := *ngrokAuth
	*ngrokAuth = "flag-token"
	defer func() { *ngrokAuth = original }()

	if settings, _ := ngrokSettingsFromEnv(); settings.authToken != "flag-token" {
		t.Errorf("Expected flag to win, got %q", settings.authToken)
	}
}

func TestStartInternalAPI(t *testing.T) {
	mapsDir := t.TempDir()
	missionService, _, err := initializeServices(mapsDir, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	baseURL, shutdown, err := startInternalAPI(missionService)
	if err != nil {
		t.Fatalf("startInternalAPI failed: %v", err)
	}
	defer shutdown()

	if !strings.HasPrefix(baseURL, "http://127.0.0.1:") {
		t.Errorf("Unexpected base URL %s", baseURL)
	}
	if !externalAPIAvailable(baseURL) {
		t.Error("Expected internal API to answer on /api")
	}

	resp, err := http.Get(baseURL + "/api/algorithms")
	if err != nil {
		t.Fatalf("GET /api/algorithms failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestExternalAPIAvailable(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	if externalAPIAvailable(failing.URL) {
		t.Error("Expected a 5xx API to be treated as unavailable")
	}
	if externalAPIAvailable("http://127.0.0.1:1") {
		t.Error("Expected an unreachable API to be unavailable")
	}
}
