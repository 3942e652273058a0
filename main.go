// Command smartastronaut starts the Smart Astronaut mission planner server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, the map library and session directories, debug logging,
// version output, and optional ngrok tunneling for external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/smartastronaut/api"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
	"github.com/wricardo/mcp-training/smartastronaut/game/service"
	"github.com/wricardo/mcp-training/smartastronaut/game/session"
	"github.com/wricardo/mcp-training/smartastronaut/transport/mcp"
	"github.com/wricardo/mcp-training/smartastronaut/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Smart Astronaut Mission Planner"
)

const (
	// externalAPI is probed by stdio-mcp mode before starting its own API
	externalAPI = "http://localhost:8080"

	sessionMaxAge     = 24 * time.Hour
	cleanupInterval   = time.Hour
	syncInterval      = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	externalProbeWait = 2 * time.Second
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	mapsDir      = flag.String("maps-dir", envOrDefault("MAPS_DIR", "maps"), "Directory containing the map library")
	sessionsDir  = flag.String("sessions-dir", envOrDefault("SESSIONS_DIR", "sessions"), "Directory for persisted sessions")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Expose the server through an ngrok tunnel (or NGROK_ENABLED=true)")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or NGROK_AUTHTOKEN)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Reserved ngrok domain (or NGROK_DOMAIN)")
)

// envOrDefault returns the environment variable key, or fallback when it is unset.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http          REST API, live mission events and the /mcp endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp, mcp-stdio  MCP over stdin/stdout, backed by %s or an internal API\n", externalAPI)
		fmt.Fprintf(os.Stderr, "  mcp                   Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Serve on localhost:8080 with maps from ./maps\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -maps-dir /srv/maps      # Use another map library\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp                      # Plan missions from an MCP client\n", os.Args[0])
	}
}

func main() {
	// A missing .env is normal; any other failure is worth a warning
	switch err := godotenv.Load(); {
	case err == nil:
		log.Println("Loaded environment from .env")
	case !os.IsNotExist(err):
		log.Printf("Warning: could not load .env: %v", err)
	}

	// Values from .env apply unless the command line overrides them
	*mapsDir = envOrDefault("MAPS_DIR", *mapsDir)
	*sessionsDir = envOrDefault("SESSIONS_DIR", *sessionsDir)

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	log.SetFlags(log.LstdFlags)
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	mode := "server"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}
	log.Printf("%s v%s starting in %s mode (maps: %s, sessions: %s)", AppName, Version, mode, *mapsDir, *sessionsDir)

	missionService, sessionManager, err := initializeServices(*mapsDir, *sessionsDir)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(missionService)

	case "server", "http":
		runHTTPServer(missionService)
		if err := sessionManager.SaveAllSessions(); err != nil {
			log.Printf("Warning: failed to save sessions on shutdown: %v", err)
		}

	default:
		log.Fatalf("Unknown mode %q. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// runHTTPServer serves the REST API, the WebSocket hub and /mcp until SIGINT or SIGTERM.
// When ngrok is enabled the same handler is also served through a public tunnel.
func runHTTPServer(missionService service.MissionService) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	addr := fmt.Sprintf("%s:%d", *host, *port)

	// The /mcp tools call back into this server's REST API
	mcpClient := mcp.NewClient("http://" + addr)

	handler := http.NewServeMux()
	handler.Handle("/", api.NewServer(missionService, hub))
	handler.Handle("/mcp", newMCPHandler(mcpClient.GetMCPServer()))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logEndpoints("http://" + addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if tunnel, ok := ngrokSettingsFromEnv(); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveTunnel(ctx, tunnel, handler)
		}()
	}

	<-ctx.Done()
	log.Println("Shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// logEndpoints prints the public entry points under base (http:// or https://)
func logEndpoints(base string) {
	wsBase := "ws" + strings.TrimPrefix(base, "http")
	log.Printf("REST API: %s/api", base)
	log.Printf("WebSocket: %s/ws?session=<session_id>", wsBase)
	log.Printf("MCP endpoint: %s/mcp", base)
}

// tunnelSettings holds the ngrok options resolved from flags and environment
type tunnelSettings struct {
	authToken string
	domain    string
}

// ngrokSettingsFromEnv reports whether a tunnel was requested and can be started.
// Flags win over NGROK_ENABLED, NGROK_AUTHTOKEN (or NGROK_AUTH_TOKEN) and NGROK_DOMAIN.
func ngrokSettingsFromEnv() (tunnelSettings, bool) {
	enabled := *ngrokEnabled
	if v := os.Getenv("NGROK_ENABLED"); v == "true" || v == "1" {
		enabled = true
	}
	if !enabled {
		return tunnelSettings{}, false
	}

	settings := tunnelSettings{
		authToken: envOrDefault("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN")),
		domain:    os.Getenv("NGROK_DOMAIN"),
	}
	if *ngrokAuth != "" {
		settings.authToken = *ngrokAuth
	}
	if *ngrokDomain != "" {
		settings.domain = *ngrokDomain
	}

	if settings.authToken == "" {
		log.Println("WARNING: ngrok requested without an auth token (-ngrok-auth or NGROK_AUTHTOKEN); tunnel disabled")
		return tunnelSettings{}, false
	}
	return settings, true
}

// serveTunnel serves handler through ngrok until ctx is cancelled
func serveTunnel(ctx context.Context, settings tunnelSettings, handler http.Handler) {
	var endpoint ngrokConfig.Tunnel
	if settings.domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.domain))
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(settings.authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	log.Printf("Ngrok tunnel established: %s", tun.URL())
	logEndpoints(tun.URL())

	// Closing the tunnel on shutdown unblocks Serve
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// newMCPHandler serves JSON-RPC messages posted to /mcp with the given MCP server.
func newMCPHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// initializeServices wires the map library, session persistence and the mission service.
// It also starts background routines that prune stale sessions and sync with the filesystem.
func initializeServices(mapsDir, sessionsDir string) (service.MissionService, *session.Manager, error) {
	mapManager, err := maps.NewManager(mapsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create map manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: failed to load persisted sessions: %v", err)
	}

	missionService := service.NewMissionService(sessionManager, mapManager)

	go sessionCleanupRoutine(sessionManager)
	go filesystemSyncRoutine(sessionManager, persistence)

	return missionService, sessionManager, nil
}

// sessionCleanupRoutine drops sessions idle for longer than sessionMaxAge
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// filesystemSyncRoutine forgets in-memory sessions whose files were deleted,
// so removing a file under the sessions directory ends that mission.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for range ticker.C {
		pruned := 0
		for _, sess := range manager.List() {
			if persistence.Exists(sess.ID) {
				continue
			}
			if err := manager.DeleteFromMemory(sess.ID); err == nil {
				pruned++
				log.Printf("Pruned session %s from memory (file deleted)", sess.ID)
			}
		}
		if pruned > 0 {
			log.Printf("Filesystem sync: pruned %d orphaned sessions", pruned)
		}
	}
}

// runStdioMCP serves MCP over stdin/stdout. The tools need a REST API: an
// already running server on externalAPI is reused, otherwise one is started
// on a random loopback port for the lifetime of the process.
func runStdioMCP(missionService service.MissionService) {
	baseURL := externalAPI
	if externalAPIAvailable(baseURL) {
		log.Printf("Using external API server at %s", baseURL)
	} else {
		internalURL, shutdown, err := startInternalAPI(missionService)
		if err != nil {
			log.Fatalf("Failed to start internal API server: %v", err)
		}
		defer shutdown()
		baseURL = internalURL
		log.Printf("Using internal API server at %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}

func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: externalProbeWait}
	resp, err := client.Get(baseURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// startInternalAPI serves the REST API on 127.0.0.1 with a kernel-chosen port
func startInternalAPI(missionService service.MissionService) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on loopback: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{Handler: api.NewServer(missionService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(ctx)
		hub.Stop()
	}
	return "http://" + listener.Addr().String(), shutdown, nil
}
