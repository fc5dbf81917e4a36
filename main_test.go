package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/slide2048/api"
	"github.com/wricardo/slide2048/game/session"
	"github.com/wricardo/slide2048/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, err := initializeServices(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	// empty config dir falls back to the classic board
	sess, err := gameService.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if sess.GameState.BoardSize != 4 {
		t.Errorf("Expected default 4x4 board, got %d", sess.GameState.BoardSize)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	_, err := initializeServices(context.Background(), "/non/existent/path")
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestSessionCleanupRoutineStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sessionCleanupRoutine(ctx, session.NewManager(), time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop on cancel")
	}
}

// runWithAction runs the CLI with every action replaced by capture
func runWithAction(t *testing.T, args []string, capture cli.ActionFunc) {
	t.Helper()
	cmd := newCommand()
	cmd.Action = capture
	for _, sub := range cmd.Commands {
		sub.Action = capture
	}
	if err := cmd.Run(context.Background(), append([]string{"slide2048"}, args...)); err != nil {
		t.Fatalf("Command failed: %v", err)
	}
}

func TestCommandFlagDefaults(t *testing.T) {
	var port int
	var host, configDir string

	runWithAction(t, nil, func(ctx context.Context, cmd *cli.Command) error {
		port = int(cmd.Int("port"))
		host = cmd.String("host")
		configDir = cmd.String("config-dir")
		return nil
	})

	if port != 8080 {
		t.Errorf("Expected default port 8080, got %d", port)
	}
	if host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", host)
	}
	if configDir != "configs" {
		t.Errorf("Expected default config dir configs, got %s", configDir)
	}
}

func TestCommandEnvironment(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("CONFIG_DIR", "/tmp/boards")

	var port int
	var configDir string
	runWithAction(t, []string{"server"}, func(ctx context.Context, cmd *cli.Command) error {
		port = int(cmd.Int("port"))
		configDir = cmd.String("config-dir")
		return nil
	})

	if port != 9191 {
		t.Errorf("Expected port from PORT, got %d", port)
	}
	if configDir != "/tmp/boards" {
		t.Errorf("Expected config dir from CONFIG_DIR, got %s", configDir)
	}
}

func TestCommandAliases(t *testing.T) {
	for _, alias := range []string{"http", "stdio-mcp", "mcp-stdio"} {
		t.Run(alias, func(t *testing.T) {
			called := ""
			runWithAction(t, []string{alias}, func(ctx context.Context, cmd *cli.Command) error {
				called = cmd.Name
				return nil
			})
			if called == "" || called == "slide2048" {
				t.Errorf("Expected %s to resolve to a subcommand, got %q", alias, called)
			}
		})
	}
}

func TestPlayFlags(t *testing.T) {
	var size, seed int
	var name string
	runWithAction(t, []string{"--port", "1", "play", "--config", "small", "--size", "5", "--seed", "42"},
		func(ctx context.Context, cmd *cli.Command) error {
			name = cmd.String("config")
			size = int(cmd.Int("size"))
			seed = int(cmd.Int("seed"))
			return nil
		})

	if name != "small" || size != 5 || seed != 42 {
		t.Errorf("Unexpected play flags: config=%s size=%d seed=%d", name, size, seed)
	}
}

const tinyConfig = `{
  "name": "Tiny",
  "description": "3x3 test board",
  "board_size": 3,
  "merge_delay_ms": 50,
  "messages": {"welcome": "hi", "moved": "Moved %s", "no_change": "stuck"}
}`

func TestWatchFlags(t *testing.T) {
	var sessionID string
	runWithAction(t, []string{"watch", "--session", "abc12345"}, func(ctx context.Context, cmd *cli.Command) error {
		sessionID = cmd.String("session")
		return nil
	})

	if sessionID != "abc12345" {
		t.Errorf("Expected session abc12345, got %s", sessionID)
	}
}

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadPlayConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tiny", tinyConfig)

	tests := []struct {
		name         string
		dir          string
		config       string
		size         int
		seed         int64
		expectedName string
		expectedSize int
		wantErr      bool
	}{
		{"default from empty dir", t.TempDir(), "", 0, 0, "Classic", 4, false},
		{"missing dir falls back", "/non/existent/path", "", 0, 0, "Classic", 4, false},
		{"named config", dir, "tiny", 0, 0, "Tiny", 3, false},
		{"size override", dir, "tiny", 6, 0, "Tiny", 6, false},
		{"seed override", dir, "tiny.json", 0, 9, "Tiny", 3, false},
		{"unknown config", dir, "huge", 0, 0, "", 0, true},
		{"named config without dir", "/non/existent/path", "tiny", 0, 0, "", 0, true},
		{"size too small", dir, "", 2, 0, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadPlayConfig(tt.dir, tt.config, tt.size, tt.seed)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got config %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.Name != tt.expectedName || cfg.BoardSize != tt.expectedSize {
				t.Errorf("Expected %s %dx%d, got %s %dx%d", tt.expectedName, tt.expectedSize, tt.expectedSize, cfg.Name, cfg.BoardSize, cfg.BoardSize)
			}
			if tt.seed != 0 && cfg.Seed != tt.seed {
				t.Errorf("Expected seed %d, got %d", tt.seed, cfg.Seed)
			}
		})
	}
}

func TestLoadPlayConfigDoesNotMutateCache(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tiny", tinyConfig)

	if _, err := loadPlayConfig(dir, "tiny", 8, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cfg, err := loadPlayConfig(dir, "tiny", 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.BoardSize != 3 {
		t.Errorf("Expected size 3, got %d", cfg.BoardSize)
	}
}

func newTestRouter(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	gameService, err := initializeServices(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	// the MCP client needs the server's own URL
	var router http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	router = newRouter(api.NewServer(gameService, nil), mcp.NewClient(srv.URL))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterServesAPI(t *testing.T) {
	srv := newTestRouter(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if !externalAPIAvailable(srv.URL) {
		t.Error("Expected the test server to be detected as an external API")
	}
}

func TestExternalAPIUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if externalAPIAvailable(srv.URL) {
		t.Error("A server without /api/health should not be used")
	}
}

func TestMCPEndpoint(t *testing.T) {
	srv := newTestRouter(t)

	resp, err := http.Get(srv.URL + "/mcp")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405 for GET /mcp, got %d", resp.StatusCode)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	resp, err = http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if !strings.Contains(buf.String(), "Slide 2048") {
		t.Errorf("Expected server info in initialize response, got %s", buf.String())
	}
}

func TestStartInternalServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, err := initializeServices(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	baseURL, err := startInternalServer(ctx, gameService)
	if err != nil {
		t.Fatalf("Failed to start internal server: %v", err)
	}
	if !strings.HasPrefix(baseURL, "http://127.0.0.1:") {
		t.Errorf("Expected loopback URL, got %s", baseURL)
	}
	if !externalAPIAvailable(baseURL) {
		t.Error("Expected internal server to answer health checks")
	}
}
