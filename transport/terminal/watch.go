package terminal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/slide2048/game/engine"
	"github.com/wricardo/slide2048/transport/websocket"
)

// Watcher mirrors a server session read-only. It loads the current state over
// REST, then redraws on every update the server's hub pushes.
type Watcher struct {
	screen     tcell.Screen
	renderer   *Renderer
	baseURL    string
	sessionID  string
	httpClient *http.Client

	state  *engine.GameState
	status string
}

// NewWatcher creates a watcher for sessionID on the server at baseURL
func NewWatcher(screen tcell.Screen, baseURL, sessionID string) *Watcher {
	return &Watcher{
		screen:     screen,
		renderer:   NewRenderer(screen),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// State returns the last state received
func (w *Watcher) State() *engine.GameState {
	return w.state
}

// websocketURL maps the server's http(s) base URL to its ws(s) endpoint
func (w *Watcher) websocketURL() (string, error) {
	u, err := url.Parse(w.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {w.sessionID}}.Encode()
	return u.String(), nil
}

func (w *Watcher) fetchState(ctx context.Context) (*engine.GameState, error) {
	endpoint := fmt.Sprintf("%s/api/sessions/%s/state", w.baseURL, url.PathEscape(w.sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("session %s: %s", w.sessionID, apiErr.Error)
		}
		return nil, fmt.Errorf("session %s: API error: %d", w.sessionID, resp.StatusCode)
	}

	var state engine.GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to parse game state: %w", err)
	}
	return &state, nil
}

// Apply folds one hub message into the watcher's view
func (w *Watcher) Apply(msg *websocket.Message) {
	switch {
	case msg.Event == websocket.EventSessionGone:
		w.status = fmt.Sprintf("session %s was deleted", w.sessionID)
	case msg.GameState != nil:
		w.state = msg.GameState
		w.status = ""
	}
}

// Run connects and redraws until ctx is done or the viewer quits. A dropped
// connection is reported on screen and the last board stays visible.
func (w *Watcher) Run(ctx context.Context) error {
	state, err := w.fetchState(ctx)
	if err != nil {
		return err
	}
	w.state = state

	wsURL, err := w.websocketURL()
	if err != nil {
		return err
	}
	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	messages := make(chan *websocket.Message, 16)
	readErr := make(chan error, 1)
	go func() {
		for {
			var msg websocket.Message
			if err := conn.ReadJSON(&msg); err != nil {
				readErr <- err
				return
			}
			select {
			case messages <- &msg:
			case <-done:
				return
			}
		}
	}()

	events := pollEvents(w.screen, done)
	w.draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-messages:
			w.Apply(msg)
			w.draw()

		case err := <-readErr:
			w.status = fmt.Sprintf("connection closed: %v", err)
			w.draw()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if commandFor(ev).Action == ActionQuit {
					return nil
				}
			case *tcell.EventResize:
				w.screen.Sync()
				w.draw()
			}
		}
	}
}

func (w *Watcher) draw() {
	status := w.status
	if status == "" {
		status = "watching " + w.sessionID + " (read-only)"
	}
	w.renderer.Draw(w.state, status)
	w.screen.Show()
}

// Watch opens the terminal and mirrors sessionID until the viewer quits
func Watch(ctx context.Context, baseURL, sessionID string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise screen: %w", err)
	}
	defer screen.Fini()

	return NewWatcher(screen, baseURL, sessionID).Run(ctx)
}
