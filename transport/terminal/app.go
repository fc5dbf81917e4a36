package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/slide2048/game/engine"
)

// frameInterval is the redraw and scheduler tick, ~60 FPS
const frameInterval = 16 * time.Millisecond

// App runs one local game on a terminal screen. Moves are applied from the
// event loop; merges complete on a later tick once the config's merge delay
// has elapsed, so renderers see the merge-pending state in between.
type App struct {
	screen   tcell.Screen
	engine   *engine.GameEngine
	queue    *engine.QueueScheduler
	renderer *Renderer
	now      func() time.Time
	status   string
}

// NewApp builds a game for an initialised screen. opts are passed to every
// board the game creates, after the tick-driven scheduler.
func NewApp(screen tcell.Screen, config *engine.GameConfig, opts ...engine.BoardOption) (*App, error) {
	queue := engine.NewQueueScheduler(time.Now)

	boardOpts := append([]engine.BoardOption{engine.WithScheduler(queue)}, opts...)
	e, err := engine.NewEngine(config, boardOpts...)
	if err != nil {
		return nil, err
	}

	return &App{
		screen:   screen,
		engine:   e,
		queue:    queue,
		renderer: NewRenderer(screen),
		now:      time.Now,
	}, nil
}

// Engine exposes the game being played
func (a *App) Engine() *engine.GameEngine {
	return a.engine
}

// Run polls input and redraws until the player quits or ctx is done
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	events := pollEvents(a.screen, done)
	a.draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.Handle(commandFor(ev)) {
					return nil
				}
				a.draw()
			case *tcell.EventResize:
				a.screen.Sync()
				a.draw()
			}

		case <-ticker.C:
			if a.Tick(a.now()) {
				a.draw()
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalised or done closes
func pollEvents(screen tcell.Screen, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// screen finalised
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

// Handle applies one command. It returns false when the player quits.
func (a *App) Handle(cmd Command) bool {
	switch cmd.Action {
	case ActionQuit:
		return false

	case ActionReset:
		if _, err := a.engine.Reset(); err != nil {
			a.status = fmt.Sprintf("reset failed: %v", err)
		} else {
			a.status = ""
		}

	case ActionMove:
		result, err := a.engine.Move(cmd.Direction)
		switch {
		case err != nil:
			a.status = err.Error()
		case result.Ignored:
			// input arriving mid-merge is dropped
		default:
			a.status = ""
		}
	}
	return true
}

// Tick runs merges that are due and reports whether any ran
func (a *App) Tick(now time.Time) bool {
	return a.queue.Advance(now) > 0
}

func (a *App) draw() {
	a.renderer.Draw(a.engine.GetState(), a.status)
	a.screen.Show()
}

// Play opens the terminal, runs a game and restores the terminal on exit
func Play(ctx context.Context, config *engine.GameConfig, opts ...engine.BoardOption) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise screen: %w", err)
	}
	defer screen.Fini()

	app, err := NewApp(screen, config, opts...)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
