package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/slide2048/game/engine"
)

// Action is what a key press asks the game to do
type Action int

const (
	ActionNone Action = iota
	ActionMove
	ActionReset
	ActionQuit
)

// Command is a translated key press. Direction is set only for ActionMove.
type Command struct {
	Action    Action
	Direction engine.Direction
}

var runeCommands = map[rune]Command{
	// vi keys
	'h': {Action: ActionMove, Direction: engine.Left},
	'j': {Action: ActionMove, Direction: engine.Down},
	'k': {Action: ActionMove, Direction: engine.Up},
	'l': {Action: ActionMove, Direction: engine.Right},
	// wasd
	'w': {Action: ActionMove, Direction: engine.Up},
	'a': {Action: ActionMove, Direction: engine.Left},
	's': {Action: ActionMove, Direction: engine.Down},
	'd': {Action: ActionMove, Direction: engine.Right},

	'r': {Action: ActionReset},
	'q': {Action: ActionQuit},
}

// TranslateKey maps a key to a Command. Unknown keys give ActionNone.
func TranslateKey(key tcell.Key, r rune, mod tcell.ModMask) Command {
	switch key {
	case tcell.KeyUp:
		return Command{Action: ActionMove, Direction: engine.Up}
	case tcell.KeyDown:
		return Command{Action: ActionMove, Direction: engine.Down}
	case tcell.KeyLeft:
		return Command{Action: ActionMove, Direction: engine.Left}
	case tcell.KeyRight:
		return Command{Action: ActionMove, Direction: engine.Right}
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Command{Action: ActionQuit}
	case tcell.KeyRune:
		if mod&(tcell.ModCtrl|tcell.ModAlt) != 0 {
			return Command{}
		}
		if cmd, ok := runeCommands[unicode.ToLower(r)]; ok {
			return cmd
		}
	}
	return Command{}
}

func commandFor(ev *tcell.EventKey) Command {
	return TranslateKey(ev.Key(), ev.Rune(), ev.Modifiers())
}
