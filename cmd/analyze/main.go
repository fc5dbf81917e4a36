// Command analyze prints quick, human-readable heuristics about configuration
// files in the project's configs directory. It summarizes board dimensions,
// merge timing and seeding, the highest tile the board can hold, and shows
// the opening board the server would start with.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/slide2048/game/engine"
)

const targetTile = 2048

// AnalysisConfig is a light struct for reading config files used by analysis.
type AnalysisConfig struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	BoardSize    int               `json:"board_size"`
	MergeDelayMs int               `json:"merge_delay_ms"`
	Seed         int64             `json:"seed"`
	Messages     map[string]string `json:"messages"`
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, configFile := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(configFile))
		analyzeConfig(os.Stdout, configFile)
	}
}

func analyzeConfig(w io.Writer, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error reading file: %v\n", err)
		return
	}

	var config AnalysisConfig
	if err := json.Unmarshal(data, &config); err != nil {
		fmt.Fprintf(w, "Error parsing JSON: %v\n", err)
		return
	}

	cells := config.BoardSize * config.BoardSize
	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Board: %d x %d (%d cells)\n", config.BoardSize, config.BoardSize, cells)
	fmt.Fprintf(w, "Merge delay: %dms\n", config.MergeDelayMs)
	if config.Seed != 0 {
		fmt.Fprintf(w, "Seed: %d (spawns repeat every game)\n", config.Seed)
	} else {
		fmt.Fprintf(w, "Seed: clock\n")
	}

	exp := maxTileExponent(config.BoardSize)
	if exp < 31 {
		fmt.Fprintf(w, "Highest possible tile: %d\n", 1<<exp)
	} else {
		fmt.Fprintf(w, "Highest possible tile: 2^%d\n", exp)
	}
	if exp < 31 && 1<<exp < targetTile {
		fmt.Fprintf(w, "⚠️  WARNING: %d is out of reach on a %dx%d board\n", targetTile, config.BoardSize, config.BoardSize)
	} else {
		fmt.Fprintf(w, "✅ %d is reachable\n", targetTile)
	}

	e, err := engine.NewEngine(toGameConfig(config))
	if err != nil {
		fmt.Fprintf(w, "⚠️  CRITICAL: engine rejects this config: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Opening board:\n%s", formatGrid(e.GetState().Grid))

	moves := e.GetPossibleMoves()
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = string(m)
	}
	fmt.Fprintf(w, "Opening moves: %s\n", strings.Join(names, ", "))

	// with a fixed seed the first spawn is the same every game
	if config.Seed != 0 && len(moves) > 0 {
		result, err := e.Move(moves[0])
		if err == nil && result.Spawned != nil {
			fmt.Fprintf(w, "First spawn after %s: %s\n", moves[0], result.Spawned.Position)
		}
	}
}

// maxTileExponent is the log2 of the largest tile a board can hold when every
// spawn is a 2: each cell holds one step of the chain 2^(n+1), 2^n, ..., 4, 2, 2
func maxTileExponent(size int) int {
	return size*size + 1
}

func toGameConfig(c AnalysisConfig) *engine.GameConfig {
	gc := &engine.GameConfig{
		Name:         c.Name,
		Description:  c.Description,
		BoardSize:    c.BoardSize,
		MergeDelayMs: c.MergeDelayMs,
		Seed:         c.Seed,
	}
	gc.Messages.Welcome = c.Messages["welcome"]
	gc.Messages.Moved = c.Messages["moved"]
	gc.Messages.NoChange = c.Messages["no_change"]
	gc.Messages.MoveIgnored = c.Messages["move_ignored"]
	gc.Messages.NoMovesLeft = c.Messages["no_moves_left"]
	return gc
}

func formatGrid(grid [][]int) string {
	var b strings.Builder
	for _, row := range grid {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == 0 {
				cells[i] = "."
			} else {
				cells[i] = fmt.Sprint(v)
			}
		}
		b.WriteString("  " + strings.Join(cells, " ") + "\n")
	}
	return b.String()
}
