// Command validate provides a small CLI that validates board configuration JSON
// files in the ../configs directory (or the directory given as the first
// argument). It checks:
//   - JSON structure and required fields
//   - Board size and merge delay bounds
//   - Required message keys, and the %s verb in the "moved" message
//   - The file name matches the id the server would derive from the name
//   - The seeded board builds and has at least one possible move
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/slide2048/game/engine"
)

// Config mirrors the JSON schema for a board configuration. Messages is a map
// so missing keys can be reported by name.
type Config struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	BoardSize    int               `json:"board_size"`
	MergeDelayMs int               `json:"merge_delay_ms"`
	Seed         int64             `json:"seed"`
	Messages     map[string]string `json:"messages"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

var requiredMessages = []string{
	"welcome",
	"moved",
	"no_change",
	"move_ignored",
	"no_moves_left",
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}
	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fail("Failed to read file: %v", err)
		return result
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		fail("name is required")
	}
	if config.Description == "" {
		fail("description is required")
	}

	if config.BoardSize < engine.MinBoardSize || config.BoardSize > engine.MaxBoardSize {
		fail("board_size must be between %d and %d, got %d", engine.MinBoardSize, engine.MaxBoardSize, config.BoardSize)
	}
	if config.MergeDelayMs < 0 || config.MergeDelayMs > engine.MaxMergeDelayMs {
		fail("merge_delay_ms must be between 0 and %d, got %d", engine.MaxMergeDelayMs, config.MergeDelayMs)
	}

	for _, msg := range requiredMessages {
		if config.Messages[msg] == "" {
			fail("Missing required message: %s", msg)
		}
	}
	if moved := config.Messages["moved"]; moved != "" && strings.Count(moved, "%s") != 1 {
		fail("messages.moved must contain %%s exactly once, got %q", moved)
	}

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if config.Name != "" && stem != configID(config.Name) {
		// informational only; the server loads files by their own name
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Note: file %s differs from derived id %s", stem, configID(config.Name)))
	}

	if result.Valid {
		playable := validatePlayable(toGameConfig(config))
		if !playable.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, playable.Errors...)
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", config.BoardSize, config.BoardSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Merge delay: %dms", config.MergeDelayMs))
		if config.Seed != 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Seed: %d", config.Seed))
		}
	}

	return result
}

func toGameConfig(c Config) *engine.GameConfig {
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

// validatePlayable builds the seeded board the server would start with and
// checks it passes the board invariants and can be moved
func validatePlayable(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	e, err := engine.NewEngine(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Engine rejected config: %v", err))
		return result
	}

	if err := e.Board().Validate(); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Seeded board is invalid: %v", err))
		return result
	}

	moves := e.GetPossibleMoves()
	if len(moves) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Seeded board has no possible moves")
		return result
	}

	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = string(m)
	}
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Opening moves: %s", strings.Join(names, ", ")))
	return result
}

// configID lowercases name and keeps letters, digits, '-' and '_', with
// spaces mapped to '_'
func configID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// main scans the config directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
