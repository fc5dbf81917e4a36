package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidateGameConfig validates a board configuration
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// The seed tiles sit at (0,1) and (0,2), so the board needs three rows
	if config.BoardSize < MinBoardSize || config.BoardSize > MaxBoardSize {
		return fmt.Errorf("config validation: board_size must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.BoardSize)
	}

	if config.MergeDelayMs < 0 || config.MergeDelayMs > MaxMergeDelayMs {
		return fmt.Errorf("config validation: merge_delay_ms must be between 0 and %d, got %d", MaxMergeDelayMs, config.MergeDelayMs)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Moved == "" {
		return fmt.Errorf("config validation: messages.moved is required")
	}
	if config.Messages.NoChange == "" {
		return fmt.Errorf("config validation: messages.no_change is required")
	}

	// Validate format strings
	if !validMovedFormat(config.Messages.Moved) {
		return fmt.Errorf("config validation: messages.moved must contain %%s exactly once and no other verbs, got %q", config.Messages.Moved)
	}

	return nil
}

// validMovedFormat reports whether format takes exactly the direction.
// Escaped percent signs are allowed.
func validMovedFormat(format string) bool {
	rest := strings.ReplaceAll(format, "%%", "")
	if strings.Count(rest, "%s") != 1 {
		return false
	}
	return !strings.Contains(strings.Replace(rest, "%s", "", 1), "%")
}

// MergeDelay returns the configured merge animation delay
func (c *GameConfig) MergeDelay() time.Duration {
	return time.Duration(c.MergeDelayMs) * time.Millisecond
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the classic 4x4 configuration
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:         "Classic",
		Description:  "The classic 4x4 board",
		BoardSize:    DefaultBoardSize,
		MergeDelayMs: DefaultMergeDelayMs,
	}
	config.Messages.Welcome = "Join the tiles to get to 2048!"
	config.Messages.Moved = "Moved %s"
	config.Messages.NoChange = "Nothing moved"
	config.Messages.MoveIgnored = "Still merging, move ignored"
	config.Messages.NoMovesLeft = "No moves left"
	return config
}
