// Package config provides board configuration management.
//
// The config package handles:
//   - Loading board configurations from JSON files
//   - Caching loaded configurations
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Configurations are stored as JSON files in the configs directory. Each one
// defines a board size, the merge animation delay, an optional fixed random
// seed and the messages shown to the player.
//
//	{
//	  "name": "Classic",
//	  "description": "The classic 4x4 board",
//	  "board_size": 4,
//	  "merge_delay_ms": 100,
//	  "messages": {"welcome": "...", "moved": "Moved %s", "no_change": "..."}
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	boardConfig, err := manager.LoadConfig("large")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When no classic.json exists the first valid file becomes the default, and an
// empty directory falls back to the built-in classic board.
package config
