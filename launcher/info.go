package launcher

import (
	"flag"
	"fmt"
	"time"
)

// Info holds the per-session launch arguments of the hub adapter.
type Info struct {
	PlayerID     string
	PlayerName   string
	GameID       string
	Locale       string
	Difficulty   string
	Seed         int64
	CatalogPath  string
	ReadyTimeout time.Duration
	LogPath      string
}

func NewInfoFromFlags() *Info {
	playerID := flag.String(
		"player-id", "", "The pseudonymous ID of the player")
	playerName := flag.String(
		"player-name", "", "The display name of the player")
	gameID := flag.String(
		"game-id", "", "The catalog ID of the game to launch")
	locale := flag.String(
		"locale", "en", "The locale handed to the game")
	difficulty := flag.String(
		"difficulty", "", "Optional difficulty preset")
	seed := flag.Int64(
		"seed", 0, "Optional seed for deterministic level generation")
	catalogPath := flag.String(
		"catalog", "catalog.yaml", "Path to the game catalog file")
	readyTimeout := flag.Duration(
		"ready-timeout", 30*time.Second, "How long to wait for the guest to report READY")
	logPath := flag.String(
		"log-path",
		"",
		"Directory for the logs, otherwise will use working directory and add 'logs' to that path")

	flag.Parse()

	return &Info{
		PlayerID:     *playerID,
		PlayerName:   *playerName,
		GameID:       *gameID,
		Locale:       *locale,
		Difficulty:   *difficulty,
		Seed:         *seed,
		CatalogPath:  *catalogPath,
		ReadyTimeout: *readyTimeout,
		LogPath:      *logPath,
	}
}

func (c *Info) Validate() error {
	if c.PlayerID == "" {
		return fmt.Errorf("--player-id is required and cannot be empty")
	}

	if c.GameID == "" {
		return fmt.Errorf("--game-id is required and cannot be empty")
	}

	if c.CatalogPath == "" {
		return fmt.Errorf("--catalog is required and cannot be empty")
	}

	return nil
}
