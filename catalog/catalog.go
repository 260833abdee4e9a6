// Package catalog loads and serves the set of game manifests the hub may
// mount. The catalog file is YAML, validated entry by entry against a JSON
// schema, and can be hot-reloaded while the hub runs.
package catalog

import (
	"fmt"
	"hash/fnv"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Games []Manifest `yaml:"games"`
}

type Catalog struct {
	mu    sync.RWMutex
	path  string
	games map[string]Manifest
}

// Load reads and validates the catalog file. Entries that fail validation
// fail the whole load; a partially valid catalog is worse than no catalog.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %v", err)
	}

	var file catalogFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalog file: %v", err)
	}

	games := make(map[string]Manifest, len(file.Games))
	for _, manifest := range file.Games {
		if err = validateManifest(manifest); err != nil {
			return err
		}
		if _, exists := games[manifest.ID]; exists {
			return fmt.Errorf("duplicate game id %q in catalog", manifest.ID)
		}
		games[manifest.ID] = manifest
	}

	c.mu.Lock()
	c.games = games
	c.mu.Unlock()
	return nil
}

func (c *Catalog) Get(gameID string) (Manifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	manifest, ok := c.games[gameID]
	return manifest, ok
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.games)
}

// Available reports whether the game may be offered to the given player,
// applying the disabled flag and staged-rollout gating. Rollout bucketing is
// deterministic per (player, game) so a player does not flap in and out of
// an exposure cohort between visits.
func (c *Catalog) Available(gameID string, playerID string) bool {
	manifest, ok := c.Get(gameID)
	if !ok || manifest.Disabled {
		return false
	}

	// A manifest that does not opt into staged rollout is fully available;
	// "disabled" is the explicit off switch.
	if manifest.RolloutPercentage <= 0 || manifest.RolloutPercentage >= 100 {
		return true
	}

	return rolloutBucket(playerID, gameID) < manifest.RolloutPercentage
}

func rolloutBucket(playerID string, gameID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(gameID))
	return int(h.Sum32() % 100)
}
