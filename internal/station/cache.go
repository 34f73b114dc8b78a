package station

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Cache keeps the station list for the session.
// It loads on first use and only reloads on Refresh.
type Cache struct {
	repo RepositoryInterface
	log  *zap.Logger

	mu       sync.Mutex
	loaded   bool
	stations []Station
	lookup   map[int]string
}

func NewCache(repo RepositoryInterface, log *zap.Logger) *Cache {
	return &Cache{repo: repo, log: log}
}

// Stations returns all stations ordered by name
func (c *Cache) Stations(ctx context.Context) ([]Station, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out, nil
}

// Lookup returns station id -> display name, test stations included
func (c *Cache) Lookup(ctx context.Context) (map[int]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make(map[int]string, len(c.lookup))
	for k, v := range c.lookup {
		out[k] = v
	}
	return out, nil
}

// Selectable returns the stations a user may assign a patient to
func (c *Cache) Selectable(ctx context.Context) ([]Station, error) {
	all, err := c.Stations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Station, 0, len(all))
	for _, s := range all {
		if s.IsTest() {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Refresh drops the cached list and loads it again.
// On failure the previous list stays in place.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.load(ctx)
}

func (c *Cache) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	return c.load(ctx)
}

func (c *Cache) load(ctx context.Context) error {
	stations, err := c.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	lookup := make(map[int]string, len(stations))
	for _, s := range stations {
		lookup[s.Room] = s.Name
	}

	c.stations = stations
	c.lookup = lookup
	c.loaded = true

	c.log.Debug("station cache loaded", zap.Int("stations", len(stations)))
	return nil
}

// DisplayName is the label shown for a patient's station
func DisplayName(lookup map[int]string, id *int) string {
	if id == nil {
		return ""
	}
	if name, ok := lookup[*id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", *id)
}
