package usecase

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/decode"
	"go.ngs.io/geo-skeletons/internal/adapter/store"
	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

// ErrDatasetNotFound is returned for names not in the catalog.
var ErrDatasetNotFound = errors.New("dataset not found")

// Config controls how the catalog loads datasets.
type Config struct {
	DataDir string
	// Mode is the array mode of loaded containers.
	Mode array.Mode
	// DefaultCRS is applied to cartesian datasets that carry no projection.
	DefaultCRS string
	// Native reads NetCDF with the pure-Go reader.
	Native  bool
	Aliases *domain.AliasTable
	Logger  *slog.Logger
}

// entry is one loaded dataset. Containers are not safe for concurrent use,
// so every query holds mu.
type entry struct {
	mu     sync.Mutex
	source string
	s      *skeleton.Skeleton
}

// Catalog holds the datasets served by the API.
type Catalog struct {
	cfg     Config
	logger  *slog.Logger
	entries map[string]*entry
	mu      sync.RWMutex // Protect entries.
}

// NewCatalog creates an empty catalog.
func NewCatalog(cfg Config) *Catalog {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// LoadDir loads every supported file under the data directory and returns
// how many were loaded. Files that fail to load are logged and skipped.
func (c *Catalog) LoadDir() (int, error) {
	if c.cfg.DataDir == "" {
		return 0, errors.New("no data directory configured")
	}
	loaded := 0
	err := filepath.WalkDir(c.cfg.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !store.Supported(path) {
			return nil
		}
		name, err := c.LoadFile(path)
		if err != nil {
			c.logger.Warn("skipping dataset", "path", path, "error", err)
			return nil
		}
		c.logger.Info("loaded dataset", "name", name, "path", path)
		loaded++
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("failed to walk data directory: %w", err)
	}
	return loaded, nil
}

// LoadFile reads one file into the catalog under its base name without
// extension, replacing any dataset of the same name.
func (c *Catalog) LoadFile(path string) (string, error) {
	loader, err := store.ForPath(path, c.cfg.Native)
	if err != nil {
		return "", err
	}
	ds, err := loader.Load(path)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	class, opts, err := decode.InferClass(name, ds, decode.Options{Aliases: c.cfg.Aliases})
	if err != nil {
		return "", fmt.Errorf("failed to describe %s: %w", name, err)
	}
	opts.Skeleton = []skeleton.Option{
		skeleton.WithName(name),
		skeleton.WithMode(c.cfg.Mode),
		skeleton.WithLogger(c.logger),
	}
	s, err := decode.FromDataset(class, ds, opts)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if s.Cartesian() && !s.Projection().IsSet() && c.cfg.DefaultCRS != "" {
		if err := s.SetCRS(c.cfg.DefaultCRS); err != nil {
			return "", fmt.Errorf("failed to set default CRS of %s: %w", name, err)
		}
	}
	c.Add(name, path, s)
	return name, nil
}

// Add registers a container under name.
func (c *Catalog) Add(name, source string, s *skeleton.Skeleton) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{source: source, s: s}
}

// Names returns the dataset names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// with runs fn on the named dataset while holding its lock.
func (c *Catalog) with(name string, fn func(e *entry) error) error {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}
