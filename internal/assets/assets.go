// Package assets handles model lookup, loading and caching.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Faultbox/glbview/internal/engine/loader"
	"github.com/Faultbox/glbview/internal/engine/scene"
)

// Manager finds model files under a set of search paths and caches
// decoded scene objects across loads.
type Manager struct {
	searchPaths []string
	cache       *Cache
	loadFile    func(string) (*scene.Object, error)
	mu          sync.RWMutex
}

// NewManager creates a manager over the given search paths.
func NewManager(searchPaths ...string) *Manager {
	return &Manager{
		searchPaths: searchPaths,
		cache:       NewCache(),
		loadFile:    loader.Load,
	}
}

// AddSearchPath adds a directory to look models up in.
// Paths are searched in reverse order (last added = highest priority).
func (m *Manager) AddSearchPath(path string) {
	m.mu.Lock()
	m.searchPaths = append(m.searchPaths, path)
	m.mu.Unlock()
}

// Resolve locates a model file by name. A name that already points at
// an existing file passes through unchanged.
func (m *Manager) Resolve(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.searchPaths) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.searchPaths[i], name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("model not found: %s", name)
}

// Load reads a model, consulting the cache first. Callers get their
// own copy of the scene graph, so viewer-side material changes never
// reach the cached original.
func (m *Manager) Load(path string) (*scene.Object, error) {
	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}

	if obj, ok := m.cache.Get(resolved); ok {
		return obj.Clone(), nil
	}

	obj, err := m.loadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	m.cache.Set(resolved, obj)

	return obj.Clone(), nil
}

// Result is delivered when an async load finishes.
type Result struct {
	Path   string
	Object *scene.Object
	Err    error
}

// LoadAsync loads a model off the calling goroutine. The result
// arrives on the returned channel, which is buffered so the worker
// never blocks on a caller that went away.
func (m *Manager) LoadAsync(path string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		obj, err := m.Load(path)
		ch <- Result{Path: path, Object: obj, Err: err}
	}()
	return ch
}

// List returns the model files found under the search paths, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	paths := append([]string(nil), m.searchPaths...)
	m.mu.RUnlock()

	seen := make(map[string]bool)
	var models []string
	for _, dir := range paths {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if loader.IsModelFile(path) && !seen[path] {
				seen[path] = true
				models = append(models, path)
			}
			return nil
		})
	}
	sort.Strings(models)
	return models
}

// Evict drops a model from the cache so the next load re-reads it.
func (m *Manager) Evict(path string) {
	if resolved, err := m.Resolve(path); err == nil {
		path = resolved
	}
	m.cache.Evict(path)
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Cache is an in-memory cache of decoded models keyed by resolved path.
type Cache struct {
	objects map[string]*scene.Object
	mu      sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		objects: make(map[string]*scene.Object),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*scene.Object, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, ok := c.objects[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return obj, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, obj *scene.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[key] = obj
}

// Evict removes a single entry.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
}

// Clear drops all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = make(map[string]*scene.Object)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
