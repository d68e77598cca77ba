// Package registry keeps the user-local category taxonomy in a small
// JSON file next to the database. Reads are served from memory; every
// mutation is persisted atomically before it becomes visible.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kakeibo/internal/core"
)

var (
	ErrEmptyName = errors.New("category name is empty")
	ErrDuplicate = errors.New("category already exists")
)

// defaults seeds a fresh registry so charts have labels from day one.
var defaults = []core.Category{
	{ID: "food", Name: "食費", Icon: "🍔"},
	{ID: "transport", Name: "交通費", Icon: "🚃"},
}

// Registry is a concurrency-safe category store backed by a JSON file.
type Registry struct {
	mu         sync.RWMutex
	path       string
	categories []core.Category
}

// Open loads the registry at path, seeding it with the default
// categories when the file does not exist yet.
func Open(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.categories = append([]core.Category(nil), defaults...)
		return r.persist()
	}
	if err != nil {
		return fmt.Errorf("failed to read categories file: %w", err)
	}
	if len(data) == 0 {
		r.categories = append([]core.Category(nil), defaults...)
		return r.persist()
	}
	if err := json.Unmarshal(data, &r.categories); err != nil {
		return fmt.Errorf("failed to parse categories file: %w", err)
	}
	return nil
}

// persist writes the full list to a temp file and renames it into
// place so a crash never leaves a half-written registry.
func (r *Registry) persist() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create categories directory: %w", err)
	}
	data, err := json.MarshalIndent(r.categories, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write categories file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace categories file: %w", err)
	}
	return nil
}

// SlugID derives a stable category id from a display name: lowercase,
// whitespace runs collapsed to single dashes.
func SlugID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "-")
}

// List returns a copy of all categories in registration order.
func (r *Registry) List() []core.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// Append registers a new custom category. The id is derived from the
// name; a blank name or an id collision is rejected.
func (r *Registry) Append(name, icon string) (core.Category, error) {
	id := SlugID(name)
	if id == "" {
		return core.Category{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cat := range r.categories {
		if cat.ID == id {
			return core.Category{}, ErrDuplicate
		}
	}
	cat := core.Category{ID: id, Name: strings.TrimSpace(name), Icon: icon, Custom: true}
	r.categories = append(r.categories, cat)
	if err := r.persist(); err != nil {
		r.categories = r.categories[:len(r.categories)-1]
		return core.Category{}, err
	}
	return cat, nil
}

// Resolve looks up a category by id.
func (r *Registry) Resolve(id string) (core.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cat := range r.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return core.Category{}, false
}
