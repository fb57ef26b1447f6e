package wizard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/scheme"
)

// Container is the key/value store element hooks read and write. Keys are
// dotted paths ("address.street") into nested maps.
type Container interface {
	Save(ctx context.Context) error
	Load(ctx context.Context) error
	UnsetAll()
	Exists(key string) bool
	Set(key string, value any) error
	Get(key string, def any) any
}

// Backend persists the committed values of each scheme.
type Backend interface {
	Commit(ctx context.Context, id scheme.ID, values map[string]any) error
	Fetch(ctx context.Context, id scheme.ID) (map[string]any, error)
	Reset(ctx context.Context, id scheme.ID) error
}

// MemoryContainer keeps a working set of values in memory. Save commits the
// working set to its backend and Load replaces it with the committed values.
// A container belongs to one writer at a time.
type MemoryContainer struct {
	backend Backend
	id      scheme.ID
	values  map[string]any
}

var _ Container = (*MemoryContainer)(nil)

// NewContainer returns an empty working set bound to id on backend.
func NewContainer(backend Backend, id scheme.ID) *MemoryContainer {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &MemoryContainer{backend: backend, id: id, values: make(map[string]any)}
}

// NewMemoryContainer returns a container over a private MemoryBackend.
func NewMemoryContainer(id scheme.ID) *MemoryContainer {
	return NewContainer(NewMemoryBackend(), id)
}

// ID returns the scheme the container is bound to.
func (m *MemoryContainer) ID() scheme.ID { return m.id }

// Backend returns the backend the container commits to.
func (m *MemoryContainer) Backend() Backend { return m.backend }

// Save commits the working set.
func (m *MemoryContainer) Save(ctx context.Context) error {
	return m.backend.Commit(ctx, m.id, deepCopyMap(m.values))
}

// Load replaces the working set with the committed values.
func (m *MemoryContainer) Load(ctx context.Context) error {
	values, err := m.backend.Fetch(ctx, m.id)
	if err != nil {
		return err
	}
	m.values = deepCopyMap(values)
	return nil
}

// Reset clears the committed values and the working set.
func (m *MemoryContainer) Reset(ctx context.Context) error {
	if err := m.backend.Reset(ctx, m.id); err != nil {
		return err
	}
	m.UnsetAll()
	return nil
}

// UnsetAll clears the working set.
func (m *MemoryContainer) UnsetAll() {
	m.values = make(map[string]any)
}

// Exists reports whether key resolves to a value.
func (m *MemoryContainer) Exists(key string) bool {
	_, ok := PathValue(m.values, key)
	return ok
}

// Set writes value at key, creating intermediate maps.
func (m *MemoryContainer) Set(key string, value any) error {
	return SetPathValue(m.values, key, value)
}

// Get returns the value at key or def when absent.
func (m *MemoryContainer) Get(key string, def any) any {
	if value, ok := PathValue(m.values, key); ok {
		return value
	}
	return def
}

// Values returns a deep copy of the working set.
func (m *MemoryContainer) Values() map[string]any {
	return deepCopyMap(m.values)
}

// MemoryBackend keeps committed values per scheme in memory. It is safe for
// concurrent use.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[scheme.ID]map[string]any
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[scheme.ID]map[string]any)}
}

// Container returns a fresh working set for id.
func (b *MemoryBackend) Container(id scheme.ID) *MemoryContainer {
	return NewContainer(b, id)
}

func (b *MemoryBackend) Commit(ctx context.Context, id scheme.ID, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[id] = deepCopyMap(values)
	return nil
}

func (b *MemoryBackend) Fetch(ctx context.Context, id scheme.ID) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return deepCopyMap(b.data[id]), nil
}

func (b *MemoryBackend) Reset(ctx context.Context, id scheme.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, id)
	return nil
}

// PathValue resolves a dotted path into root.
func PathValue(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	current := any(root)
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// SetPathValue writes value at a dotted path, creating intermediate maps and
// replacing non-map values found on the way.
func SetPathValue(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("%w: root map is nil", ErrInvalidPath)
	}
	if err := ValidPath(path); err != nil {
		return err
	}
	segments := strings.Split(path, ".")

	node := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok || child == nil {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
	return nil
}

// ValidPath reports ErrInvalidPath when path has an empty segment, which
// includes "" and keys such as "a..b" or "a.".
func ValidPath(path string) error {
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
	}
	return nil
}

// Flatten lists every leaf of values under its dotted path. Empty nested maps
// are leaves.
func Flatten(values map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", values)
	return out
}

func flattenInto(out map[string]any, prefix string, values map[string]any) {
	for key, value := range values {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			flattenInto(out, path, nested)
			continue
		}
		out[path] = value
	}
}

// Expand rebuilds nested maps from dotted paths. Paths are applied in sorted
// order.
func Expand(flat map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	for _, key := range keys {
		if err := SetPathValue(out, key, flat[key]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func deepCopyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCopyMap(typed)
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
