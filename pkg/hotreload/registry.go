package hotreload

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-drift/hotreload/pkg/uipath"
)

// managedControl is a registry entry: one live control keyed by the current
// absolute path of its definition file.
type managedControl struct {
	descriptor Descriptor
	path       string
	runtime    Reloader
}

// registry maps definition file paths to live controls. Keys are uipath.Key
// forms of absolute paths, so every spelling of a path lands on one entry.
type registry struct {
	mu       sync.RWMutex
	controls map[string]*managedControl
}

func newRegistry() *registry {
	return &registry{controls: make(map[string]*managedControl)}
}

// insert adds or replaces the entry for path. When two controls resolve to
// the same file, the last insert wins.
func (r *registry) insert(path string, ctrl *managedControl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls[uipath.Key(path)] = ctrl
}

// lookup returns a copy of the entry whose definition file is path.
func (r *registry) lookup(path string) (managedControl, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctrl, ok := r.controls[uipath.Key(path)]
	if !ok {
		return managedControl{}, false
	}
	return *ctrl, true
}

// rekey moves the entry at oldPath to newPath and reports whether an entry
// moved. A missing old key is a no-op.
func (r *registry) rekey(oldPath, newPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	oldKey := uipath.Key(oldPath)
	ctrl, ok := r.controls[oldKey]
	if !ok {
		return false
	}
	delete(r.controls, oldKey)
	ctrl.path = filepath.Clean(newPath)
	r.controls[uipath.Key(newPath)] = ctrl
	return true
}

// paths returns the registered definition file paths, sorted.
func (r *registry) paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.controls))
	for _, ctrl := range r.controls {
		out = append(out, ctrl.path)
	}
	sort.Strings(out)
	return out
}

// size returns the number of registered controls.
func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.controls)
}
