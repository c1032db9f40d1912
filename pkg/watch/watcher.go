// Package watch delivers change and rename events for a tracked set of UI
// definition files under a watch root.
//
// A Watcher reduces raw OS notifications to the three events the reload
// runtime cares about: a tracked file changed, a tracked file moved, or the
// backend reported an error. Raw notifications are drained on a dedicated
// goroutine into an unbounded queue so that a slow subscriber can never back
// up OS delivery, and subscriber callbacks run serialized on a single
// dispatch goroutine.
package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/hotreload/pkg/errors"
	"github.com/go-drift/hotreload/pkg/uipath"
)

// renamePairWindow bounds how long a rename waits for its create half.
// Backends report a move as a rename on the old name followed by a create
// on the new one; a create arriving past the window is unrelated.
const renamePairWindow = 500 * time.Millisecond

// Handler receives watch events. Callbacks run one at a time on the
// watcher's dispatch goroutine, in arrival order.
type Handler struct {
	// OnChanged is called when a tracked file's contents change.
	OnChanged func(path string)
	// OnMoved is called when a tracked file is renamed. The new path is
	// not tracked automatically; call Retrack to follow it.
	OnMoved func(oldPath, newPath string)
	// OnError is called for backend errors. The watch keeps running.
	OnError func(err error)
}

// Subscription represents an active watch subscription.
type Subscription struct {
	watcher  *Watcher
	handler  *Handler
	canceled atomic.Bool
}

// Cancel stops event delivery to this subscription.
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.watcher.removeSubscription(s)
	}
}

// IsCanceled returns true if this subscription has been canceled.
func (s *Subscription) IsCanceled() bool {
	return s.canceled.Load()
}

// pendingRename is the first half of a not-yet-paired move.
type pendingRename struct {
	path string
	at   time.Time
}

// Watcher watches a root directory for changes to a tracked set of files.
type Watcher struct {
	root string
	fs   *fsnotify.Watcher

	mu            sync.Mutex
	tracked       map[string]string   // uipath.Key -> absolute path
	dirs          map[string]struct{} // directories registered with the backend
	subscriptions []*Subscription

	qmu   sync.Mutex
	qcond *sync.Cond
	queue *queue.Queue
	quit  bool

	pending []pendingRename // dispatch goroutine only

	closed       atomic.Bool
	pumpDone     chan struct{}
	dispatchDone chan struct{}
}

// New creates a watcher over root tracking the given definition file paths.
// The root and every tracked file's parent directory must exist. Backends
// watch directories, not subtrees, so the watcher registers the root plus
// each tracked file's parent.
func New(root string, paths []string) (*Watcher, error) {
	absRoot, err := uipath.Normalize(root)
	if err != nil {
		return nil, err
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating backend: %w", err)
	}
	w := &Watcher{
		root:         absRoot,
		fs:           fs,
		tracked:      make(map[string]string),
		dirs:         make(map[string]struct{}),
		queue:        queue.New(),
		pumpDone:     make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}
	w.qcond = sync.NewCond(&w.qmu)

	w.mu.Lock()
	err = w.addDir(absRoot)
	w.mu.Unlock()
	if err != nil {
		fs.Close()
		return nil, err
	}
	for _, p := range paths {
		if err := w.track(p); err != nil {
			fs.Close()
			return nil, err
		}
	}

	go w.pump()
	go w.dispatch()
	return w, nil
}

// Root returns the watch root.
func (w *Watcher) Root() string {
	return w.root
}

// Subscribe registers a handler for watch events.
func (w *Watcher) Subscribe(handler Handler) *Subscription {
	sub := &Subscription{
		watcher: w,
		handler: &handler,
	}
	w.mu.Lock()
	w.subscriptions = append(w.subscriptions, sub)
	w.mu.Unlock()
	return sub
}

// Retrack follows a rename: the old path leaves the filter set and the new
// path joins it. The new path stays tracked even when its directory cannot
// be registered; the returned error is advisory.
func (w *Watcher) Retrack(oldPath, newPath string) error {
	abs := filepath.Clean(newPath)
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.tracked, uipath.Key(oldPath))
	w.tracked[uipath.Key(abs)] = abs
	return w.addDir(filepath.Dir(abs))
}

// Tracked returns the tracked definition file paths, sorted.
func (w *Watcher) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.tracked))
	for _, p := range w.tracked {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Close stops the watch. It is safe to call more than once. No callbacks
// run after Close returns. Close must not be called from a subscriber
// callback.
func (w *Watcher) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := w.fs.Close()
	<-w.pumpDone
	w.qmu.Lock()
	w.quit = true
	w.qmu.Unlock()
	w.qcond.Broadcast()
	<-w.dispatchDone
	return err
}

// track registers a definition file with the filter set.
func (w *Watcher) track(path string) error {
	abs, err := uipath.Normalize(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.addDir(filepath.Dir(abs)); err != nil {
		return err
	}
	w.tracked[uipath.Key(abs)] = abs
	return nil
}

// addDir registers a directory with the backend once. Caller holds w.mu.
func (w *Watcher) addDir(dir string) error {
	key := uipath.Key(dir)
	if _, ok := w.dirs[key]; ok {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch: adding %s: %w", dir, err)
	}
	w.dirs[key] = struct{}{}
	return nil
}

func (w *Watcher) isTracked(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.tracked[uipath.Key(path)]
	return ok
}

func (w *Watcher) removeSubscription(sub *Subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range w.subscriptions {
		if s == sub {
			w.subscriptions = append(w.subscriptions[:i], w.subscriptions[i+1:]...)
			break
		}
	}
}

func (w *Watcher) snapshotSubs() []*Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()
	subs := make([]*Subscription, len(w.subscriptions))
	copy(subs, w.subscriptions)
	return subs
}

// pump drains backend channels into the queue so OS delivery never blocks
// on subscriber work.
func (w *Watcher) pump() {
	defer close(w.pumpDone)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.enqueue(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.enqueue(err)
		}
	}
}

func (w *Watcher) enqueue(item any) {
	w.qmu.Lock()
	w.queue.Add(item)
	w.qmu.Unlock()
	w.qcond.Signal()
}

// dispatch translates queued notifications and delivers them to subscribers.
// It stops without draining once Close is underway.
func (w *Watcher) dispatch() {
	defer close(w.dispatchDone)
	for {
		w.qmu.Lock()
		for w.queue.Length() == 0 && !w.quit {
			w.qcond.Wait()
		}
		if w.quit {
			w.qmu.Unlock()
			return
		}
		item := w.queue.Remove()
		w.qmu.Unlock()

		switch it := item.(type) {
		case fsnotify.Event:
			w.translate(it)
		case error:
			w.deliverError(it)
		}
	}
}

// translate turns one raw notification into at most one delivered event.
// Runs on the dispatch goroutine, which owns w.pending.
func (w *Watcher) translate(ev fsnotify.Event) {
	if ev.Has(fsnotify.Chmod) {
		return
	}
	path := filepath.Clean(ev.Name)
	switch {
	case ev.Has(fsnotify.Rename):
		if w.isTracked(path) {
			w.prunePending(time.Now())
			w.pending = append(w.pending, pendingRename{path: path, at: time.Now()})
		}
	case ev.Has(fsnotify.Create):
		if old, ok := w.takePending(path); ok {
			w.deliverMoved(old, path)
			return
		}
		// Editors that save by replacing the file surface as a create.
		if w.isTracked(path) {
			w.deliverChanged(path)
		}
	case ev.Has(fsnotify.Write):
		if w.isTracked(path) {
			w.deliverChanged(path)
		}
	case ev.Has(fsnotify.Remove):
		// A removed file is gone, not moved; its rename half will never pair.
		w.clearPending(path)
	}
}

// takePending pops the oldest pending rename the created path could
// plausibly complete: still inside the pairing window and sharing the old
// name's extension. Editor side-effect creates (swap, backup, temp files)
// match no pending entry and fall through to the tracked-file filter
// without consuming one.
func (w *Watcher) takePending(createdPath string) (string, bool) {
	w.prunePending(time.Now())
	ext := filepath.Ext(createdPath)
	for i, p := range w.pending {
		if !strings.EqualFold(filepath.Ext(p.path), ext) {
			continue
		}
		w.pending = append(w.pending[:i], w.pending[i+1:]...)
		return p.path, true
	}
	return "", false
}

// prunePending drops pending renames past the pairing window.
func (w *Watcher) prunePending(now time.Time) {
	kept := w.pending[:0]
	for _, p := range w.pending {
		if now.Sub(p.at) <= renamePairWindow {
			kept = append(kept, p)
		}
	}
	w.pending = kept
}

// clearPending forgets pending renames for a path that was removed.
func (w *Watcher) clearPending(path string) {
	key := uipath.Key(path)
	kept := w.pending[:0]
	for _, p := range w.pending {
		if uipath.Key(p.path) != key {
			kept = append(kept, p)
		}
	}
	w.pending = kept
}

func (w *Watcher) deliverChanged(path string) {
	for _, sub := range w.snapshotSubs() {
		if sub.IsCanceled() || sub.handler.OnChanged == nil {
			continue
		}
		w.invoke(func() { sub.handler.OnChanged(path) })
	}
}

func (w *Watcher) deliverMoved(oldPath, newPath string) {
	for _, sub := range w.snapshotSubs() {
		if sub.IsCanceled() || sub.handler.OnMoved == nil {
			continue
		}
		w.invoke(func() { sub.handler.OnMoved(oldPath, newPath) })
	}
}

func (w *Watcher) deliverError(err error) {
	for _, sub := range w.snapshotSubs() {
		if sub.IsCanceled() || sub.handler.OnError == nil {
			continue
		}
		w.invoke(func() { sub.handler.OnError(err) })
	}
}

// invoke guards a subscriber callback so a panic cannot kill dispatch.
func (w *Watcher) invoke(fn func()) {
	defer errors.Recover("watch.dispatch")
	fn()
}
