package hotreload

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/go-drift/hotreload/pkg/errors"
	"github.com/go-drift/hotreload/pkg/uipath"
	"github.com/go-drift/hotreload/pkg/watch"
)

// Option customizes context construction.
type Option func(*Context)

// WithReporter routes the context's error reports to h instead of the
// process-wide handler.
func WithReporter(h errors.ErrorHandler) Option {
	return func(c *Context) {
		c.reporter = h
	}
}

// WithReloadTimeout bounds each reload call. Zero means no bound.
func WithReloadTimeout(d time.Duration) Option {
	return func(c *Context) {
		c.reloadTimeout = d
	}
}

// Context coordinates live reloads for one watch root. It owns the control
// registry and the file watcher, and translates watch traffic into
// asynchronous reload calls on live controls.
type Context struct {
	root     string
	registry *registry
	watcher  *watch.Watcher
	sub      *watch.Subscription

	reporter      errors.ErrorHandler // nil means the process-wide handler
	reloadTimeout time.Duration

	enabled atomic.Bool
	closed  atomic.Bool

	inflight singleflight.Group
}

// FromSource builds an enabled reload context for every control produced by
// src, watching definition files under root.
func FromSource(src Source, root string, opts ...Option) (*Context, error) {
	const op = "hotreload.FromSource"

	c := &Context{registry: newRegistry()}
	for _, opt := range opts {
		opt(c)
	}

	absRoot, err := uipath.Normalize(root)
	if err != nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Path: root, Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindNotFound, Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindNotFound, Path: absRoot, Err: fmt.Errorf("not a directory")}
	}
	c.root = absRoot

	controls, err := src.Controls()
	if err != nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Err: err}
	}
	if len(controls) == 0 {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Err: fmt.Errorf("source produced no controls")}
	}
	for _, ctrl := range controls {
		if ctrl.Runtime == nil {
			return nil, &errors.ReloadError{
				Op:   op,
				Kind: errors.KindInvalidArgument,
				Err:  fmt.Errorf("control %s has no runtime", ctrl.Descriptor.TypeName),
			}
		}
		path, err := uipath.FromURI(absRoot, ctrl.Descriptor.SourceURI)
		if err != nil {
			return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Err: err}
		}
		c.registry.insert(path, &managedControl{
			descriptor: ctrl.Descriptor,
			path:       path,
			runtime:    ctrl.Runtime,
		})
	}

	w, err := watch.New(absRoot, c.registry.paths())
	if err != nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Path: absRoot, Err: err}
	}
	c.watcher = w
	c.sub = w.Subscribe(watch.Handler{
		OnChanged: c.handleChanged,
		OnMoved:   c.handleMoved,
		OnError:   c.handleWatchError,
	})
	c.enabled.Store(true)
	return c, nil
}

// FromControl builds an enabled reload context for a single live control,
// deriving the watch root from the control's source URI and the definition
// file's concrete path.
func FromControl(ctrl Reloadable, path string, opts ...Option) (*Context, error) {
	const op = "hotreload.FromControl"

	if ctrl == nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Err: fmt.Errorf("nil control")}
	}
	abs, err := uipath.Normalize(path)
	if err != nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Path: path, Err: err}
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindNotFound, Path: abs, Err: err}
	}
	desc := ctrl.Descriptor()
	root, err := uipath.RootFromURI(desc.SourceURI, abs)
	if err != nil {
		return nil, &errors.ReloadError{Op: op, Kind: errors.KindInvalidArgument, Path: abs, Err: err}
	}
	return FromSource(StaticSource(LiveControl{Descriptor: desc, Runtime: ctrl}), root, opts...)
}

// Root returns the watch root this context observes.
func (c *Context) Root() string {
	return c.root
}

// Paths returns the definition files currently under watch, sorted.
func (c *Context) Paths() []string {
	return c.registry.paths()
}

// Enable turns reload-on-change back on.
func (c *Context) Enable() {
	c.enabled.Store(true)
}

// Disable pauses reload-on-change. Changes observed while disabled are
// dropped, not queued. Rename bookkeeping continues regardless.
func (c *Context) Disable() {
	c.enabled.Store(false)
}

// Enabled reports whether change events currently trigger reloads.
func (c *Context) Enabled() bool {
	return c.enabled.Load()
}

// Close permanently stops observation and releases the watcher. It is safe
// to call more than once. In-flight reloads are not awaited.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.enabled.Store(false)
	c.sub.Cancel()
	return c.watcher.Close()
}

// handleChanged reacts to a tracked definition file changing on disk.
func (c *Context) handleChanged(path string) {
	if !c.enabled.Load() {
		return
	}
	ctrl, ok := c.registry.lookup(path)
	if !ok {
		// Watch noise for a file nobody registered.
		return
	}
	c.dispatchReload(ctrl, path)
}

// dispatchReload runs the control's reload off the watch goroutine. A
// second change for the same file while its reload runs is dropped.
func (c *Context) dispatchReload(ctrl managedControl, path string) {
	c.inflight.DoChan(uipath.Key(path), func() (any, error) {
		c.reload(ctrl, path)
		return nil, nil
	})
}

// reload invokes the control's Reload, reporting failures and panics with
// the control's identity attached. It never propagates them.
func (c *Context) reload(ctrl managedControl, path string) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportControlErrorTo(c.reporter, &errors.ControlError{
				TypeName:   ctrl.descriptor.TypeName,
				SourceURI:  ctrl.descriptor.SourceURI,
				Path:       path,
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
			})
		}
	}()

	ctx := context.Background()
	if c.reloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reloadTimeout)
		defer cancel()
	}
	if err := ctrl.runtime.Reload(ctx); err != nil {
		errors.ReportControlErrorTo(c.reporter, &errors.ControlError{
			TypeName:  ctrl.descriptor.TypeName,
			SourceURI: ctrl.descriptor.SourceURI,
			Path:      path,
			Err:       err,
		})
	}
}

// handleMoved follows a rename. Bookkeeping happens whether or not the
// context is enabled, so re-enabling later finds current paths. No reload
// is triggered.
func (c *Context) handleMoved(oldPath, newPath string) {
	if !c.registry.rekey(oldPath, newPath) {
		// Rename of a file nobody registered.
		return
	}
	if err := c.watcher.Retrack(oldPath, newPath); err != nil {
		errors.ReportTo(c.reporter, &errors.ReloadError{
			Op:   "hotreload.handleMoved",
			Kind: errors.KindWatch,
			Path: newPath,
			Err:  err,
		})
	}
}

// handleWatchError surfaces a backend error. Watch errors are advisory;
// observation continues.
func (c *Context) handleWatchError(err error) {
	errors.ReportTo(c.reporter, &errors.ReloadError{
		Op:   "hotreload.watch",
		Kind: errors.KindWatch,
		Err:  err,
	})
}
