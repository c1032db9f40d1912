package hotreload

import "context"

// Descriptor identifies a live control and the source file that defines it.
type Descriptor struct {
	// TypeName is the control's type identity (e.g. "views.SettingsScreen").
	TypeName string
	// SourceURI locates the control's definition file relative to the
	// watch root, in ui://<host>/<path> form.
	SourceURI string
}

// Reloader re-applies a control's definition file to the live object graph.
type Reloader interface {
	// Reload re-reads the definition and rebuilds the control in place.
	// It may be called any number of times over a control's lifetime.
	Reload(ctx context.Context) error
}

// ReloaderFunc adapts a function to the Reloader interface.
type ReloaderFunc func(ctx context.Context) error

// Reload calls f.
func (f ReloaderFunc) Reload(ctx context.Context) error {
	return f(ctx)
}

// Reloadable is a live control that knows its own source identity.
type Reloadable interface {
	Reloader
	// Descriptor returns the control's identity.
	Descriptor() Descriptor
}

// LiveControl pairs a control descriptor with its runtime reload handle.
type LiveControl struct {
	Descriptor Descriptor
	Runtime    Reloader
}

// Source enumerates the live controls of a running application, typically
// by walking a module's control table or an application's open windows.
type Source interface {
	Controls() ([]LiveControl, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() ([]LiveControl, error)

// Controls calls f.
func (f SourceFunc) Controls() ([]LiveControl, error) {
	return f()
}

// StaticSource returns a Source yielding a fixed control list.
func StaticSource(controls ...LiveControl) Source {
	return SourceFunc(func() ([]LiveControl, error) {
		return controls, nil
	})
}
