// Package hotreload keeps live UI controls in sync with their definition
// files on disk.
//
// A reload Context watches one directory tree of UI definition files. When a
// tracked file changes, the context looks up the live control registered for
// that file and asks it to reload itself, asynchronously and without ever
// letting a failure escape. Designers edit definition files; running
// applications pick the edits up in place.
//
// # Building a Context
//
// Enumerate an application's live controls through a Source and hand the
// result to FromSource together with the directory the definition files
// live under:
//
//	ctx, err := hotreload.FromSource(app.ControlSource(), projectRoot)
//	if err != nil {
//	    // Construction is the one fatal path: a missing root or an
//	    // unusable control set fails here, distinguishable via
//	    // errors.KindOf.
//	    return err
//	}
//	defer ctx.Close()
//
// For a single control that knows its own source identity, FromControl
// derives the watch root from the control's URI and the file's concrete
// path:
//
//	ctx, err := hotreload.FromControl(screen, "/proj/views/settings.ui")
//
// # Event Flow
//
// Contexts start enabled. A change to a tracked file triggers one reload of
// the control registered for it; changes to files nobody registered are
// ignored. Disable pauses reloads without losing anything else: renames keep
// updating the registry while disabled, so a later Enable finds current
// paths. A file rename never triggers a reload by itself.
//
// Reloads run off the watch goroutine. While one reload for a file is in
// flight, further changes to the same file are dropped rather than queued.
//
// # Failure Isolation
//
// After construction nothing is fatal. Reload errors and panics are reported
// with the control's type and source identity, then swallowed; watch errors
// are logged and observation continues. Reports go to the process-wide
// handler in pkg/errors unless the context was built with WithReporter.
package hotreload
