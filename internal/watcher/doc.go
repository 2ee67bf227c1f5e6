// Package watcher reports changes made to the open file by other programs.
//
// The package uses a hybrid strategy:
//   - Primary: fsnotify on the file's directory, filtered to the file
//   - Fallback: stat polling where fsnotify is unavailable (network mounts, containers)
//
// Events are debounced so that the write-temp-then-rename sequence most
// editors use to save arrives as a single modification.
//
// Usage:
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, "/path/to/notes.txt") }()
//
//	for event := range w.Events() {
//	    if event.Operation == watcher.OpModify {
//	        // reload
//	    }
//	}
package watcher
