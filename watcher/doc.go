// Package watcher distributes file-backed configuration through live views.
//
// A Watcher owns the mutable configuration value; everyone else holds
// read-only views from the shared package. When the config file changes on
// disk the watcher reloads it and publishes the new value, and every view
// issued earlier observes the update on its next load:
//
//	w, err := watcher.New("/etc/app/config.yaml")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	view := w.Config()
//	view.Load().Port // follows the file
//
// Files are read with viper, so YAML, TOML and JSON all work; absent keys
// fall back to Default values. Change detection uses fsnotify on the file's
// directory with a short debounce, since editors typically replace the file
// and emit several events per save.
//
// The initial load is strict: New fails if the file is missing or invalid.
// Reloads are forgiving: a broken file is logged and skipped, and views
// keep the last good value.
package watcher
