package yamlfile

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/prowheel/wheellab/log"
)

// Watch reloads the catalog whenever the file changes and calls onChange
// after each successful reload. It blocks until ctx is done.
// The directory is watched since editors and writeFile replace the file.
//
//nolint:gocognit // event loop
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	s.log.Info("watching catalog file", log.String("file", target))
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("context done, stopping catalog watch")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) {
				continue
			}
			s.log.Debug("change detected",
				log.String("file", event.Name), log.Stringer("op", event.Op))
			if err := s.Reload(); err != nil {
				s.log.Warn("could not reload catalog file", log.ErrorField(err))
				continue
			}
			if onChange != nil {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error("watcher error", log.ErrorField(err))
		}
	}
}
