package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/course-split-timer/log"
)

// ChangeFunc receives the file stem of a course file that was written or
// removed outside of this process (or by it).
type ChangeFunc func(stem string, removed bool)

// Watch reports changes of course files until ctx is done.
// The atomic rename done by Save shows up as a create event.
//
//nolint:funlen,gocognit // by design
func (r *Repository) Watch(ctx context.Context, onChange ChangeFunc) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.l.Error("could not create fsnotify watcher", log.ErrorField(err))
		return err
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return err
	}
	r.l.Info("watching course files", log.String("dir", r.dir))
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				r.l.Debug("context done, stopping course watch")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					r.l.Info("watcher events channel closed, stopping course watch")
					return
				}
				base := filepath.Base(event.Name)
				if !isCourseFile(base) {
					continue
				}
				stem := strings.TrimSuffix(base, courseExt)
				r.l.Debug("change detected",
					log.String("file", event.Name), log.String("op", event.Op.String()))
				switch {
				case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
					onChange(stem, false)
				case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
					onChange(stem, true)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					r.l.Info("watcher errors channel closed, stopping course watch")
					return
				}
				r.l.Error("watcher error", log.ErrorField(err))
			}
		}
	}()
	return nil
}
