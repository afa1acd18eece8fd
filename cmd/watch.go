package cmd

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// debounce coalesces the burst of events an editor produces on save.
const debounce = 200 * time.Millisecond

// watcher reports changes to the templates and to the headers in the
// include directories.
type watcher struct {
	w      *fsnotify.Watcher
	header glob.Glob
	files  []string

	changeC chan string
	errC    chan error
	done    chan struct{}
	exited  chan struct{}
}

func newWatcher(opts options) (*watcher, error) {
	g, err := glob.Compile(opts.HeaderGlob)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		w:       fw,
		header:  g,
		changeC: make(chan string, 1),
		errC:    make(chan error, 1),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}

	// Watch the containing directories. Editors may replace a file on save.
	dirs := slices.Clone(opts.Include)
	for _, t := range opts.Templates {
		abs, err := filepath.Abs(t)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files = append(w.files, abs)
		dirs = append(dirs, filepath.Dir(abs))
	}
	slices.Sort(dirs)

	for _, dir := range slices.Compact(dirs) {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	go w.loop()
	return w, nil
}

func (w *watcher) relevant(path string) bool {
	if abs, err := filepath.Abs(path); err == nil && slices.Contains(w.files, abs) {
		return true
	}
	return w.header.Match(filepath.Base(path))
}

func (w *watcher) loop() {
	defer close(w.exited)

	timer := time.NewTimer(debounce)
	timer.Stop()

	var last string
	for {
		select {
		case <-w.done:
			timer.Stop()
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod || !w.relevant(ev.Name) {
				continue
			}
			last = ev.Name
			timer.Reset(debounce)
		case <-timer.C:
			select {
			case w.changeC <- last:
			default:
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			select {
			case w.errC <- err:
			default:
			}
		}
	}
}

func (w *watcher) Changes() <-chan string { return w.changeC }
func (w *watcher) Errors() <-chan error   { return w.errC }

func (w *watcher) Close() error {
	close(w.done)
	return w.w.Close()
}
