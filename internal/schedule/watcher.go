package schedule

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// watcher coalesces filesystem events on the declarations dir into one
// notification per quiet period, so an editor save burst or a directory
// sync triggers a single render.
type watcher struct {
	fw     *fsnotify.Watcher
	events chan string
}

func newWatcher(ctx context.Context, dir string, debounce time.Duration) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &watcher{fw: fw, events: make(chan string, 1)}
	go w.loop(ctx, debounce)
	return w, nil
}

func (w *watcher) loop(ctx context.Context, debounce time.Duration) {
	var timer *time.Timer
	var timerC <-chan time.Time
	pending := ""

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = ev.Name
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("declaration watch error")
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.events <- pending:
			default:
			}
		}
	}
}

func (w *watcher) Close() {
	_ = w.fw.Close()
}
