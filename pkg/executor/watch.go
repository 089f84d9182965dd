package executor

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/rules"
)

// settleDelay lets a burst of filesystem events (a download finishing,
// an unpack in progress) quiet down before the directory is re-sorted.
const settleDelay = 500 * time.Millisecond

// Watch sorts dir once, then keeps re-sorting it as new files appear,
// until ctx is cancelled. Sorting is idempotent, so reacting to an
// event burst with one full pass is safe. Watch talks to the real OS
// watcher and therefore only works on the OS filesystem.
func (e *Engine) Watch(ctx context.Context, dir string, mode rules.Mode, opts Options) error {
	root, err := e.resolver.ResolveDir(dir)
	if err != nil {
		return err
	}

	if _, err := e.Sort(root, mode, opts); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot create filesystem watcher")
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(root); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", root)
	}
	e.logger.Info().Str("dir", root).Str("mode", mode.Name()).Msg("Watching for new files")

	var settle *time.Timer
	var settleCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
				settleCh = settle.C
			} else {
				if !settle.Stop() {
					select {
					case <-settle.C:
					default:
					}
				}
				settle.Reset(settleDelay)
			}

		case <-settleCh:
			if _, err := e.Sort(root, mode, opts); err != nil {
				e.logger.Warn().Err(err).Str("dir", root).Msg("Sort pass failed, continuing to watch")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}
