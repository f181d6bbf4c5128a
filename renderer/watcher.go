package renderer

import (
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/SpaceCat-Chan/ray-otami/log"
	"github.com/SpaceCat-Chan/ray-otami/scene"
	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
)

// Watch a scene file and hot-swap the renderer's scene whenever the
// file changes. A reload that fails to parse or compile keeps the last
// good scene; a successful one resets accumulation via SetScene. The
// parent directory is watched instead of the file itself because most
// editors replace files on save.
func WatchScene(path string, r Renderer) (io.Closer, error) {
	logger := log.New("scene watcher")

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != absPath || !event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}

				world, err := scene.Read(path)
				if err != nil {
					logger.Warningf("reload failed, keeping last good scene: %s", err)
					continue
				}
				compiled, err := compiler.Compile(world)
				if err != nil {
					logger.Warningf("reload failed, keeping last good scene: %s", err)
					continue
				}
				if err = r.SetScene(compiled); err != nil {
					logger.Warningf("reload failed, keeping last good scene: %s", err)
					continue
				}
				logger.Noticef("scene reloaded from %s", path)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warningf("watch error: %s", err)
			}
		}
	}()

	return watcher, nil
}
