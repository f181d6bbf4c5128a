package renderer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
)

type stubRenderer struct {
	sceneChan chan *compiler.Scene
}

func (r *stubRenderer) Render() error { return nil }
func (r *stubRenderer) SetScene(sc *compiler.Scene) error {
	r.sceneChan <- sc
	return nil
}
func (r *stubRenderer) FrameBuffer() []uint8 { return nil }
func (r *stubRenderer) Stats() FrameStats    { return FrameStats{} }
func (r *stubRenderer) Close()               {}

const watcherSceneJSON = `{
	"max_ray_depth": 2,
	"sky_color": [1, 1, 1],
	"objects": [{"sphere": {"center": [0, 0, 2], "radius": 0.5, "material": "m"}}],
	"materials": {"m": {"color": [1, 0, 0]}}
}`

func TestWatchSceneReload(t *testing.T) {
	scenePath := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(scenePath, []byte(watcherSceneJSON), 0644); err != nil {
		t.Fatal(err)
	}

	r := &stubRenderer{sceneChan: make(chan *compiler.Scene, 4)}
	watcher, err := WatchScene(scenePath, r)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	// A broken save must not reach the renderer; the following good save
	// must. Saving twice also exercises the editor replace-on-save path.
	if err = os.WriteFile(scenePath, []byte(`{]`), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err = os.WriteFile(scenePath, []byte(watcherSceneJSON), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case sc := <-r.sceneChan:
		if len(sc.Objects) != 1 || len(sc.Materials) != 1 {
			t.Fatalf("expected the reloaded scene to contain 1 object and 1 material; got %d/%d",
				len(sc.Objects), len(sc.Materials))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for scene reload")
	}
}

func TestWatchSceneMissingDir(t *testing.T) {
	if _, err := WatchScene("/does/not/exist/scene.json", &stubRenderer{}); err == nil {
		t.Fatal("expected an error when the watched directory does not exist")
	}
}
