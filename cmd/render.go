package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"runtime"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/SpaceCat-Chan/ray-otami/renderer"
	"github.com/SpaceCat-Chan/ray-otami/scene"
	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
	"github.com/SpaceCat-Chan/ray-otami/tracer"
)

// Load and compile the scene named by the first CLI argument, falling
// back to the default scene path.
func loadScene(ctx *cli.Context) (string, *compiler.Scene, error) {
	scenePath := scene.DefaultScenePath
	if ctx.NArg() > 0 {
		scenePath = ctx.Args().First()
	}

	logger.Noticef("loading scene: %s", scenePath)
	world, err := scene.Read(scenePath)
	if err != nil {
		return "", nil, err
	}

	sc, err := compiler.Compile(world)
	if err != nil {
		return "", nil, err
	}
	return scenePath, sc, nil
}

func optionsFromContext(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		FrameW:           uint32(ctx.Int("width")),
		FrameH:           uint32(ctx.Int("height")),
		SamplesPerPixel:  uint32(ctx.Int("spp")),
		Exposure:         float32(ctx.Float64("exposure")),
		MaxDepthOverride: uint32(ctx.Int("max-depth")),
		NumWorkers:       ctx.Int("workers"),
	}
}

// Render a still frame and export it as a PNG.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := optionsFromContext(ctx)
	_, sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, tracer.NewPerfectScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	frames := uint32(ctx.Int("frames"))
	if frames == 0 {
		frames = 1
	}

	logger.Noticef("rendering %d accumulation pass(es)", frames)
	start := time.Now()
	for i := uint32(0); i < frames; i++ {
		if err = r.Render(); err != nil {
			return err
		}
	}
	logger.Noticef("rendered frame in %d ms", time.Since(start).Nanoseconds()/1e6)
	displayFrameStats(r.Stats())

	return exportPNG(r.FrameBuffer(), opts.FrameW, opts.FrameH, ctx.String("out"))
}

// Render an interactive, progressively converging view of the scene.
// The scene file is watched and hot-reloaded on change.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	// The GL context is bound to the calling thread.
	runtime.LockOSThread()

	opts := optionsFromContext(ctx)
	scenePath, sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(sc, tracer.NewPerfectScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	watcher, err := renderer.WatchScene(scenePath, r)
	if err != nil {
		return err
	}
	defer watcher.Close()

	return r.Run()
}

func exportPNG(frameBuffer []uint8, frameW, frameH uint32, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img := &image.RGBA{
		Pix:    frameBuffer,
		Stride: int(frameW) * 4,
		Rect:   image.Rect(0, 0, int(frameW), int(frameH)),
	}
	if err = png.Encode(f, img); err != nil {
		return err
	}

	logger.Noticef("wrote frame to %s", path)
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics (%d samples/pixel accumulated)\n%s", stats.SampleCount, buf.String())
}
