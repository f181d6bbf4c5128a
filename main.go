package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/SpaceCat-Chan/ray-otami/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "ray-otami"
	app.Usage = "progressively render scenes of signed-distance-field surfaces"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "info",
			Usage: "compile a scene and display buffer statistics",
			Description: `
Parse a scene definition from a json file, flatten the object tree and
material table into the buffers the tracer traverses, and display their
layout statistics.`,
			ArgsUsage: "[scene.json]",
			Action:    cmd.SceneInfo,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame, accumulating one or more passes, and export it as a png image.`,
					ArgsUsage:   "[scene.json]",
					Flags: []cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "spp",
							Value: 1,
							Usage: "samples per pixel per pass",
						},
						cli.IntFlag{
							Name:  "frames",
							Value: 16,
							Usage: "number of accumulation passes",
						},
						cli.IntFlag{
							Name:  "max-depth",
							Value: 0,
							Usage: "override scene max ray depth when non-zero",
						},
						cli.IntFlag{
							Name:  "workers",
							Value: 0,
							Usage: "tracer worker count (0 = one per cpu)",
						},
						cli.Float64Flag{
							Name:  "exposure",
							Value: 1.0,
							Usage: "camera exposure for tone-mapping",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					},
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Render a progressively converging view of the scene; the scene file is hot-reloaded on change.`,
					ArgsUsage:   "[scene.json]",
					Flags: []cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "spp",
							Value: 1,
							Usage: "samples per pixel per pass",
						},
						cli.IntFlag{
							Name:  "max-depth",
							Value: 0,
							Usage: "override scene max ray depth when non-zero",
						},
						cli.IntFlag{
							Name:  "workers",
							Value: 0,
							Usage: "tracer worker count (0 = one per cpu)",
						},
						cli.Float64Flag{
							Name:  "exposure",
							Value: 1.0,
							Usage: "camera exposure for tone-mapping",
						},
					},
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	app.Run(os.Args)
}
