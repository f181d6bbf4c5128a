package cmd

import "github.com/urfave/cli"

// Compile a scene and display its buffer statistics.
func SceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	_, sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	return nil
}
