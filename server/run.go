package server

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pagemaker/state"
	"pagemaker/storage"
)

// Run is "serve" command action. It opens page and image stores described
// by configuration and serves API until program is interrupted.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("serve")

	cfg := env.Cfg.Server
	if cmd.IsSet("listen") {
		cfg.Listen = cmd.String("listen")
	}

	pages, err := storage.OpenPageStore(cfg.Database, env.Log)
	if err != nil {
		return fmt.Errorf("unable to open page store: %w", err)
	}
	defer func() {
		if er := pages.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close page store: %w", er))
		}
	}()

	images, err := storage.NewImageStore(cfg.ImagesDir, cfg.ImagesURL, cfg.MaxUploadSize, env.Log)
	if err != nil {
		return fmt.Errorf("unable to prepare image store: %w", err)
	}

	srv := New(Options{
		Sanitize:      env.SanitizeOptions(),
		Split:         env.SplitOptions(),
		Export:        env.ExportOptions(),
		ImagesDir:     images.Dir(),
		ImagesURL:     cfg.ImagesURL,
		MaxUploadSize: cfg.MaxUploadSize,
	}, pages, images, env.Log)

	log.Info("Serving", zap.String("listen", cfg.Listen), zap.String("database", cfg.Database), zap.String("images", images.Dir()))
	return srv.ListenAndServe(ctx, cfg.Listen)
}
