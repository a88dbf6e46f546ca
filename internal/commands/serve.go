package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/revu/internal/app"
	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/server"
	"github.com/tildaslashalef/revu/internal/utils"
)

// ServeCommand returns the CLI command for running the HTTP API server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides REVU_SERVER_PORT)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	svc, err := application.RequireReview()
	if err != nil {
		utils.PrintError("No API key configured. Set REVU_GEMINI_API_KEY and try again.")
		return err
	}

	cfg := application.Config
	if port := c.Int("port"); port > 0 {
		cfg.Server.Port = port
	}

	srv := server.New(cfg, svc, application.History, loggy.GetGlobalLogger())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	utils.PrintInfo(fmt.Sprintf("Listening on %s:%d", cfg.Server.Host, cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		loggy.Info("Shutting down server", "signal", sig.String())
		return srv.Stop()
	}
}
