package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/ruitl/internal/devserver"
)

func newDevCommand(app *app) *cobra.Command {
	var (
		host     string
		port     int
		open     bool
		generate bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the preview server",
		Long: `Serves live previews of every component at /preview/<Name>, using
sample props from the preview data file. Templates are watched and
browsers reload on every change; errors are shown in the page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			// CLI takes precedence
			if cmd.Flags().Changed("host") {
				cfg.Dev.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Dev.Port = port
			}
			if cmd.Flags().Changed("open") {
				cfg.Dev.Open = open
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			c := app.openCache(cfg, !generate)
			if c != nil {
				defer c.Close()
			}

			srv := devserver.New(devserver.Options{
				Addr:        cfg.Dev.Addr(),
				TemplateDir: cfg.Build.TemplateDir,
				OutDir:      cfg.Build.OutDir,
				Package:     cfg.Build.Package,
				Parallel:    cfg.Build.Parallel,
				PreviewData: cfg.Dev.PreviewData,
				Generate:    generate,
				Cache:       c,
				Logger:      app.logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			url := fmt.Sprintf("http://%s", cfg.Dev.Addr())
			app.console().Success("dev server running at %s", url)
			if cfg.Dev.Open {
				go func() {
					time.Sleep(300 * time.Millisecond)
					if err := openBrowser(ctx, url); err != nil {
						app.console().Warn("could not open browser: %v", err)
					}
				}()
			}

			if err := srv.ListenAndServe(ctx); err != nil {
				return err
			}
			app.console().Info("dev server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind the dev server to")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run the dev server on")
	cmd.Flags().BoolVar(&open, "open", false, "Open the browser on start")
	cmd.Flags().BoolVar(&generate, "generate", true, "Also write generated Go files on every change")

	return cmd
}

func openBrowser(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	return cmd.Start()
}
