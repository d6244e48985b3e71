package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/ruitl/internal/build"
	"github.com/recera/ruitl/internal/staticgen"
)

func newStaticCommand(app *app) *cobra.Command {
	var (
		outDir  string
		baseURL string
	)

	cmd := &cobra.Command{
		Use:   "static",
		Short: "Render the configured pages to a static site",
		Long: `Renders every page listed under [static] in ruitl.toml to HTML.
Templates are evaluated directly, no Go build is needed. When base_url
is set a sitemap.xml and robots.txt are written as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Static.OutDir, _ = filepath.Abs(outDir)
			}
			if cmd.Flags().Changed("base-url") {
				cfg.Static.BaseURL = baseURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			con := app.console()
			if len(cfg.Static.Pages) == 0 {
				con.Warn("no pages configured in ruitl.toml")
			}

			pv, err := build.New(build.Options{
				TemplateDir: cfg.Build.TemplateDir,
				OutDir:      cfg.Build.OutDir,
				Package:     cfg.Build.Package,
				Parallel:    cfg.Build.Parallel,
				Logger:      app.logger,
			}).LoadPreviewer(cmd.Context())
			if err != nil {
				return err
			}

			res, err := staticgen.New(pv, staticgen.Options{
				Static:   cfg.Static,
				Parallel: cfg.Build.Parallel,
				Logger:   app.logger,
			}).Generate(cmd.Context())
			if err != nil {
				return err
			}

			failed := 0
			for _, p := range res.Pages {
				if p.Err != nil {
					failed++
					con.Error("%s: %v", p.Path, p.Err)
					continue
				}
				con.Detail("%-20s %s (%d bytes)", p.Path, rel(cfg.Static.OutDir, p.Output), p.Size)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pages failed", failed, len(res.Pages))
			}
			con.Success("generated %d pages and %d assets in %s", len(res.Pages), res.Assets, res.Duration.Round(1e6))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory for the site")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Absolute URL the site is served from")

	return cmd
}
