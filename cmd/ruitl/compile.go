package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/ruitl/internal/build"
)

func newCompileCommand(app *app) *cobra.Command {
	var (
		templateDir string
		outDir      string
		pkg         string
		parallel    int
		noCache     bool
		clean       bool
	)

	cmd := &cobra.Command{
		Use:     "compile",
		Aliases: []string{"build", "gen"},
		Short:   "Compile .ruitl templates into Go code",
		Long: `Compiles every .ruitl file under the template directory into a
<name>.ruitl.go file in the output directory, mirroring the directory
structure. Each output package also gets a ruitl_components.go index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			// flags override ruitl.toml
			flags := cmd.Flags()
			if flags.Changed("templates") {
				cfg.Build.TemplateDir, _ = filepath.Abs(templateDir)
			}
			if flags.Changed("out") {
				cfg.Build.OutDir, _ = filepath.Abs(outDir)
			}
			if flags.Changed("package") {
				cfg.Build.Package = pkg
			}
			if flags.Changed("parallel") {
				cfg.Build.Parallel = parallel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			c := app.openCache(cfg, noCache)
			if c != nil {
				defer c.Close()
			}

			builder := build.New(build.Options{
				TemplateDir: cfg.Build.TemplateDir,
				OutDir:      cfg.Build.OutDir,
				Package:     cfg.Build.Package,
				Parallel:    cfg.Build.Parallel,
				Cache:       c,
				Logger:      app.logger,
			})

			con := app.console()
			con.Info("compiling %s", cfg.Build.TemplateDir)
			res, err := builder.Build(cmd.Context())
			if res != nil {
				for _, f := range res.Files {
					if f.Err != nil {
						con.Error("%s", f.Err)
					} else if app.verbose {
						con.Detail("%s -> %s", rel(cfg.Build.TemplateDir, f.Source), f.Output)
					}
				}
			}
			if err != nil {
				return err
			}

			if clean {
				sources := make([]string, 0, len(res.Files))
				for _, f := range res.Files {
					sources = append(sources, f.Source)
				}
				removed, err := builder.Clean(sources)
				if err != nil {
					return fmt.Errorf("failed to clean output: %w", err)
				}
				for _, f := range removed {
					con.Detail("removed %s", f)
				}
			}

			s := res.Stats
			if s.Failed > 0 {
				return fmt.Errorf("%d of %d templates failed to compile", s.Failed, s.Discovered)
			}
			con.Success("compiled %d templates (%d cached, %d written) in %s",
				s.Discovered, s.Cached, s.Written, s.Duration.Round(1e6))
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateDir, "templates", "t", "", "Template directory (default from ruitl.toml)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory for generated Go files")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "Go package name of generated files")
	cmd.Flags().IntVarP(&parallel, "parallel", "j", 0, "Number of files compiled at once")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the compile cache")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove generated files whose template no longer exists")

	return cmd
}

func rel(base, path string) string {
	if r, err := filepath.Rel(base, path); err == nil {
		return r
	}
	return path
}
