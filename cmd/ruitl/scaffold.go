package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recera/ruitl/cmd/ruitl/internal/ui"
	"github.com/recera/ruitl/internal/scaffold"
)

func newScaffoldCommand(app *app) *cobra.Command {
	var (
		opts          scaffold.Options
		interactive   bool
		noInteractive bool
	)

	cmd := &cobra.Command{
		Use:     "scaffold [name]",
		Aliases: []string{"new", "init"},
		Short:   "Create a new ruitl project",
		Long: `Creates a project with a ruitl.toml, example components, preview
data and a main.go serving the generated code.

Templates:
  basic    Button, Card and Home components with a static home page
  minimal  a single Hello component`,
		Example: `  ruitl scaffold my-site
  ruitl scaffold my-site -t minimal --port 8080
  ruitl scaffold -i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Name = args[0]
			}
			useTUI := interactive || (opts.Name == "" && isTerminal(os.Stdin))
			if noInteractive {
				useTUI = false
			}

			if useTUI {
				var err error
				opts, err = ui.RunScaffold(opts)
				if errors.Is(err, ui.ErrCanceled) {
					app.console().Info("canceled")
					return nil
				}
				if err != nil {
					return err
				}
			} else if opts.Name == "" {
				return errors.New("project name required (or use --interactive)")
			}

			if opts.Directory == "" {
				opts.Directory = opts.Name
			}
			if !filepath.IsAbs(opts.Directory) {
				opts.Directory = filepath.Join(app.root, opts.Directory)
			}

			files, err := scaffold.Create(opts)
			if err != nil {
				return err
			}

			con := app.console()
			con.Success("created %s", opts.Directory)
			for _, f := range files {
				con.Detail("%s", f)
			}

			fmt.Fprintln(app.out)
			fmt.Fprintln(app.out, "Next steps:")
			fmt.Fprintf(app.out, "  cd %s\n", quote(opts.Directory))
			fmt.Fprintln(app.out, "  ruitl compile")
			fmt.Fprintln(app.out, "  ruitl dev")
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", scaffold.TemplateBasic,
		"Project template ("+strings.Join(scaffold.TemplateNames(), ", ")+")")
	cmd.Flags().StringVar(&opts.Module, "module", "", "Go module path (default example.com/<name>)")
	cmd.Flags().StringVar(&opts.Directory, "output", "", "Target directory (default ./<name>)")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Go package for generated components")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Dev server port")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Write into a non-empty directory")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Ask for the project settings")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Never prompt")

	return cmd
}

func quote(path string) string {
	if strings.ContainsAny(path, " \t'\"") {
		return fmt.Sprintf("%q", path)
	}
	return path
}
