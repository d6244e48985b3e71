package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/ruitl/internal/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	app := &app{}
	if err := newRootCommand(app).Execute(); err != nil {
		app.console().Error("%v", err)
		os.Exit(1)
	}
}

func newRootCommand(app *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ruitl",
		Short: "ruitl - compile .ruitl templates to Go",
		Long: `ruitl compiles .ruitl component templates into type-safe Go code,
previews them with live reload and renders static sites from them.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.setup(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.root, "dir", "C", ".", "Project directory containing "+config.FileName)
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newCompileCommand(app))
	rootCmd.AddCommand(newDevCommand(app))
	rootCmd.AddCommand(newStaticCommand(app))
	rootCmd.AddCommand(newScaffoldCommand(app))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ruitl %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
