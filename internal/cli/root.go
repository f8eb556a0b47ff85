package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docaffix/internal/config"
	"github.com/dgallion1/docaffix/internal/pipeline"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	cfg  config.Config
	opts pipeline.Options
	log  *slog.Logger

	configFile  string
	placeholder string
	scope       string
	classes     []string
	workers     int
	verbose     bool
}

// Execute runs the affix command line.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "affix",
		Short: "Build in-page navigation affixes for generated article pages",
		Long: `affix reads generated HTML article pages, rebuilds the outline implied by
their h1-h4 headings and writes it as a nested list into each page's
placeholder element.

Environment Variables:
  AFFIX_CONFIG          YAML config file
  AFFIX_PLACEHOLDER_ID  Placeholder element id (default "affix")
  AFFIX_LIST_CLASSES    Classes added to every list level`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "YAML config file (default $AFFIX_CONFIG)")
	f.StringVar(&a.placeholder, "placeholder", "", "id of the placeholder element")
	f.StringVar(&a.scope, "scope", "", "class added to the outermost list")
	f.StringSliceVar(&a.classes, "classes", nil, "classes added to every list level")
	f.IntVarP(&a.workers, "workers", "w", 0, "pages processed concurrently")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log every page")

	root.AddCommand(newRunCmd(a), newPageCmd(a), newPreviewCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	var err error
	if a.configFile != "" {
		a.cfg, err = config.LoadFrom(a.configFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("placeholder") {
		a.cfg.PlaceholderID = a.placeholder
	}
	if flags.Changed("scope") {
		a.cfg.ScopeClass = a.scope
	}
	if flags.Changed("classes") {
		a.cfg.ListClasses = a.classes
	}
	if flags.Changed("workers") && a.workers > 0 {
		a.cfg.MaxConcurrentPages = a.workers
	}
	if a.cfg.PlaceholderID == "" {
		return fmt.Errorf("placeholder id must not be empty")
	}

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.opts = pipeline.OptionsFromConfig(a.cfg)
	return nil
}

func (a *app) worker() *pipeline.Worker {
	return pipeline.NewWorker(a.opts, nil, a.log)
}
