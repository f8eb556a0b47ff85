package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docaffix/internal/affix"
	"github.com/dgallion1/docaffix/internal/page"
	"github.com/dgallion1/docaffix/internal/pipeline"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <dir>...",
		Short: "Process every article page below one or more directories",
		Long: `Process every .html/.htm page below each directory, skipping table of
contents pages. Pages that cannot be read or parsed are reported and
skipped; the remaining pages are still processed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := a.worker()
			out := cmd.OutOrStdout()
			failed := 0
			for _, dir := range args {
				job := pipeline.NewJob(dir)
				w.Process(cmd.Context(), job)

				snap := job.Snapshot()
				p := snap.Progress
				fmt.Fprintf(out, "%s: %d pages, %d updated, %d emptied, %d skipped, %d failed (%s)\n",
					dir, p.TotalPages, p.PagesUpdated, p.PagesEmptied, p.PagesSkipped, p.PagesFailed, snap.Status)
				for _, e := range p.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", e)
				}
				if snap.Status != pipeline.StatusCompleted {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d directories did not complete cleanly", failed, len(args))
			}
			return nil
		},
	}
}

func newPageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "page <file>...",
		Short: "Process individual page files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := a.worker()
			failed := 0
			for _, path := range args {
				outcome, err := w.ProcessFile(path)
				if err != nil {
					a.log.Warn("page skipped", "path", path, "error", err)
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, outcome)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pages failed", failed, len(args))
			}
			return nil
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	var output, title string

	cmd := &cobra.Command{
		Use:   "preview <file.md>",
		Short: "Render a Markdown document as a page with its affix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			if title == "" {
				base := filepath.Base(args[0])
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}

			p, err := page.FromMarkdown(src, title, a.opts.Page)
			if err != nil {
				return err
			}
			res := affix.Apply(p, a.opts.Page, a.opts.Affix)
			a.log.Debug("preview rendered", "headings", res.Headings, "items", res.Items)

			var buf bytes.Buffer
			if err := p.Write(&buf); err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the page here instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "page title (default: file name)")
	return cmd
}
