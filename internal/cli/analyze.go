package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zombar/biasanalyzer/internal/config"
	"github.com/zombar/biasanalyzer/internal/render"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze text files for linguistic bias",
		Long: `Analyze one or more files and report the biased passages found in each.

Plain text, Markdown and PDF files are supported. Use "-" or no argument
to read from standard input. Files are analyzed concurrently, up to --jobs
at a time; a file that cannot be read is reported without stopping the
others.`,
		Example: `  biasctl analyze artigo.txt
  biasctl analyze --format markdown relatorio.pdf notas.md > relatorio.md
  cat noticia.txt | biasctl analyze -f json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args)
		},
	}

	cmd.Flags().IntP("jobs", "j", config.DefaultJobs, "number of files analyzed concurrently")
	_ = a.v.BindPFlag("jobs", cmd.Flags().Lookup("jobs"))

	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	stdinUsed := false
	for _, path := range args {
		if path == "-" {
			if stdinUsed {
				return fmt.Errorf("standard input can only be analyzed once")
			}
			stdinUsed = true
		}
	}

	docs := make([]render.Document, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Jobs)

	for i, path := range args {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				docs[i] = render.Document{Source: path, Error: ctx.Err().Error()}
				return nil
			default:
			}

			a.logger.Debug("analyzing file", "path", path, "index", i+1, "total", len(args))

			text, err := readInput(path, cmd.InOrStdin())
			if err != nil {
				a.logger.Warn("failed to read input", "path", path, "error", err)
				docs[i] = render.Document{Source: path, Error: err.Error()}
				return nil
			}

			docs[i] = render.FromText(path, svc.AnalyzeText(ctx, "", text, a.cfg.Detailed))
			return nil
		})
	}
	_ = g.Wait()

	if err := render.Render(cmd.OutOrStdout(), a.cfg.Format, docs); err != nil {
		return err
	}

	failed := 0
	for _, d := range docs {
		if d.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be analyzed", failed, len(docs))
	}
	return nil
}
