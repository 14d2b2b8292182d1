package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zombar/biasanalyzer/internal/render"
)

func newArticleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "article <title>",
		Short: "Fetch an encyclopedia article and analyze it",
		Long: `Fetch a Portuguese encyclopedia article by title, check that it is about
artificial intelligence and long enough, and report its biased passages
with a document summary.`,
		Example: `  biasctl article "Inteligência artificial"
  biasctl article Aprendizado de máquina --format markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			title := strings.Join(args, " ")
			a.logger.Debug("analyzing article", "title", title)

			result, err := svc.AnalyzeArticle(cmd.Context(), "", title, a.cfg.Detailed)
			if err != nil {
				return err
			}
			return render.Render(cmd.OutOrStdout(), a.cfg.Format, []render.Document{render.FromArticle(result)})
		},
	}
}
