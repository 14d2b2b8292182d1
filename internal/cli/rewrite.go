package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zombar/biasanalyzer/internal/config"
	"github.com/zombar/biasanalyzer/internal/models"
)

type rewriteResult struct {
	Original string          `json:"original"`
	Rewrite  string          `json:"rewrite"`
	Category models.Category `json:"category"`
	Source   string          `json:"source"`
}

func newRewriteCmd(a *app) *cobra.Command {
	var (
		category    string
		explanation string
	)

	cmd := &cobra.Command{
		Use:   "rewrite --category <category> <text>",
		Short: "Suggest a neutral rewrite of a biased passage",
		Long: `Rewrite a passage in neutral language. The configured LLM provider is used
when available; otherwise local substitutions are applied. Use "-" to read
the passage from standard input.

Categories: ` + categoryList(),
		Example: `  biasctl rewrite --category hype_language "A IA é uma tecnologia revolucionária."`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.ParseCategory(category)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if text == "-" {
				if text, err = readInput("-", cmd.InOrStdin()); err != nil {
					return err
				}
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return errEmptyInput
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			out, source := svc.Rewrite(cmd.Context(), text, cat, explanation)

			if a.cfg.Format == config.FormatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(rewriteResult{Original: text, Rewrite: out, Category: cat, Source: source})
			}
			a.logger.Debug("rewrite generated", "source", source)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "bias category of the passage (required)")
	cmd.Flags().StringVar(&explanation, "explanation", "", "why the passage is biased, passed to the provider")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func categoryList() string {
	names := make([]string, 0, models.NumCategories)
	for _, c := range models.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
