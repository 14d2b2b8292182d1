// Package cli implements the biasctl command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zombar/biasanalyzer/internal/config"
	"github.com/zombar/biasanalyzer/internal/service"
)

// Version is the biasctl version
const Version = "1.0.0"

// EnvPrefix prefixes every environment variable read by biasctl
const EnvPrefix = "BIASCTL"

// app carries the state shared by the commands of one invocation
type app struct {
	v          *viper.Viper
	cfgFile    string
	configPath string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger

	newService func(config.Config, *slog.Logger) (*service.Service, error)
	svc        *service.Service
}

// NewRootCmd builds the biasctl command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		configPath: config.Path(),
		newService: buildService,
	})
}

// Execute runs biasctl with the process arguments
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	a.v = viper.New()
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "biasctl",
		Short: "Detect linguistic bias in Portuguese text",
		Long: `biasctl detects linguistic bias in Portuguese text about artificial
intelligence: technological determinism, hype, fear-mongering, false
certainty, loaded and emotional language, and more.

It analyzes local files, encyclopedia articles and single sentences, and
suggests neutral rewrites.

Configuration precedence (highest first):
  1. command line flags
  2. BIASCTL_* environment variables
  3. config file ($XDG_CONFIG_HOME/biasctl/config.yaml)
  4. built-in defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: "+a.configPath+")")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	pf.StringP("format", "f", defaults.Format, "output format: json, markdown or table")
	pf.Bool("detailed", defaults.Detailed, "include linguistic markers in findings")
	pf.String("lexicon", defaults.Lexicon, "lexicon overlay file")
	pf.String("annotator-url", defaults.AnnotatorURL, "linguistic annotation service URL")
	pf.String("wikipedia-api-url", defaults.WikipediaURL, "encyclopedia API URL")
	pf.Bool("use-ollama", defaults.Ollama.Enabled, "use Ollama for sentiment classification")
	pf.String("ollama-url", defaults.Ollama.URL, "Ollama API URL")
	pf.String("ollama-model", defaults.Ollama.Model, "Ollama model")
	pf.String("llm-provider", defaults.LLM.Provider, "rewrite and summary provider: openai, ollama or none")
	pf.String("llm-model", defaults.LLM.Model, "rewrite and summary model")
	pf.String("llm-base-url", defaults.LLM.BaseURL, "custom provider endpoint")

	_ = a.v.BindPFlag("format", pf.Lookup("format"))
	_ = a.v.BindPFlag("detailed", pf.Lookup("detailed"))
	_ = a.v.BindPFlag("lexicon", pf.Lookup("lexicon"))
	_ = a.v.BindPFlag("annotator_url", pf.Lookup("annotator-url"))
	_ = a.v.BindPFlag("wikipedia_api_url", pf.Lookup("wikipedia-api-url"))
	_ = a.v.BindPFlag("ollama.enabled", pf.Lookup("use-ollama"))
	_ = a.v.BindPFlag("ollama.url", pf.Lookup("ollama-url"))
	_ = a.v.BindPFlag("ollama.model", pf.Lookup("ollama-model"))
	_ = a.v.BindPFlag("llm.provider", pf.Lookup("llm-provider"))
	_ = a.v.BindPFlag("llm.model", pf.Lookup("llm-model"))
	_ = a.v.BindPFlag("llm.base_url", pf.Lookup("llm-base-url"))

	root.AddCommand(
		newAnalyzeCmd(a),
		newArticleCmd(a),
		newRewriteCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// loadConfig merges flags, environment, config file and defaults into a.cfg
func (a *app) loadConfig(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	defaults := config.Default()
	a.v.SetDefault("format", defaults.Format)
	a.v.SetDefault("detailed", defaults.Detailed)
	a.v.SetDefault("jobs", defaults.Jobs)
	a.v.SetDefault("lexicon", defaults.Lexicon)
	a.v.SetDefault("annotator_url", defaults.AnnotatorURL)
	a.v.SetDefault("wikipedia_api_url", defaults.WikipediaURL)
	a.v.SetDefault("ollama.enabled", defaults.Ollama.Enabled)
	a.v.SetDefault("ollama.url", defaults.Ollama.URL)
	a.v.SetDefault("ollama.model", defaults.Ollama.Model)
	a.v.SetDefault("llm.provider", defaults.LLM.Provider)
	a.v.SetDefault("llm.model", defaults.LLM.Model)
	a.v.SetDefault("llm.api_key", defaults.LLM.APIKey)
	a.v.SetDefault("llm.base_url", defaults.LLM.BaseURL)
	a.v.SetDefault("llm.timeout", defaults.LLM.Timeout)

	// BIASCTL_LLM_PROVIDER sets llm.provider
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")

	path := a.cfgFile
	if path == "" {
		path = a.configPath
	}
	if _, err := os.Stat(path); err == nil {
		a.v.SetConfigFile(path)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		a.logger.Debug("using config file", "path", path)
	} else if a.cfgFile != "" {
		return fmt.Errorf("config file %s: %w", a.cfgFile, err)
	}

	var cfg config.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// service builds the analysis service on first use
func (a *app) service() (*service.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	if a.newService == nil {
		return nil, errors.New("no service builder configured")
	}
	svc, err := a.newService(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.svc = svc
	return svc, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "biasctl v%s\n", Version)
		},
	}
}
