package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentic-surfer/internal/config"
	"agentic-surfer/internal/integrations/paramstore"
	"agentic-surfer/internal/integrations/queryservice"
	"agentic-surfer/internal/logging"
	"agentic-surfer/internal/tui"
	"agentic-surfer/internal/usecase"
)

type globalOptions struct {
	configPath string
	endpoint   string
	logFile    string
	verbose    bool
	markdown   bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "surfer",
		Short: "Terminal chat client for the browsing agent",
		Long: `surfer is a chat client for the browsing agent's query service.

Type a message and press Enter (or click [ Send ]) to send it. The agent's
reply is appended to the transcript once it arrives.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "path to the YAML config file")
	flags.StringVar(&opts.endpoint, "endpoint", "", "query service URL (overrides config and environment)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&opts.markdown, "markdown", false, "render agent replies as markdown")

	root.AddCommand(newAskCmd(opts), newStubCmd(opts))
	return root
}

func runChat(cmd *cobra.Command, opts *globalOptions) error {
	ctx := cmd.Context()

	// ---- Configuration ----
	cfg, err := loadClientConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("session_id", uuid.NewString()))

	// ---- Clients ----
	dispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	// ---- UI ----
	model, err := tui.New(ctx, dispatcher, tui.Options{
		Greeting:      cfg.Greeting,
		Markdown:      cfg.UI.Markdown,
		MarkdownStyle: cfg.UI.MarkdownStyle,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	logger.Info("chat started", zap.String("endpoint", cfg.Endpoint))
	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		return fmt.Errorf("surfer: run ui: %w", err)
	}
	logger.Info("chat ended")
	return nil
}

// loadConfig reads .env, the YAML file and the environment, then applies the
// flags that were set explicitly.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = strings.TrimSpace(opts.endpoint)
		cfg.EndpointParameter = ""
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if flags.Changed("markdown") {
		cfg.UI.Markdown = opts.markdown
	}
	return cfg, nil
}

// loadClientConfig is loadConfig plus endpoint resolution from SSM, for the
// commands that talk to the query service.
func loadClientConfig(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	if cfg.EndpointParameter != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("surfer: load AWS config: %w", err)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, err
		}
		if err := cfg.ResolveEndpoint(ctx, ssmClient); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDispatcher(cfg *config.Config, logger *zap.Logger) (*usecase.Dispatcher, error) {
	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return nil, err
	}
	client, err := queryservice.NewClient(cfg.Endpoint, queryservice.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return usecase.NewDispatcher(client, logger, usecase.WithRequestTimeout(timeout))
}
