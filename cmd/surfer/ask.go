package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentic-surfer/internal/logging"
	"agentic-surfer/internal/usecase"
)

func newAskCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the agent's reply",
		Long: `Sends a single message through the same exchange as the interactive
chat and prints the text the agent would add to the transcript.

Example:
  surfer ask "find the cheapest flight to Lisbon"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}
}

func runAsk(cmd *cobra.Command, opts *globalOptions, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("surfer: message must not be empty")
	}
	ctx := cmd.Context()

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

	dispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}
	controller, err := usecase.NewController(dispatcher, cfg.Greeting)
	if err != nil {
		return err
	}

	controller.UpdateDraft(text)
	if !controller.Submit(ctx) {
		return errors.New("surfer: message was not sent")
	}

	transcript := controller.State().Transcript()
	_, err = fmt.Fprintln(cmd.OutOrStdout(), transcript[len(transcript)-1].Text)
	return err
}
