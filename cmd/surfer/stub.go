package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentic-surfer/handler"
	"agentic-surfer/internal/logging"
)

type stubOptions struct {
	addr   string
	shape  string
	lambda bool
}

func newStubCmd(opts *globalOptions) *cobra.Command {
	stub := &stubOptions{}
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local stand-in for the query service",
		Long: `Serves POST /query with canned replies that echo the query, so the
client can be exercised without the browsing agent.

Shapes:
  answer  {"answer": "..."}
  result  {"result": "..."}
  error   {"status": "error", "message": "..."}
  raw     an object the client does not recognise

With --lambda the same routes are served as an AWS Lambda behind an API
Gateway proxy integration instead of on a local address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStub(cmd, opts, stub)
		},
	}
	cmd.Flags().StringVar(&stub.addr, "addr", "", "listen address (default from config, :8007)")
	cmd.Flags().StringVar(&stub.shape, "shape", "", "reply shape: answer, result, error or raw")
	cmd.Flags().BoolVar(&stub.lambda, "lambda", false, "run as an AWS Lambda handler")
	return cmd
}

func runStub(cmd *cobra.Command, opts *globalOptions, stub *stubOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Stub.Addr = stub.addr
	}
	if cmd.Flags().Changed("shape") {
		cfg.Stub.Shape = stub.shape
	}

	logger, err := logging.NewConsole(cfg.Logging, opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shape, err := handler.ParseShape(cfg.Stub.Shape)
	if err != nil {
		return err
	}
	h, err := handler.NewHandler(logger, shape)
	if err != nil {
		return err
	}

	if stub.lambda {
		logger.Info("stub query service starting in lambda", zap.String("shape", string(shape)))
		lambda.Start(h.HandleLambda)
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.Stub.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub query service listening", zap.String("addr", srv.Addr), zap.String("shape", string(shape)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("surfer: stub server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down stub query service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("surfer: stub shutdown: %w", err)
	}
	return nil
}
