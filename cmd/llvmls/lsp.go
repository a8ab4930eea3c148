package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"llvmls/internal/lsp"
	"llvmls/internal/metrics"
	"llvmls/internal/modelcache"
	"llvmls/internal/trace"
)

var lspMetricsAddr string

func init() {
	lspCmd.Flags().StringVar(&lspMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
}

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the LLVM IR language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	addr := run.cfg.LSP.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		addr = lspMetricsAddr
	}
	if addr != "" {
		stop, err := serveMetrics(addr)
		if err != nil {
			return err
		}
		defer stop()
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Cache:  modelcache.New(32),
		Tracer: trace.FromContext(ctx),
		Log:    cmd.ErrOrStderr(),
	})
	if err := server.Run(ctx); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

// serveMetrics exposes /metrics on addr until the returned stop func runs.
func serveMetrics(addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "llvmls: metrics server: %v\n", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
