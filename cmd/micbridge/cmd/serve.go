package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-drift/micbridge/cmd/micbridge/internal/config"
	"github.com/go-drift/micbridge/cmd/micbridge/internal/server"
	"github.com/go-drift/micbridge/pkg/microphone"
	"github.com/go-drift/micbridge/pkg/microphone/simsession"
	"github.com/go-drift/micbridge/pkg/platform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the microphone_permission channel over WebSocket",
	Long: `Host the microphone_permission method channel. Clients connect to /ws
and exchange method-call frames; /metrics serves Prometheus metrics and
/healthz reports the registered channels.

Session backends:
  auto        native API when available, simulated otherwise (default)
  native      AVFoundation (darwin only)
  simulated   file-backed permission state with a terminal prompt

Examples:
  micbridge serve
  micbridge serve --addr 127.0.0.1:9000 --backend simulated --prompt deny`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().String("backend", "", "Session backend: auto, native, simulated (overrides session.backend)")
	serveCmd.Flags().String("prompt", "", "Simulated prompt: terminal, allow, deny (overrides session.prompt)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Session.Backend = backend
	}
	if prompt, _ := cmd.Flags().GetString("prompt"); prompt != "" {
		cfg.Session.Prompt = prompt
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	session, err := buildSession(cfg.Session, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bridge := microphone.NewPermissionBridge(session,
		microphone.WithLogger(logger),
		microphone.WithMetrics(microphone.NewMetrics(reg)),
	)
	platform.RegisterPlugins(bridge)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Server, logger, reg).Run(ctx)
}

// buildSession picks the audio session for cfg.Backend.
func buildSession(cfg config.SessionConfig, logger *zap.Logger) (microphone.AudioSession, error) {
	if cfg.Backend != config.BackendSimulated {
		native, err := microphone.NewNativeSession()
		switch {
		case err == nil:
			logger.Info("using native audio session")
			return native, nil
		case cfg.Backend == config.BackendNative || !stderrors.Is(err, platform.ErrPlatformUnavailable):
			return nil, fmt.Errorf("native session: %w", err)
		}
		logger.Info("native audio session unavailable, using simulated session", zap.Error(err))
	}

	prompter, err := buildPrompter(cfg)
	if err != nil {
		return nil, err
	}
	store := simsession.NewFileStore(simsession.WithPath(cfg.StateFile))
	logger.Info("using simulated audio session",
		zap.String("state_file", store.Path()),
		zap.String("prompt", cfg.Prompt),
	)
	return simsession.New(store, prompter, simsession.WithLogger(logger)), nil
}

func buildPrompter(cfg config.SessionConfig) (simsession.Prompter, error) {
	switch cfg.Prompt {
	case config.PromptAllow:
		return simsession.StaticPrompter{Answer: true}, nil
	case config.PromptDeny:
		return simsession.StaticPrompter{Answer: false}, nil
	case config.PromptTerminal:
		return simsession.NewTerminalPrompter(cfg.AppName, cfg.Reason), nil
	default:
		return nil, fmt.Errorf("unknown prompt %q", cfg.Prompt)
	}
}
