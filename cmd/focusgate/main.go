// Package main is the CLI entry point for focusgate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/focusgate/focusgate/internal/config"
	"github.com/focusgate/focusgate/internal/daemon"
	"github.com/focusgate/focusgate/internal/domain"
	"github.com/focusgate/focusgate/internal/infra"
	"github.com/focusgate/focusgate/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "focusgate",
	Short: "Time-boxed focus sessions with app enforcement",
	Long: `focusgate runs a time-boxed focus session during which a chosen set of
applications is either the only set allowed to run (allow mode) or is
forbidden from running (block mode). Violating apps are terminated and
focus is restored to the last compliant app.

Enforcement is best-effort at the process level, not a sandbox.`,
	Version: Version,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	Long: `Starts a focus session in the foreground and enforces it until the
countdown completes or the process receives an interrupt.

Apps are given as --app identifier or --app identifier=Display Name,
repeatable. In allow mode at least one app is required.`,
	RunE: runStart,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether an enforcement process is running",
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed focus sessions",
	RunE:  runHistory,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

var (
	configPath   string
	sessionMode  string
	sessionApps  []string
	sessionMins  int
	historyLimit int
	jsonOutput   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "~/.focusgate/config.yaml", "Config file path")

	startCmd.Flags().StringVar(&sessionMode, "mode", "allow", "Session mode: allow or block")
	startCmd.Flags().StringArrayVar(&sessionApps, "app", nil, "App in scope, id or id=Display Name (repeatable)")
	startCmd.Flags().IntVar(&sessionMins, "minutes", 25, "Session duration in minutes")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of records to show")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mode, err := parseMode(sessionMode)
	if err != nil {
		return err
	}
	apps := parseApps(sessionApps)

	logger := createLogger(cfg)
	defer func() { _ = logger.Sync() }()

	dataDir := config.ExpandHome(cfg.DataDir)
	pc := infra.NewProcessController()

	lock := infra.NewPIDLock(dataDir, pc.IsPIDRunning)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	keyProvider := infra.NewFileKeyProvider(dataDir)
	key, err := infra.EnsureKey(keyProvider)
	if err != nil {
		return fmt.Errorf("failed to prepare history key: %w", err)
	}
	history, err := infra.NewEncryptedHistory(dataDir, key)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() { _ = history.Close() }()

	sampler := infra.NewSampler(pc, cfg.PollInterval, logger)
	oracle := infra.NewGeometryOracle(logger)

	var toast domain.ToastSink
	if cfg.ToastEnabled {
		toast = infra.NewNotifyToast(logger)
	}

	engine := usecase.NewEngine(pc, oracle, toast, cfg.FullscreenBypass, logger)
	ctrl := usecase.NewController(
		usecase.DefaultControllerConfig(),
		engine, sampler, history, cfg.ProtectedSet(), logger,
	)

	console := newConsoleStatus()
	ctrl.AddStatusListener(console)

	runner := daemon.NewRunner(ctrl, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	runDone := make(chan struct{})
	go func() {
		_ = runner.Run(ctx)
		close(runDone)
	}()

	if err := runner.StartSession(apps, mode, sessionMins); err != nil {
		cancel()
		<-runDone
		return err
	}

	fmt.Printf("Focus session started: mode=%s, %d minute(s), %d app(s) in scope\n",
		mode, sessionMins, len(apps))

	select {
	case minutes := <-console.completed:
		runner.AcknowledgeCompletion()
		fmt.Printf("\nSession complete: %d minute(s) of focus.\n", minutes)
	case <-ctx.Done():
		fmt.Println("\nSession ended early, nothing recorded.")
	}

	cancel()
	<-runDone
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pc := infra.NewProcessController()
	lock := infra.NewPIDLock(config.ExpandHome(cfg.DataDir), pc.IsPIDRunning)

	if pid, ok := lock.HolderPID(); ok {
		fmt.Printf("focusgate is running (pid %d)\n", pid)
	} else {
		fmt.Println("focusgate is not running")
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := config.ExpandHome(cfg.DataDir)
	keyProvider := infra.NewFileKeyProvider(dataDir)
	if !keyProvider.KeyExists() {
		fmt.Println("No session history yet.")
		return nil
	}
	key, err := keyProvider.GetKey()
	if err != nil {
		return fmt.Errorf("failed to read history key: %w", err)
	}
	history, err := infra.NewEncryptedHistory(dataDir, key)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() { _ = history.Close() }()

	records, err := history.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No session history yet.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %3d min  %-5s  %s\n",
			r.StartedAt.Format("2006-01-02 15:04"),
			r.DurationMinutes,
			r.Mode,
			strings.Join(r.AppNames, ", "))
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("focusgate %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}

func parseMode(s string) (domain.SessionMode, error) {
	switch strings.ToLower(s) {
	case "allow", "allowlist", "allow-list":
		return domain.ModeAllowList, nil
	case "block", "blocklist", "block-list":
		return domain.ModeBlockList, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want allow or block)", s)
	}
}

func parseApps(specs []string) []domain.AppSelection {
	apps := make([]domain.AppSelection, 0, len(specs))
	for _, spec := range specs {
		id, name, found := strings.Cut(spec, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !found || strings.TrimSpace(name) == "" {
			name = id
		}
		apps = append(apps, domain.AppSelection{Identifier: id, DisplayName: strings.TrimSpace(name)})
	}
	return apps
}

func createLogger(cfg *config.Config) *zap.Logger {
	logPath := config.ExpandHome(cfg.LogFile)
	_ = os.MkdirAll(filepath.Dir(logPath), 0700)

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}
