package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/levo/internal/app"
	"github.com/abhisek/levo/internal/config"
	"github.com/abhisek/levo/internal/logging"
	"github.com/abhisek/levo/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "levo",
	Short:        "Language practice in the terminal",
	Long:         "Levo brings lessons, daily quizzes, hearts, coins and streaks from the Levo backend to your terminal.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (rootCmd -> runApp -> openApp -> loadConfig -> rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	}

	rootCmd.PersistentFlags().String("db", "", "Path to the local store (overrides LEVO_DB)")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (overrides LEVO_API_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LEVO_LOG_LEVEL)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(heartsCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(wordsCmd)
	rootCmd.AddCommand(premiumCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies the global flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.APIURL = strings.TrimRight(u, "/")
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	} else if _, ok := os.LookupEnv("LEVO_LOG_LEVEL"); !ok && cmd != rootCmd {
		// Subcommands print to the terminal; keep info chatter out of it.
		cfg.Log.Level = "warn"
	}
	return cfg, cfg.Validate()
}

// openApp builds the App for a command. The TUI logs to a file next to
// the store since stderr belongs to the alt screen.
func openApp(cmd *cobra.Command, tui bool) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logPath := cfg.Log.File
	if tui && logPath == "" {
		logPath, err = defaultLogPath(cfg)
		if err != nil {
			return nil, err
		}
	}
	logger, err := logging.New(cfg.Log.Level, logPath)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	a.Logger.Debug("app ready", zap.String("api", cfg.APIURL), zap.Bool("signed_in", a.Authenticated()))
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Warn("close store", zap.Error(err))
	}
	_ = a.Logger.Sync()
}

func defaultLogPath(cfg config.Config) (string, error) {
	db := cfg.DBPath
	if db == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return "", fmt.Errorf("resolve DB path: %w", err)
		}
		db = p
	}
	return filepath.Join(filepath.Dir(db), "levo.log"), nil
}

// requireSession fails commands that need a signed-in user.
func requireSession(a *app.App) error {
	if !a.Authenticated() {
		return fmt.Errorf("not signed in, run: levo login --email you@example.com")
	}
	return nil
}
