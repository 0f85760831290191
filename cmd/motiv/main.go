// Package main provides the motiv CLI entry point: a terminal client for
// the metamotivation tracking service.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"metamotivation/cmd/motiv/config"
	"metamotivation/cmd/motiv/screens"
	"metamotivation/cmd/motiv/ui"
	"metamotivation/internal/api"
	"metamotivation/internal/coach"
	"metamotivation/internal/session"
)

var (
	// Global flags
	verbose bool
	apiKey  string
	baseURL string

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "motiv",
	Short: "motiv - track your motivation and talk to your AI coach",
	Long: `motiv is a terminal client for the metamotivation service.

Record daily mood check-ins, fill in the motivation questionnaire, review
your progress, and chat with a coach that knows your numbers.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			// The TUI owns stdout; keep non-verbose logging quiet.
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		}
		zcfg.OutputPaths = []string{"stderr"}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp()
	},
}

// configCmd manages the stored configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the stored configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path, _ := config.ConfigFile()
		fmt.Printf("config file:  %s\n", path)
		fmt.Printf("backend url:  %s\n", cfg.BackendURL)
		fmt.Printf("theme:        %s\n", cfg.Theme)
		fmt.Printf("gemini key:   %s\n", maskKey(cfg.GeminiAPIKey))
		fmt.Printf("welcome back: %dh\n", cfg.WelcomeBackAfterHours)
		fmt.Printf("history cap:  %d turns\n", cfg.HistoryLimit)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := config.Load()
		cfg.GeminiAPIKey = args[0]
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Println("API key saved.")
		return nil
	},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url [url]",
	Short: "Store the backend base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := config.Load()
		cfg.BackendURL = args[0]
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Println("Backend URL saved.")
		return nil
	},
}

var configSetThemeCmd = &cobra.Command{
	Use:   "set-theme [light|dark]",
	Short: "Store the color theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != "light" && args[0] != "dark" {
			return fmt.Errorf("theme must be \"light\" or \"dark\", got %q", args[0])
		}
		cfg, _ := config.Load()
		cfg.Theme = args[0]
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Println("Theme saved.")
		return nil
	},
}

// logoutCmd clears the stored credential without starting the UI
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		if err := session.NewStore(dir).Clear(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// runApp wires the backend pieces and starts the bubbletea program.
func runApp() error {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
	}
	if apiKey != "" {
		cfg.GeminiAPIKey = apiKey
	}
	if baseURL != "" {
		cfg.BackendURL = baseURL
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve config dir: %w", err)
	}

	store := session.NewStore(dir)
	client := api.NewClient(cfg.BackendURL, store, logger)

	model := coach.NewGeminiClient(coach.DefaultGeminiConfig(cfg.GeminiAPIKey), logger)
	history := coach.NewHistory(dir, cfg.HistoryLimit)
	assembler := coach.NewAssembler(
		model,
		client,
		history,
		time.Duration(cfg.WelcomeBackAfterHours)*time.Hour,
		logger,
	)

	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))

	app := screens.NewApp(screens.Deps{
		API:     client,
		Session: store,
		Coach:   assembler,
		Styles:  styles,
		Log:     logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides config and env)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (overrides config and env)")

	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configSetThemeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(logoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
