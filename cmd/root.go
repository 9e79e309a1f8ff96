package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Rorical/RoriVoice/internal/app"
	"github.com/Rorical/RoriVoice/internal/config"
	"github.com/Rorical/RoriVoice/internal/logging"
)

var (
	profileFlag string
	verboseFlag bool
	rootFile    string
)

var rootCmd = &cobra.Command{
	Use:   "rorivoice",
	Short: "Detect AI-generated voices from the terminal",
	Long: `RoriVoice sends Base64 audio clips to a voice detection service and
shows whether the voice is human or AI generated, with a confidence meter.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine.
		_ = godotenv.Load()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runForm(cfg, rootFile)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "profile to use for this run")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "also log to stderr (non-interactive commands)")
	rootCmd.Flags().StringVarP(&rootFile, "file", "f", "", "audio file to load into the form")

	rootCmd.AddCommand(profileCmd)
}

// loadConfig reads the config file and applies --profile.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if profileFlag != "" {
		if err := cfg.UseProfile(profileFlag); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogging never fails: if the log file cannot be opened the
// command carries on without logs.
func setupLogging(cfg *config.Config, console bool) (zerolog.Logger, io.Closer) {
	logger, closer, err := logging.Setup(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.LogPath(),
		Console: console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	return logger, closer
}

func runForm(cfg *config.Config, filePath string) error {
	logger, closer := setupLogging(cfg, false)
	defer closer.Close()

	application, err := app.NewApplication(cfg, logger, app.Options{FilePath: filePath})
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}
