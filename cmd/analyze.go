package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Rorical/RoriVoice/internal/config"
	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/ui/components"
	"github.com/Rorical/RoriVoice/ui/styles"
)

type analyzeOptions struct {
	file     string
	base64   string
	language string
	format   string
	endpoint string
	apiKey   string
	timeout  time.Duration
	asJSON   bool
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one clip without the interactive form",
	Long: `Send a single clip to the detection service and print the verdict.
Use --file for an audio file or --base64 for an encoded payload ("-" reads stdin).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, closer := setupLogging(cfg, verboseFlag)
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runAnalyze(ctx, cfg, analyzeOpts, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.file, "file", "f", "", "audio file to encode and send")
	f.StringVarP(&analyzeOpts.base64, "base64", "b", "", `Base64 payload, data URL prefix allowed ("-" reads stdin)`)
	f.StringVarP(&analyzeOpts.language, "language", "l", "", "spoken language (defaults to the profile's)")
	f.StringVar(&analyzeOpts.format, "format", "", "audio format (defaults to the file extension or the profile's)")
	f.StringVar(&analyzeOpts.endpoint, "endpoint", "", "detection endpoint URL (defaults to the profile's)")
	f.StringVar(&analyzeOpts.apiKey, "api-key", "", "API key (defaults to the profile's)")
	f.DurationVar(&analyzeOpts.timeout, "timeout", 0, "request timeout (defaults to the profile's)")
	f.BoolVar(&analyzeOpts.asJSON, "json", false, "print the raw result as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, cfg *config.Config, opts analyzeOptions, stdin io.Reader, stdout io.Writer, log zerolog.Logger) error {
	profile := cfg.Current()
	policy := cfg.DetectionPolicy()

	in, err := buildInput(opts, profile, stdin)
	if err != nil {
		return err
	}
	req, err := detection.NewRequest(in, policy)
	if err != nil {
		return errors.New(detection.UserMessage(err))
	}

	timeout := profile.Timeout.ToDuration()
	if opts.timeout > 0 {
		timeout = opts.timeout
	}
	client := detection.NewClient(detection.Config{
		Timeout:              timeout,
		RequireSuccessStatus: policy.RequireSuccessStatus,
	}, log)

	res, err := client.Analyze(ctx, req)
	if err != nil {
		return errors.New(detection.UserMessage(err))
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(stdout, components.RenderResult(res, styles.DefaultWidth))
	return nil
}

// buildInput merges flags over the profile. Exactly one of --file and
// --base64 must be given.
func buildInput(opts analyzeOptions, profile config.Profile, stdin io.Reader) (detection.Input, error) {
	in := detection.Input{
		Language:    firstNonEmpty(opts.language, profile.Language),
		AudioFormat: firstNonEmpty(opts.format, profile.AudioFormat),
		Endpoint:    firstNonEmpty(opts.endpoint, profile.Endpoint),
		APIKey:      firstNonEmpty(opts.apiKey, profile.APIKey),
	}

	switch {
	case opts.file != "" && opts.base64 != "":
		return in, errors.New("use either --file or --base64, not both")
	case opts.file != "":
		b64, err := detection.EncodeFile(opts.file)
		if err != nil {
			return in, err
		}
		in.Base64 = b64
		if opts.format == "" {
			in.AudioFormat = detection.FormatFromPath(opts.file)
		}
	case opts.base64 == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return in, fmt.Errorf("read stdin: %w", err)
		}
		in.Base64 = string(data)
	case opts.base64 != "":
		in.Base64 = opts.base64
	default:
		return in, errors.New("nothing to analyze: pass --file or --base64")
	}
	return in, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
