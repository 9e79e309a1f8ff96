package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Rorical/RoriVoice/internal/config"
	"github.com/Rorical/RoriVoice/internal/detection"
)

const healthTimeout = 30 * time.Second

var healthAll bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the detection service is up",
	Long: `Probe the /health route of the active profile's service, or of every
profile with --all. A sleeping free-tier backend can take a minute to answer.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, closer := setupLogging(cfg, verboseFlag)
		defer closer.Close()

		names := []string{cfg.ActiveProfile}
		if healthAll {
			names = cfg.ProfileNames()
		}
		return runHealth(cmd.Context(), cfg, names, cmd.OutOrStdout(), logger)
	},
}

func init() {
	healthCmd.Flags().BoolVarP(&healthAll, "all", "a", false, "probe every profile")
	rootCmd.AddCommand(healthCmd)
}

type healthReport struct {
	profile string
	status  detection.HealthStatus
	err     error
}

// runHealth probes the named profiles concurrently and prints one line
// per profile in the given order. It fails if any probe failed.
func runHealth(ctx context.Context, cfg *config.Config, names []string, out io.Writer, log zerolog.Logger) error {
	reports := make([]healthReport, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		endpoint := cfg.Profiles[name].Endpoint
		if name == cfg.ActiveProfile {
			endpoint = cfg.GetEndpoint()
		}
		g.Go(func() error {
			client := detection.NewClient(detection.Config{Timeout: healthTimeout}, log)
			hs, err := client.Health(gctx, endpoint)
			reports[i] = healthReport{profile: name, status: hs, err: err}
			log.Debug().Str("profile", name).Str("url", hs.URL).Err(err).Msg("health probe")
			// Probes are independent; one failure must not cancel the rest.
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range reports {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%-12s DOWN  %s (%s)\n", r.profile, detection.UserMessage(r.err), r.status.URL)
			continue
		}
		fmt.Fprintf(out, "%-12s UP    %s (%s)\n", r.profile, r.status.Status, r.status.URL)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d services unhealthy", failed, len(reports))
	}
	return nil
}
