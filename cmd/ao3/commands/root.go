package commands

import (
	"ao3-scraper/lib/configutil"
	"ao3-scraper/lib/restyutil"
	"ao3-scraper/lib/telemetry"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

var tel telemetry.Telemetry

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "ao3.json5", "The config file, looked for in parent directories and then the user config directory.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every http exchange to this directory, needs --verbose.")
}

var rootCmd = &cobra.Command{
	Use:           "ao3",
	Short:         "ao3 reads works, bookmarks and reading history from Archive of Our Own.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}

		tel, err = telemetry.Setup(cmd.Context(), "ao3", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		var dump restyutil.InstrumentOutput
		if *dumpHttp != "" {
			output, err := restyutil.NewFilesystemOutput(*dumpHttp)
			if err != nil {
				return fmt.Errorf("dump http: %w", err)
			}
			dump = output
		}

		cmd.SetContext(withEnv(cmd.Context(), &env{
			config:     cfg,
			dumpOutput: dump,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func loadConfig(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	// an explicit path is read as is, a bare name is searched for
	if filepath.Base(path) != path {
		cfg, err = configutil.ReadConfig[Config](path)
	} else {
		cfg, err = configutil.ReadRecursively[Config](path)
	}
	if os.IsNotExist(err) {
		slog.Debug("no config file found, using defaults", "config", path)
		return cfg.withDefaults(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg.withDefaults(), nil
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
