package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"iptoasn/internal/app"
	"iptoasn/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lookup webservice",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyServeFlags(cmd)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Run(ctx, settings)
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("listen", config.DefaultListenAddr, "address to listen on")
	f.String("dburl", config.DefaultDatabaseURL, "database URL (http, https or file)")
	f.Int("refresh", int(config.DefaultRefreshInterval/time.Minute), "minutes between dataset refreshes, 0 disables")
	f.String("cache", config.DefaultCacheFile, "file keeping the last good download")
	f.Int("max-conns", 0, "maximum concurrent connections, 0 means unlimited")
	f.String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
}

// applyServeFlags folds changed flags over the environment-derived settings,
// so flags win over .env and environment variables.
func applyServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		settings.ListenAddr, _ = flags.GetString("listen")
	}
	if flags.Changed("dburl") {
		settings.DatabaseURL, _ = flags.GetString("dburl")
	}
	if flags.Changed("refresh") {
		mins, _ := flags.GetInt("refresh")
		settings.RefreshInterval = time.Duration(mins) * time.Minute
	}
	if flags.Changed("cache") {
		settings.CacheFile, _ = flags.GetString("cache")
	}
	if flags.Changed("max-conns") {
		settings.MaxConns, _ = flags.GetInt("max-conns")
	}
	if flags.Changed("log-level") {
		raw, _ := flags.GetString("log-level")
		lvl, err := log.ParseLevel(raw)
		if err != nil {
			log.Warn("invalid log level flag", "value", raw)
		} else {
			settings.LogLevel = lvl
			log.SetLevel(lvl)
		}
	}
}
