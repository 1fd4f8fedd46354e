package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Defaults mirror the public iptoasn.com export and a conservative local
// listen address. Everything can be overridden per environment variable or,
// for the server, per command line flag.
const (
	DefaultListenAddr      = "127.0.0.1:53661"
	DefaultDatabaseURL     = "https://iptoasn.com/data/ip2asn-combined.tsv.gz"
	DefaultRefreshInterval = 60 * time.Minute
	DefaultCacheFile       = "cache/ip2asn-combined.tsv.gz"
)

// Settings carries everything the service needs to start.
type Settings struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string

	// DatabaseURL locates the ip2asn TSV export, gzip-compressed. http,
	// https and file schemes are supported.
	DatabaseURL string

	// RefreshInterval is the pause between dataset refreshes. Zero or
	// negative disables periodic refreshing after the initial load.
	RefreshInterval time.Duration

	// CacheFile is where the most recent good download is kept so a
	// restart can serve data while upstream is unreachable.
	CacheFile string

	// MaxConns caps concurrently served connections; zero means no cap.
	MaxConns int

	LogLevel log.Level
}

// Load reads settings from the environment, preferring a .env file when one
// exists. Invalid values are logged and replaced by their defaults.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using system environment")
	}

	s := Settings{
		ListenAddr:      DefaultListenAddr,
		DatabaseURL:     DefaultDatabaseURL,
		RefreshInterval: DefaultRefreshInterval,
		CacheFile:       DefaultCacheFile,
		LogLevel:        log.InfoLevel,
	}

	if v := os.Getenv("IPTOASN_LISTEN"); v != "" {
		s.ListenAddr = v
	}
	if v := os.Getenv("IPTOASN_DB_URL"); v != "" {
		s.DatabaseURL = v
	}
	if v := os.Getenv("IPTOASN_CACHE_FILE"); v != "" {
		s.CacheFile = v
	}
	if mins, ok := readInt("IPTOASN_REFRESH_MINUTES"); ok {
		s.RefreshInterval = time.Duration(mins) * time.Minute
	}
	if n, ok := readInt("IPTOASN_MAX_CONNS"); ok {
		s.MaxConns = n
	}
	if v := os.Getenv("IPTOASN_LOG_LEVEL"); v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			log.Warn("invalid log level override", "env", "IPTOASN_LOG_LEVEL", "value", v)
		} else {
			s.LogLevel = lvl
		}
	}

	return s
}

func readInt(envKey string) (int, bool) {
	raw := os.Getenv(envKey)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Warn("invalid numeric override", "env", envKey, "value", raw)
		return 0, false
	}
	return n, true
}
