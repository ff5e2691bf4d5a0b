// Package config loads the demo CLI's configuration with
// github.com/spf13/viper and github.com/spf13/pflag, exactly as the
// teacher's internal/config did for flex-bridge. Only the CLI depends on
// this package; a library consumer builds a flexcore.Options by hand (or
// calls Config.ClientOptions after loading one here) so pulling in viper
// is never required just to use the client.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/daveisadork/flexcore"
	"github.com/daveisadork/flexcore/internal/apilog"
	"github.com/daveisadork/flexcore/transport/webrtcdata"
)

// Config holds every flag/env/file-configurable value the demo CLI
// understands. Fields map 1:1 onto flags of the same name with dashes
// replacing underscores.
type Config struct {
	// HTTP (serve subcommand)
	HTTPPort   int    `mapstructure:"http-port"`
	StaticDir  string `mapstructure:"static-dir"`
	EnableCOI  bool   `mapstructure:"enable-coi"`
	EnableCORS bool   `mapstructure:"enable-cors"`

	// Discovery
	DiscoveryPort           int           `mapstructure:"discovery-port"`
	DiscoveryOfflineTimeout time.Duration `mapstructure:"discovery-offline-timeout"`

	// Session (spec §4.6's keepalive/command timeout, made configurable
	// per SPEC_FULL §5 "Configuration")
	KeepaliveInterval time.Duration `mapstructure:"keepalive-interval"`
	PingMissThreshold int           `mapstructure:"ping-miss-threshold"`
	CommandTimeout    time.Duration `mapstructure:"command-timeout"`

	// WebRTC / ICE, for the transport/webrtcdata data-plane alternative
	ICEPortStart int      `mapstructure:"ice-port-start"`
	ICEPortEnd   int      `mapstructure:"ice-port-end"`
	StunURLs     []string `mapstructure:"stun"`
	NAT1To1IPs   []string `mapstructure:"nat-1to1-ips"`

	// Diagnostics
	APILogFile string `mapstructure:"api-log-file"`
	LogLevel   string `mapstructure:"log-level"`

	// Config file path (optional)
	ConfigFile string `mapstructure:"-"`
}

func defaultAPILogPath() string {
	if _, err := os.Stat(filepath.Join("apps", "bridge")); err == nil {
		return filepath.Join("apps", "bridge", "messages.txt")
	}
	return "messages.txt"
}

// RegisterFlags declares every flag this package understands on fs (the
// teacher called pflag.NewFlagSet itself; here fs is supplied by the
// caller so it can be a cobra command's own flag set instead).
func RegisterFlags(fs *pflag.FlagSet) {
	fs.IntP("http-port", "p", 8080, "HTTP port to listen on (serve subcommand)")
	fs.String("static-dir", "", "Path to serve built UI (optional)")
	fs.Bool("enable-coi", true, "Enable Cross-Origin-Isolation headers (COOP/COEP)")
	fs.Bool("enable-cors", true, "Enable permissive CORS headers")

	fs.Int("discovery-port", 4992, "UDP discovery port")
	fs.Duration("discovery-offline-timeout", 0, "Offline timeout after the last beacon (0 = package default)")

	fs.Duration("keepalive-interval", 0, "Keepalive ping interval (0 = package default)")
	fs.Int("ping-miss-threshold", 0, "Missed-interval count before a session is forced disconnected (0 = package default)")
	fs.Duration("command-timeout", 0, "Per-command reply timeout (0 = package default)")

	fs.Int("ice-port-start", 50313, "Lowest UDP port for ICE (inclusive)")
	fs.Int("ice-port-end", 50413, "Highest UDP port for ICE (inclusive)")
	fs.StringSlice("stun", []string{
		"stun:stun.l.google.com:19302",
		"stun:stun.cloudflare.com:3478",
	}, "Comma-separated STUN URLs")
	fs.StringSlice("nat-1to1-ips", nil, "Optional public IPs for NAT 1:1 mapping (e.g. 203.0.113.2,2001:db8::2)")
	fs.String("api-log-file", defaultAPILogPath(), "Path to write raw TCP API messages (set empty to disable)")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("config", "", "Path to optional config file")
}

// Load binds an already-parsed flag set (a cobra command's fs.Flags(),
// with RegisterFlags applied before cobra parses argv) plus the
// FLEXCORE_-prefixed environment and an optional config file into a
// Config — the same viper precedence order (flag > env > file > default)
// the teacher's Load used, just driven by a caller-owned FlagSet instead
// of parsing os.Args itself.
func Load(fs *pflag.FlagSet) (Config, error) {
	var cfg Config
	v := viper.New()
	v.SetEnvPrefix("FLEXCORE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return cfg, fmt.Errorf("bind flags: %w", err)
	}

	cfgFile := v.GetString("config")
	if envFile := os.Getenv("FLEXCORE_CONFIG"); envFile != "" {
		cfgFile = envFile
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("flexcore")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err == nil {
		slog.Info("config: using config file", "path", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if cfg.ICEPortEnd < cfg.ICEPortStart {
		return cfg, fmt.Errorf("invalid ICE port range %d-%d", cfg.ICEPortStart, cfg.ICEPortEnd)
	}

	return cfg, nil
}

// ClientOptions converts the loaded Config into a flexcore.Options,
// restructured per SPEC_FULL §5 so a library consumer who already has a
// Config (or built an equivalent by hand) can pass it straight to
// flexcore.New without this package's viper/pflag dependency leaking
// into their own import graph. apiLog is passed in rather than built
// here since opening cfg.APILogFile can fail and the caller owns that
// file's lifetime (close it on shutdown).
func (c Config) ClientOptions(logger *slog.Logger, apiLog *apilog.Logger) flexcore.Options {
	return flexcore.Options{
		Logger:                  logger,
		DiscoveryPort:           c.DiscoveryPort,
		DiscoveryOfflineTimeout: c.DiscoveryOfflineTimeout,
		KeepaliveInterval:       c.KeepaliveInterval,
		PingMissThreshold:       c.PingMissThreshold,
		CommandTimeout:          c.CommandTimeout,
		APILog:                  apiLog,
	}
}

// WebRTCOptions converts the ICE/STUN/NAT fields into
// webrtcdata.Options. No subcommand in cmd/flexcore calls it.
func (c Config) WebRTCOptions(logger *slog.Logger) webrtcdata.Options {
	return webrtcdata.Options{
		Logger:       logger,
		ICEPortStart: c.ICEPortStart,
		ICEPortEnd:   c.ICEPortEnd,
		STUN:         c.StunURLs,
		NAT1To1IPs:   c.NAT1To1IPs,
	}
}
