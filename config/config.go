package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigPollInterval      = "poll-interval"
	ConfigClientDescription = "client-description"
	ConfigReferenceHost     = "reference-host"
	ConfigDefaultPort       = "default-port"
	ConfigConnectTimeout    = "connect-timeout"
	ConfigConnectAttempts   = "connect-attempts"
	ConfigNatsURL           = "nats-url"
	ConfigNatsSubjectPrefix = "nats-subject-prefix"
	ConfigArenaGames        = "arena-games"
	ConfigArenaThreads      = "arena-threads"
	ConfigArenaOutput       = "arena-output"
	ConfigArenaPlayers      = "arena-players"
	ConfigArenaGameLog      = "arena-game-log"
	ConfigArenaTurnLog      = "arena-turn-log"
	ConfigArenaAnalyze      = "arena-analyze"
	ConfigConfigFile        = "config"
)

// Config holds the settings of both binaries.
type Config struct {
	*viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigPollInterval, 50*time.Millisecond)
	v.SetDefault(ConfigClientDescription, "dotsboxes client")
	v.SetDefault(ConfigReferenceHost, "130.89.253.64")
	v.SetDefault(ConfigDefaultPort, 4567)
	v.SetDefault(ConfigConnectTimeout, 5*time.Second)
	v.SetDefault(ConfigConnectAttempts, 1)
	v.SetDefault(ConfigNatsURL, "")
	v.SetDefault(ConfigNatsSubjectPrefix, "dotsboxes.events")
	v.SetDefault(ConfigArenaGames, 1000)
	v.SetDefault(ConfigArenaThreads, 4)
	v.SetDefault(ConfigArenaOutput, "")
	v.SetDefault(ConfigArenaPlayers, []string{"smart", "naive"})
	v.SetDefault(ConfigArenaGameLog, "")
	v.SetDefault(ConfigArenaTurnLog, "")
	v.SetDefault(ConfigArenaAnalyze, "")
}

// DefaultConfig returns a configuration holding only the defaults. Useful
// for tests.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

// Load reads configuration from, in increasing order of precedence: the
// defaults, an optional YAML config file, DOTSBOXES_* environment variables
// and command-line flags.
func (c *Config) Load(args []string) error {
	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("dotsboxes", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "enable debug logging")
	fs.Duration(ConfigPollInterval, 50*time.Millisecond, "how long to wait for new states before polling for input")
	fs.String(ConfigClientDescription, "dotsboxes client", "description sent to the server in HELLO")
	fs.String(ConfigReferenceHost, "130.89.253.64", "address of the reference server")
	fs.Int(ConfigDefaultPort, 4567, "port used when none is entered")
	fs.Duration(ConfigConnectTimeout, 5*time.Second, "timeout for a single connection attempt")
	fs.Int(ConfigConnectAttempts, 1, "number of connection attempts before giving up")
	fs.String(ConfigNatsURL, "", "NATS server to publish game events to; empty disables")
	fs.String(ConfigNatsSubjectPrefix, "dotsboxes.events", "subject prefix for published game events")
	fs.Int(ConfigArenaGames, 1000, "number of games the arena plays")
	fs.Int(ConfigArenaThreads, 4, "number of arena worker goroutines")
	fs.String(ConfigArenaOutput, "", "file to write the arena summary to, as YAML")
	fs.StringSlice(ConfigArenaPlayers, []string{"smart", "naive"}, "the two strategies the arena pits against each other")
	fs.String(ConfigArenaGameLog, "", "file to write one CSV line per arena game to")
	fs.String(ConfigArenaTurnLog, "", "file to write one CSV line per arena move to")
	fs.String(ConfigArenaAnalyze, "", "summarize an existing arena game log instead of playing")
	fs.String(ConfigConfigFile, "", "path to a YAML config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	v.SetEnvPrefix("dotsboxes")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(ConfigConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.dotsboxes")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}
	c.Viper = v
	return nil
}

// SanitizedSettings returns all settings with credentials stripped from
// the NATS URL, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	if u, err := url.Parse(c.GetString(ConfigNatsURL)); err == nil && u.User != nil {
		u.User = url.User("redacted")
		settings[ConfigNatsURL] = u.String()
	}
	return settings
}
