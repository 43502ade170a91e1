// Package config provides Viper-based configuration loading for the Cloud Ranger game.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GameConfig holds the settings for a new playthrough.
type GameConfig struct {
	// Difficulty is one of "easy", "normal", "hard".
	Difficulty string `mapstructure:"difficulty"`
	// Seed seeds the dice source. Zero selects the crypto-backed source.
	Seed int64 `mapstructure:"seed"`
	// Specialization is the starting specialization id.
	Specialization string `mapstructure:"specialization"`
	// PlayerName is the ranger's display name.
	PlayerName string `mapstructure:"player_name"`
	// VictoryQuest is the quest id whose completion wins the game.
	VictoryQuest string `mapstructure:"victory_quest"`
}

// ContentConfig holds the location of the YAML content tables.
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// StorageConfig selects the snapshot backend and the leaderboard file.
type StorageConfig struct {
	// Backend is one of "file", "redis", "postgres".
	Backend string `mapstructure:"backend"`
	// SaveDir is the directory used by the file backend.
	SaveDir string `mapstructure:"save_dir"`
	// LeaderboardPath is the flat leaderboard file.
	LeaderboardPath string `mapstructure:"leaderboard_path"`
	// AutosaveName is the save slot written on interrupt.
	AutosaveName string `mapstructure:"autosave_name"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds the redis snapshot store settings.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr" or a file path. The game owns stdout.
	Output string `mapstructure:"output"`
}

// PaletteConfig names the colors the console presenter uses.
// Values are lipgloss color strings ("#RRGGBB" or ANSI numbers).
type PaletteConfig struct {
	Title   string `mapstructure:"title"`
	Text    string `mapstructure:"text"`
	Info    string `mapstructure:"info"`
	Success string `mapstructure:"success"`
	Warning string `mapstructure:"warning"`
	Error   string `mapstructure:"error"`
	Accent  string `mapstructure:"accent"`
	Muted   string `mapstructure:"muted"`
	// Width is the wrap width for descriptions.
	Width int `mapstructure:"width"`
}

// Config is the top-level application configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Content  ContentConfig  `mapstructure:"content"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Palette  PaletteConfig  `mapstructure:"palette"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Storage.Backend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr must not be empty when storage.backend is redis")
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Palette.Width < 20 {
		errs = append(errs, fmt.Sprintf("palette.width must be >= 20, got %d", c.Palette.Width))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	validDifficulty := map[string]bool{"easy": true, "normal": true, "hard": true}
	if !validDifficulty[g.Difficulty] {
		errs = append(errs, fmt.Sprintf("game.difficulty must be one of [easy, normal, hard], got %q", g.Difficulty))
	}
	if g.VictoryQuest == "" {
		errs = append(errs, "game.victory_quest must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	validBackends := map[string]bool{"file": true, "redis": true, "postgres": true}
	if !validBackends[s.Backend] {
		errs = append(errs, fmt.Sprintf("storage.backend must be one of [file, redis, postgres], got %q", s.Backend))
	}
	if s.Backend == "file" && s.SaveDir == "" {
		errs = append(errs, "storage.save_dir must not be empty when storage.backend is file")
	}
	if s.LeaderboardPath == "" {
		errs = append(errs, "storage.leaderboard_path must not be empty")
	}
	if s.AutosaveName == "" {
		errs = append(errs, "storage.autosave_name must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	bindEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the validated configuration built from defaults and
// CLOUDRANGER_ environment overrides alone.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Default() (Config, error) {
	v := viper.New()
	bindEnv(v)
	setDefaults(v)
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CLOUDRANGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.difficulty", "normal")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.specialization", "security_specialist")
	v.SetDefault("game.player_name", "Ranger")
	v.SetDefault("game.victory_quest", "shadow_admin")

	v.SetDefault("content.dir", "content")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.save_dir", ".saves")
	v.SetDefault("storage.leaderboard_path", "leaderboard.txt")
	v.SetDefault("storage.autosave_name", "autosave")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cloudranger")
	v.SetDefault("database.password", "cloudranger")
	v.SetDefault("database.name", "cloudranger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "cloudranger")
	v.SetDefault("redis.timeout", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("palette.title", "#00D7FF")
	v.SetDefault("palette.text", "#E4E4E4")
	v.SetDefault("palette.info", "#5FAFFF")
	v.SetDefault("palette.success", "#5FD75F")
	v.SetDefault("palette.warning", "#FFD75F")
	v.SetDefault("palette.error", "#FF5F5F")
	v.SetDefault("palette.accent", "#D787FF")
	v.SetDefault("palette.muted", "#808080")
	v.SetDefault("palette.width", 78)
}
