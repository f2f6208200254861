package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"werewolf/internal/domain"
	"werewolf/internal/engine"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Game      GameConfig
	Logging   LoggingConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Env  string `env:"ENV"  envDefault:"development"` // "development" or "production"
}

// GameConfig holds the lobby limits and match timings
type GameConfig struct {
	MinPlayers        int           `env:"MIN_PLAYERS"        envDefault:"5"`
	MaxPlayers        int           `env:"MAX_PLAYERS"        envDefault:"24"`
	PromptTimeout     time.Duration `env:"PROMPT_TIMEOUT"     envDefault:"60s"`
	NominationTimeout time.Duration `env:"NOMINATION_TIMEOUT" envDefault:"90s"`
	VotingTimeout     time.Duration `env:"VOTING_TIMEOUT"     envDefault:"60s"`
	MaxNominations    int           `env:"MAX_NOMINATIONS"    envDefault:"10"`
	AFKStrikes        int           `env:"AFK_STRIKES"        envDefault:"3"`
	WitchDelayMin     time.Duration `env:"WITCH_DELAY_MIN"    envDefault:"2s"`
	WitchDelayMax     time.Duration `env:"WITCH_DELAY_MAX"    envDefault:"8s"`
	Language          string        `env:"LANGUAGE"           envDefault:"en"`
	RoomCodeLength    int           `env:"ROOM_CODE_LENGTH"   envDefault:"6"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// StorageConfig points at the snapshot database. An empty path disables it.
type StorageConfig struct {
	Path string `env:"STORAGE_PATH" envDefault:"data/werewolf.db"`
}

// TelemetryConfig controls OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED"  envDefault:"true"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"werewolf"`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Game.MinPlayers > cfg.Game.MaxPlayers {
		return nil, fmt.Errorf("MIN_PLAYERS %d exceeds MAX_PLAYERS %d", cfg.Game.MinPlayers, cfg.Game.MaxPlayers)
	}
	if cfg.Game.WitchDelayMin > cfg.Game.WitchDelayMax {
		return nil, fmt.Errorf("WITCH_DELAY_MIN %s exceeds WITCH_DELAY_MAX %s", cfg.Game.WitchDelayMin, cfg.Game.WitchDelayMax)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LobbySettings returns the room limits for new lobbies
func (c *Config) LobbySettings() domain.LobbySettings {
	return domain.LobbySettings{
		MinPlayers: c.Game.MinPlayers,
		MaxPlayers: c.Game.MaxPlayers,
	}
}

// EngineOptions returns the match options for new engines
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		PromptTimeout:     c.Game.PromptTimeout,
		NominationTimeout: c.Game.NominationTimeout,
		VotingTimeout:     c.Game.VotingTimeout,
		MaxNominations:    c.Game.MaxNominations,
		AFKStrikes:        c.Game.AFKStrikes,
		WitchDelayMin:     c.Game.WitchDelayMin,
		WitchDelayMax:     c.Game.WitchDelayMax,
		Language:          c.Game.Language,
	}
}
