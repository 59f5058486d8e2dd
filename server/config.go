package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config 服务端配置（TOML），未出现的字段使用 DefaultConfig 中的默认值
type Config struct {
	Server  ServerConfig  `toml:"server"`
	World   WorldConfig   `toml:"world"`
	Tick    TickConfig    `toml:"tick"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
	Addr string `toml:"addr"`
}

type WorldConfig struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	ViewBaseX  float64 `toml:"view_base_x"`
	ViewBaseY  float64 `toml:"view_base_y"`
	FoodTarget int     `toml:"food_target"` // 世界中保持的食物数量
	FoodSize   float64 `toml:"food_size"`
	SpawnFile  string  `toml:"spawn_file"` // 可选，YAML 食物簇
}

type TickConfig struct {
	Rate             time.Duration `toml:"rate"`
	ViewRefreshTicks int           `toml:"view_refresh_ticks"`
	SnakeStep        float64       `toml:"snake_step"`
	EatRadiusFactor  float64       `toml:"eat_radius_factor"` // 吞食半径 = 系数 * 蛇尺寸
	SnakeStartSize   float64       `toml:"snake_start_size"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "json" or "console"
	File       string `toml:"file"`   // 为空时输出到 stdout
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// LoadConfig path 为空时直接返回默认配置
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "clither-arena",
			Addr: ":8080",
		},
		World: WorldConfig{
			Width:      2000,
			Height:     2000,
			ViewBaseX:  100,
			ViewBaseY:  100,
			FoodTarget: 400,
			FoodSize:   1,
		},
		Tick: TickConfig{
			Rate:             50 * time.Millisecond,
			ViewRefreshTicks: DefaultViewRefreshTicks,
			SnakeStep:        2,
			EatRadiusFactor:  0.5,
			SnakeStartSize:   10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			File:       "app.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

var errInvalidConfig = errors.New("invalid config")

func (c *Config) Validate() error {
	switch {
	case c.World.Width <= 0 || c.World.Height <= 0:
		return fmt.Errorf("%w: world size must be positive", errInvalidConfig)
	case c.World.ViewBaseX <= 0 || c.World.ViewBaseY <= 0:
		return fmt.Errorf("%w: view base must be positive", errInvalidConfig)
	case c.World.FoodTarget < 0:
		return fmt.Errorf("%w: food_target must not be negative", errInvalidConfig)
	case c.Tick.Rate <= 0:
		return fmt.Errorf("%w: tick rate must be positive", errInvalidConfig)
	case c.Tick.ViewRefreshTicks < 1:
		return fmt.Errorf("%w: view_refresh_ticks must be at least 1", errInvalidConfig)
	case c.Tick.SnakeStep < 0:
		return fmt.Errorf("%w: snake_step must not be negative", errInvalidConfig)
	}
	return nil
}
