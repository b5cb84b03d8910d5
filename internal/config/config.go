package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Debug     bool     `yaml:"debug"`
	AppSecret string   `yaml:"app_secret" env:"APP_SECRET" env-required:"true"`
	Limiter   Limiter  `yaml:"limiter"`
	Server    Server   `yaml:"server"`
	DB        DB       `yaml:"db"`
	Metadata  Metadata `yaml:"metadata"`
	Search    Search   `yaml:"search"`
	Tasks     Tasks    `yaml:"tasks"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Server struct {
	Port string `yaml:"port" env-default:"8000"`
	Host string `yaml:"host" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"2s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"2s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type DB struct {
	Dsn             string        `yaml:"dsn" env-required:"true"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
}

type Metadata struct {
	BaseURL string        `yaml:"base_url" env-required:"true"`
	APIKey  string        `yaml:"api_key" env:"METADATA_API_KEY" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type Search struct {
	DebounceWindow time.Duration `yaml:"debounce_window" env-default:"500ms"`
	SessionTTL     time.Duration `yaml:"session_ttl" env-default:"5m"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"4"`
	QueueSize int `yaml:"queue_size" env-default:"64"`
}

func MustLoad(configPath string) *Config {
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic(fmt.Errorf("config file %s not found", configPath))
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic(err)
	}

	return &cfg
}
