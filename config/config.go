package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/CIDgravity/snakelet"
	"github.com/joho/godotenv"
)

// config structure
type Config struct {
	API    APIConfig    `mapstructure:"API"`
	Github GithubConfig `mapstructure:"GITHUB"`
	Tasks  TasksConfig  `mapstructure:"TASKS"`
	Logs   LogsConfig   `mapstructure:"LOGS"`
}

type APIConfig struct {
	ListenPort string `mapstructure:"ListenPort"`
	Env        string `mapstructure:"Env"` // development | production | test - only affects logging and gin mode
}

type GithubConfig struct {
	Token string `mapstructure:"Token"` // optional: raises the rate limit from 60 to 5000 requests per hour
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJson bool   `mapstructure:"OutputLogsAsJson"`
}

// Load reads config.toml on top of the defaults, then applies the
// environment overlay (a local .env file is honored first, so the token
// never has to live in the config file)
func Load() (*Config, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))

	if err != nil {
		return nil, err
	}

	// check config file exists
	configFilePath := dir + "/config/config.toml"

	if _, err := os.Stat(dir + "/config/config.toml"); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat("config/config.toml"); errors.Is(err, os.ErrNotExist) {
			configFilePath = ""
		} else {
			configFilePath = "config/config.toml"
		}
	}

	// load default and config file content
	cfg := GetDefault()

	if configFilePath != "" {
		if _, err := snakelet.InitAndLoad(cfg, configFilePath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort: "5000",
			Env:        "development",
		},
		Github: GithubConfig{
			Token: "",
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJson: false,
		},
	}
}

// applyEnvOverrides lets GITHUB_TOKEN and APP_ENV take precedence over
// the config file, so deployments can inject the credential without
// touching config.toml
func (cfg *Config) applyEnvOverrides() {
	_ = godotenv.Load()

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Github.Token = token
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.API.Env = env
	}

	// production and test default to info level unless the file says otherwise
	if cfg.API.Env != "development" && cfg.Logs.Level == "debug" {
		cfg.Logs.Level = "info"
	}
}
