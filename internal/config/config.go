package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// ProviderConfig configures the delivery provider client.
type ProviderConfig struct {
	APIKey         string     `yaml:"api_key"`
	BaseURL        string     `yaml:"base_url"`
	TimeoutSeconds int        `yaml:"timeout_seconds"`
	DoNotReply     DoNotReply `yaml:"do_not_reply"`
}

// DoNotReply is the fixed sender identity used when a recipient spec
// asks for a no-reply send.
type DoNotReply struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// AuthConfig restricts which authenticated senders may dispatch.
type AuthConfig struct {
	AllowedDomains []string `yaml:"allowed_domains"`
}

type Config struct {
	DB       DBConfig       `yaml:"db"`
	MQ       MQConfig       `yaml:"mq"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Auth     AuthConfig     `yaml:"auth"`
}

// Load loads base.yaml plus the CONFIG_ENV-specific yaml from CONFIG_DIR,
// then applies environment variable overrides.
func Load() (*Config, error) {
	env := getEnv("CONFIG_ENV", "local")
	configDir := getEnv("CONFIG_DIR", "config")

	cfg := &Config{}

	if err := loadYAMLInto(filepath.Join(configDir, "base.yaml"), cfg); err != nil {
		return nil, fmt.Errorf("failed to load base.yaml: %w", err)
	}

	if env != "" && env != "base" {
		envFile := filepath.Join(configDir, fmt.Sprintf("%s.yaml", env))
		if _, err := os.Stat(envFile); err == nil {
			if err := loadYAMLInto(envFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load %s.yaml: %w", env, err)
			}
		}
	}

	overrideFromEnv(cfg)
	return cfg, nil
}

func loadYAMLInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func overrideFromEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if key := os.Getenv("PROVIDER_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if url := os.Getenv("PROVIDER_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if domains := os.Getenv("AUTH_ALLOWED_DOMAINS"); domains != "" {
		cfg.Auth.AllowedDomains = strings.Split(domains, ",")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
