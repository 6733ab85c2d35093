package main

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/vitwit/paygate/types"
)

const (
	defaultPort     = 8080
	defaultNetwork  = "base-sepolia"
	defaultMode     = "production"
	defaultLogLevel = "info"
	defaultCacheTTL = 60 // minutes
)

type Config struct {
	Port     int    `yaml:"port" envconfig:"PORT"`
	Mode     string `yaml:"mode" envconfig:"MODE"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	Network string `yaml:"network" envconfig:"NETWORK"`
	RPCURL  string `yaml:"rpc_url" envconfig:"RPC_URL"`

	Recipient string `yaml:"recipient" envconfig:"RECIPIENT"`
	Currency  string `yaml:"currency" envconfig:"CURRENCY"`

	// Prices maps route names to USDC amounts, e.g. balance: "0.01".
	Prices map[string]string `yaml:"prices" envconfig:"PRICES"`

	DemoAllowList []string `yaml:"demo_allow_list" envconfig:"DEMO_ALLOW_LIST"`

	CacheSize       int `yaml:"cache_size" envconfig:"CACHE_SIZE"`
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" envconfig:"CACHE_TTL_MINUTES"`
}

// Load reads configuration from a YAML file.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	c.applyDefaults()
	return c.validate()
}

// LoadFromEnv reads configuration from the environment.
func (c *Config) LoadFromEnv() error {
	if err := envconfig.Process("gateway", c); err != nil {
		return fmt.Errorf("load config from env: %w", err)
	}

	c.applyDefaults()
	return c.validate()
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Mode == "" {
		c.Mode = defaultMode
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Network == "" {
		c.Network = defaultNetwork
	}
	if c.Currency == "" {
		c.Currency = "USDC"
	}
	if c.CacheTTLMinutes == 0 {
		c.CacheTTLMinutes = defaultCacheTTL
	}
}

func (c *Config) validate() error {
	if c.Mode != "development" && c.Mode != "production" {
		return fmt.Errorf("mode must be 'development' or 'production', got %q", c.Mode)
	}

	if !types.Network(c.Network).Known() {
		return fmt.Errorf("unsupported network %q", c.Network)
	}

	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}

	if c.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	return nil
}

// priceFor returns the configured price for a route name, defaulting
// to 0.01.
func (c *Config) priceFor(route string) string {
	if price, ok := c.Prices[route]; ok {
		return price
	}
	return "0.01"
}
