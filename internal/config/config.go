package config

import (
	"os"
	"strings"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Ledger Ledger `yaml:"ledger"`
	Signer Signer `yaml:"signer"`
	Server Server `yaml:"server"`
}

type Ledger struct {
	NodeURL           string  `yaml:"nodeUrl"`
	ModuleAddress     string  `yaml:"moduleAddress"`
	Network           string  `yaml:"network"` // mainnet, testnet, devnet
	ViewRatePerSecond float64 `yaml:"viewRatePerSecond"`
	ViewBurst         int     `yaml:"viewBurst"`
}

type Signer struct {
	Endpoint string `yaml:"endpoint"`
}

type Server struct {
	Listen          string `yaml:"listen"`
	PostgresDsn     string `yaml:"postgresDsn"`
	RedisAddr       string `yaml:"redisAddr"`
	RedisDB         int    `yaml:"redisDB"`
	MemcachedAddr   string `yaml:"memcachedAddr"`
	SignalChannel   string `yaml:"signalChannel"`
	EnableTrace     bool   `yaml:"enableTrace"`
	TraceEndpoint   string `yaml:"traceEndpoint"`
	LogMode         string `yaml:"logMode"`
	RelayStatistics bool   `yaml:"relayStatistics"`
}

const (
	EnvModuleAddress = "LOGISTICS_MODULE_ADDRESS"
	EnvNodeURL       = "LOGISTICS_NODE_URL"
)

var defaultNodeURLs = map[string]string{
	"mainnet": "https://fullnode.mainnet.aptoslabs.com",
	"testnet": "https://fullnode.testnet.aptoslabs.com",
	"devnet":  "https://fullnode.devnet.aptoslabs.com",
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, errors.Wrapf(err, "decode %s", path)
	}

	config.applyEnv()
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvModuleAddress)); v != "" {
		c.Ledger.ModuleAddress = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvNodeURL)); v != "" {
		c.Ledger.NodeURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Ledger.Network == "" {
		c.Ledger.Network = "testnet"
	}
	if c.Ledger.NodeURL == "" {
		c.Ledger.NodeURL = defaultNodeURLs[c.Ledger.Network]
	}
	if c.Ledger.ViewBurst <= 0 {
		c.Ledger.ViewBurst = 5
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Server.LogMode == "" {
		c.Server.LogMode = "dev"
	}
}

// ModuleAddress is empty when neither the file nor the environment set it.
// Ledger operations fail with a configuration error in that case.
func (c Config) ModuleAddress() string {
	return strings.TrimSpace(c.Ledger.ModuleAddress)
}
