package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Target struct {
		Path string `yaml:"path"`
	} `yaml:"target"`
	Transfer struct {
		BufferSize  int64 `yaml:"bufferSize"`
		PatternByte uint8 `yaml:"patternByte"`
		Iterations  int   `yaml:"iterations"`
	} `yaml:"transfer"`
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Metrics struct {
		ListenAddress string `yaml:"listenAddress"`
	} `yaml:"metrics"`
	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`
}

// DefaultConfig returns the configuration used when no file is given:
// a 4 KiB transfer of 0xAB against test_gds.bin.
func DefaultConfig() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Target.Path == "" {
		c.Target.Path = "test_gds.bin"
	}
	if c.Transfer.BufferSize == 0 {
		c.Transfer.BufferSize = 4 * 1024
	}
	if c.Transfer.PatternByte == 0 {
		c.Transfer.PatternByte = 0xAB
	}
	if c.Transfer.Iterations == 0 {
		c.Transfer.Iterations = 1
	}
	if c.Logger.Verbosity == "" {
		c.Logger.Verbosity = "info"
	}
	if c.History.Path == "" {
		c.History.Path = "gdsbench.db"
	}
}
