package comps

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"gopkg.in/yaml.v3"
)

// Config is the file form of the manager options.
//
//	log_level: debug
//	encoding: little_endian
//	lazy: true
//	queue_size: 512
type Config struct {
	LogLevel  string `yaml:"log_level"`
	Encoding  string `yaml:"encoding"`
	Lazy      bool   `yaml:"lazy"`
	QueueSize int    `yaml:"queue_size"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()

	c, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return c, nil
}

// LoadYAML reads a config from r. An empty input yields the zero Config.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return nil, err
	}
	if _, err := c.encoding(); err != nil {
		return nil, err
	}
	if _, err := c.level(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Options converts the config to manager options. Unset fields keep the
// defaults. A log level installs a text logger on stderr.
func (c *Config) Options() []Option {
	opts := []Option{WithLazyInit(c.Lazy), WithQueueSize(c.QueueSize)}
	if enc, err := c.encoding(); err == nil && enc != nil {
		opts = append(opts, WithEncoding(enc))
	}
	if lvl, err := c.level(); err == nil && c.LogLevel != "" {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
		opts = append(opts, WithLogger(slog.New(h)))
	}
	return opts
}

func (c *Config) encoding() (nbt.Encoding, error) {
	switch strings.ToLower(c.Encoding) {
	case "":
		return nil, nil
	case "little_endian":
		return nbt.LittleEndian, nil
	case "network", "network_little_endian":
		return nbt.NetworkLittleEndian, nil
	case "big_endian":
		return nbt.BigEndian, nil
	}
	return nil, fmt.Errorf("unknown nbt encoding %q", c.Encoding)
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
