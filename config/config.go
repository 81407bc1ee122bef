// Package config loads the furigana service configuration: built-in
// defaults, then an optional YAML file, then FURIGANA_* environment
// variables.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override, e.g.
// FURIGANA_SERVER_PORT=8080 sets server.port.
const EnvPrefix = "FURIGANA_"

// Config is the root configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"       yaml:"server"`
	Log          LogConfig          `koanf:"log"          yaml:"log"`
	Tokenizer    TokenizerConfig    `koanf:"tokenizer"    yaml:"tokenizer"`
	Dictionaries DictionariesConfig `koanf:"dictionaries" yaml:"dictionaries"`
	Cache        CacheConfig        `koanf:"cache"        yaml:"cache"`
	Client       ClientConfig       `koanf:"client"       yaml:"client"`
}

// ServerConfig configures the HTTP backend.
type ServerConfig struct {
	Host string `koanf:"host" yaml:"host" validate:"required"`
	Port int    `koanf:"port" yaml:"port" validate:"min=1,max=65535"`
	// CORSOrigins is "*" or a comma-separated list of origins.
	CORSOrigins     string        `koanf:"cors_origins"     yaml:"cors_origins"     validate:"required"`
	MaxTextLength   int           `koanf:"max_text_length"  yaml:"max_text_length"  validate:"min=1"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Origins splits CORSOrigins into trimmed, non-empty entries.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LogConfig configures the default logger.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"  yaml:"json"`
}

// TokenizerConfig selects the morphological analyser setup.
type TokenizerConfig struct {
	Dict             string `koanf:"dict"              yaml:"dict"              validate:"oneof=ipa uni"`
	MergeAuxiliaries bool   `koanf:"merge_auxiliaries" yaml:"merge_auxiliaries"`
	// Workers bounds how many lines of one request are annotated at once.
	Workers int `koanf:"workers" yaml:"workers" validate:"min=1,max=64"`
}

// DictionariesConfig holds optional dictionary file paths. Missing files
// are skipped with a warning.
type DictionariesConfig struct {
	JMdict    string `koanf:"jmdict"    yaml:"jmdict"`
	Kanjidic2 string `koanf:"kanjidic2" yaml:"kanjidic2"`
	Overrides string `koanf:"overrides" yaml:"overrides"`
}

// CacheConfig sizes the per-line result cache. Size 0 disables it.
type CacheConfig struct {
	Size int `koanf:"size" yaml:"size" validate:"min=0"`
}

// ClientConfig configures the remote backend client.
type ClientConfig struct {
	BaseURL string        `koanf:"base_url" yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"  yaml:"timeout"  validate:"gt=0"`
	Retries int           `koanf:"retries"  yaml:"retries"  validate:"min=0,max=10"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            5000,
			CORSOrigins:     "*",
			MaxTextLength:   10000,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Tokenizer: TokenizerConfig{
			Dict:    "ipa",
			Workers: 4,
		},
		Cache: CacheConfig{
			Size: 1024,
		},
		Client: ClientConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 30 * time.Second,
			Retries: 2,
		},
	}
}
