package streambind

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide binder configuration. It is read once at New;
// the binder never consults it again afterwards.
type Config struct {
	// Group is the logical consumer group. It names the group on inbound
	// subscriptions and is part of derived dead-letter destinations.
	Group string `yaml:"group"`

	// Brokers seed the Kafka transport when no transport is injected.
	Brokers []string `yaml:"brokers"`

	// DefaultKeyCodec and DefaultValueCodec apply to bindings that do not
	// name their own codecs.
	DefaultKeyCodec   string `yaml:"defaultKeyCodec"`
	DefaultValueCodec string `yaml:"defaultValueCodec"`

	// DefaultContentType applies to bindings without one. Empty means
	// application/json.
	DefaultContentType string `yaml:"defaultContentType"`

	// ErrorPolicy reacts to inbound deserialization failures:
	// logAndContinue, logAndFail (default) or sendToDlq.
	ErrorPolicy string `yaml:"errorPolicy"`

	Bindings []Binding `yaml:"bindings"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("streambind: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config bytes.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("streambind: parse config: %w", err)
	}
	return cfg, nil
}
