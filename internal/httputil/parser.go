package httputil

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// FromFile loads the configuration from a given file.
func FromFile(filename string) (ClientConfig, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("unable to load http configuration file: %v", err)
	}
	return FromYAML(contents)
}

// FromYAML loads the configuration from a blob of YAML.
func FromYAML(contents []byte) (ClientConfig, error) {
	var cfg ClientConfig
	if err := yaml.UnmarshalStrict(contents, &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("unable to parse http configuration: %v", err)
	}
	return cfg, nil
}
