// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/xataio/anonymiser/pkg/anonymiser/server"
	"github.com/xataio/anonymiser/pkg/otel"
	"github.com/xataio/anonymiser/pkg/transformers"
)

func Load() error {
	return LoadFile(viper.GetString("config"))
}

func LoadFile(file string) error {
	if file == "" {
		return nil
	}

	ext := filepath.Ext(file)
	if ext == "" {
		return fmt.Errorf("reading config: file %q has no extension", file)
	}
	viper.SetConfigFile(file)
	viper.SetConfigType(ext[1:])
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// ParseAnonymiserConfig returns the affine parameters of the masking policy.
// The parameters are not validated.
func ParseAnonymiserConfig() (transformers.AffineParams, error) {
	if isYAMLConfig() {
		yamlCfg, err := unmarshalYAMLConfig()
		if err != nil {
			return transformers.AffineParams{}, err
		}
		return yamlCfg.toAffineParams(), nil
	}
	return envToAffineParams(), nil
}

func ParseServerConfig() (*server.Config, error) {
	if isYAMLConfig() {
		yamlCfg, err := unmarshalYAMLConfig()
		if err != nil {
			return nil, err
		}
		return yamlCfg.toServerConfig(), nil
	}
	return envToServerConfig(), nil
}

func ParseInstrumentationConfig() (*otel.Config, error) {
	if isYAMLConfig() {
		yamlCfg, err := unmarshalYAMLConfig()
		if err != nil {
			return nil, err
		}
		return yamlCfg.toOtelConfig()
	}
	return envToOtelConfig()
}

func isYAMLConfig() bool {
	switch filepath.Ext(viper.GetViper().ConfigFileUsed()) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}

func unmarshalYAMLConfig() (*YAMLConfig, error) {
	yamlCfg := &YAMLConfig{}
	if err := viper.Unmarshal(yamlCfg); err != nil {
		return nil, fmt.Errorf("unmarshaling yaml config: %w", err)
	}
	return yamlCfg, nil
}
