// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/xataio/anonymiser/pkg/anonymiser/server"
	"github.com/xataio/anonymiser/pkg/otel"
	"github.com/xataio/anonymiser/pkg/tls"
	"github.com/xataio/anonymiser/pkg/transformers"
)

type YAMLConfig struct {
	Anonymiser      AnonymiserConfig       `mapstructure:"anonymiser" yaml:"anonymiser"`
	Server          *ServerConfig          `mapstructure:"server" yaml:"server"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation" yaml:"instrumentation"`
}

type AnonymiserConfig struct {
	Affine AffineConfig `mapstructure:"affine" yaml:"affine"`
}

type AffineConfig struct {
	A int `mapstructure:"a" yaml:"a"`
	B int `mapstructure:"b" yaml:"b"`
	N int `mapstructure:"n" yaml:"n"`
}

type ServerConfig struct {
	Address            string     `mapstructure:"address" yaml:"address"`
	ReadTimeout        int        `mapstructure:"read_timeout" yaml:"read_timeout"`   // seconds
	WriteTimeout       int        `mapstructure:"write_timeout" yaml:"write_timeout"` // seconds
	BulkMaxRecords     int        `mapstructure:"bulk_max_records" yaml:"bulk_max_records"`
	BulkWorkers        int        `mapstructure:"bulk_workers" yaml:"bulk_workers"`
	MaxInflightRecords int        `mapstructure:"max_inflight_records" yaml:"max_inflight_records"`
	TLS                *TLSConfig `mapstructure:"tls" yaml:"tls"`
}

type TLSConfig struct {
	Enabled          bool   `mapstructure:"enabled" yaml:"enabled"`
	CertFile         string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile          string `mapstructure:"key_file" yaml:"key_file"`
	ClientCACertFile string `mapstructure:"client_ca_cert_file" yaml:"client_ca_cert_file"`
}

type InstrumentationConfig struct {
	Metrics *MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Traces  *TracesConfig  `mapstructure:"traces" yaml:"traces"`
}

type MetricsConfig struct {
	Endpoint           string `mapstructure:"endpoint" yaml:"endpoint"`
	CollectionInterval int    `mapstructure:"collection_interval" yaml:"collection_interval"` // seconds
	Insecure           bool   `mapstructure:"insecure" yaml:"insecure"`
}

type TracesConfig struct {
	Endpoint    string   `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRatio *float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
	Insecure    bool     `mapstructure:"insecure" yaml:"insecure"`
}

func (c *YAMLConfig) toAffineParams() transformers.AffineParams {
	return transformers.AffineParams{
		A: c.Anonymiser.Affine.A,
		B: c.Anonymiser.Affine.B,
		N: c.Anonymiser.Affine.N,
	}
}

func (c *YAMLConfig) toServerConfig() *server.Config {
	if c.Server == nil {
		return &server.Config{}
	}
	return &server.Config{
		Address:            c.Server.Address,
		ReadTimeout:        time.Duration(c.Server.ReadTimeout) * time.Second,
		WriteTimeout:       time.Duration(c.Server.WriteTimeout) * time.Second,
		BulkMaxRecords:     c.Server.BulkMaxRecords,
		BulkWorkers:        c.Server.BulkWorkers,
		MaxInflightRecords: c.Server.MaxInflightRecords,
		TLS:                c.Server.TLS.parseTLSConfig(),
	}
}

func (t *TLSConfig) parseTLSConfig() tls.Config {
	if t == nil {
		return tls.Config{}
	}
	return tls.Config{
		Enabled:          t.Enabled,
		CertFile:         t.CertFile,
		KeyFile:          t.KeyFile,
		ClientCACertFile: t.ClientCACertFile,
	}
}

func (c *YAMLConfig) toOtelConfig() (*otel.Config, error) {
	cfg := &otel.Config{}
	if c.Instrumentation == nil {
		return cfg, nil
	}

	if c.Instrumentation.Metrics != nil {
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           c.Instrumentation.Metrics.Endpoint,
			CollectionInterval: time.Duration(c.Instrumentation.Metrics.CollectionInterval) * time.Second,
			Insecure:           c.Instrumentation.Metrics.Insecure,
		}
	}

	if c.Instrumentation.Traces != nil {
		if ratio := c.Instrumentation.Traces.SampleRatio; ratio != nil {
			if err := validateSampleRatio(*ratio); err != nil {
				return nil, err
			}
		}
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    c.Instrumentation.Traces.Endpoint,
			SampleRatio: c.Instrumentation.Traces.SampleRatio,
			Insecure:    c.Instrumentation.Traces.Insecure,
		}
	}

	return cfg, nil
}
