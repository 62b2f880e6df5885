// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/xataio/anonymiser/pkg/anonymiser/server"
	"github.com/xataio/anonymiser/pkg/otel"
	"github.com/xataio/anonymiser/pkg/tls"
	"github.com/xataio/anonymiser/pkg/transformers"
)

func envToAffineParams() transformers.AffineParams {
	return transformers.AffineParams{
		A: viper.GetInt("ANONYMISER_AFFINE_A"),
		B: viper.GetInt("ANONYMISER_AFFINE_B"),
		N: viper.GetInt("ANONYMISER_AFFINE_N"),
	}
}

func envToServerConfig() *server.Config {
	return &server.Config{
		Address:            viper.GetString("ANONYMISER_SERVER_ADDRESS"),
		ReadTimeout:        viper.GetDuration("ANONYMISER_SERVER_READ_TIMEOUT"),
		WriteTimeout:       viper.GetDuration("ANONYMISER_SERVER_WRITE_TIMEOUT"),
		BulkMaxRecords:     viper.GetInt("ANONYMISER_SERVER_BULK_MAX_RECORDS"),
		BulkWorkers:        viper.GetInt("ANONYMISER_SERVER_BULK_WORKERS"),
		MaxInflightRecords: viper.GetInt("ANONYMISER_SERVER_MAX_INFLIGHT_RECORDS"),
		TLS:                parseTLSConfig("ANONYMISER_SERVER"),
	}
}

func parseTLSConfig(prefix string) tls.Config {
	return tls.Config{
		Enabled:          viper.GetBool(prefix + "_TLS_ENABLED"),
		CertFile:         viper.GetString(prefix + "_TLS_CERT_FILE"),
		KeyFile:          viper.GetString(prefix + "_TLS_KEY_FILE"),
		ClientCACertFile: viper.GetString(prefix + "_TLS_CLIENT_CA_CERT_FILE"),
	}
}

func envToOtelConfig() (*otel.Config, error) {
	cfg := &otel.Config{}

	if metricsEndpoint := viper.GetString("ANONYMISER_METRICS_ENDPOINT"); metricsEndpoint != "" {
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           metricsEndpoint,
			CollectionInterval: viper.GetDuration("ANONYMISER_METRICS_COLLECTION_INTERVAL"),
			Insecure:           viper.GetBool("ANONYMISER_METRICS_INSECURE"),
		}
	}

	if tracesEndpoint := viper.GetString("ANONYMISER_TRACES_ENDPOINT"); tracesEndpoint != "" {
		var sampleRatio *float64
		if viper.IsSet("ANONYMISER_TRACES_SAMPLE_RATIO") {
			ratio := viper.GetFloat64("ANONYMISER_TRACES_SAMPLE_RATIO")
			if err := validateSampleRatio(ratio); err != nil {
				return nil, err
			}
			sampleRatio = &ratio
		}
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    tracesEndpoint,
			SampleRatio: sampleRatio,
			Insecure:    viper.GetBool("ANONYMISER_TRACES_INSECURE"),
		}
	}

	return cfg, nil
}

func validateSampleRatio(ratio float64) error {
	if ratio < 0 || ratio > 1 {
		return fmt.Errorf("invalid traces sample ratio %v: must be between 0 and 1", ratio)
	}
	return nil
}
