// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xataio/anonymiser/pkg/anonymiser/server"
	"github.com/xataio/anonymiser/pkg/otel"
	"github.com/xataio/anonymiser/pkg/tls"
	"github.com/xataio/anonymiser/pkg/transformers"
)

func validateTestAffineParams(t *testing.T, params transformers.AffineParams) {
	assert.Equal(t, transformers.AffineParams{A: 3, B: 7, N: 10}, params)
	assert.NoError(t, params.Validate())
}

func validateTestServerConfig(t *testing.T, serverConfig *server.Config) {
	assert.Equal(t, &server.Config{
		Address:            "localhost:9090",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       60 * time.Second,
		BulkMaxRecords:     500,
		BulkWorkers:        8,
		MaxInflightRecords: 5000,
		TLS: tls.Config{
			Enabled:          true,
			CertFile:         "/path/to/server.crt",
			KeyFile:          "/path/to/server.key",
			ClientCACertFile: "/path/to/ca.crt",
		},
	}, serverConfig)
}

func validateTestOtelConfig(t *testing.T, otelConfig *otel.Config) {
	assert.Equal(t, "http://localhost:4317", otelConfig.Metrics.Endpoint)
	assert.Equal(t, 60*time.Second, otelConfig.Metrics.CollectionInterval)
	assert.True(t, otelConfig.Metrics.Insecure)

	assert.Equal(t, "http://localhost:4317", otelConfig.Traces.Endpoint)
	sampleRatio := 0.5
	assert.Equal(t, &sampleRatio, otelConfig.Traces.SampleRatio)
	assert.True(t, otelConfig.Traces.Insecure)
}
