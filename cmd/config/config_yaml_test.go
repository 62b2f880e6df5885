// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xataio/anonymiser/pkg/anonymiser/server"
	"github.com/xataio/anonymiser/pkg/otel"
)

func Test_YAMLConfig(t *testing.T) {
	viper.Reset()
	require.NoError(t, LoadFile("test/test_config.yaml"))

	params, err := ParseAnonymiserConfig()
	require.NoError(t, err)
	validateTestAffineParams(t, params)

	serverConfig, err := ParseServerConfig()
	require.NoError(t, err)
	validateTestServerConfig(t, serverConfig)

	otelConfig, err := ParseInstrumentationConfig()
	require.NoError(t, err)
	validateTestOtelConfig(t, otelConfig)
}

func Test_YAMLConfig_Overrides(t *testing.T) {
	viper.Reset()
	require.NoError(t, LoadFile("test/test_config.yaml"))
	viper.Set("anonymiser.affine.n", 97)

	params, err := ParseAnonymiserConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, params.A)
	assert.Equal(t, 7, params.B)
	assert.Equal(t, 97, params.N)
}

func Test_YAMLConfig_Empty(t *testing.T) {
	t.Parallel()

	cfg := &YAMLConfig{}
	params := cfg.toAffineParams()
	assert.Zero(t, params.N)
	assert.Error(t, params.Validate())

	assert.Equal(t, &server.Config{}, cfg.toServerConfig())
	otelConfig, err := cfg.toOtelConfig()
	require.NoError(t, err)
	assert.Equal(t, &otel.Config{}, otelConfig)
}

func Test_YAMLConfig_SampleRatio(t *testing.T) {
	t.Parallel()

	zero := 0.0
	outOfRange := 1.5

	tests := []struct {
		name        string
		sampleRatio *float64
		wantErr     bool
	}{
		{name: "ok - unset", sampleRatio: nil},
		{name: "ok - sample nothing", sampleRatio: &zero},
		{name: "error - out of range", sampleRatio: &outOfRange, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := &YAMLConfig{Instrumentation: &InstrumentationConfig{
				Traces: &TracesConfig{Endpoint: "localhost:4317", SampleRatio: tc.sampleRatio},
			}}
			otelConfig, err := cfg.toOtelConfig()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.sampleRatio, otelConfig.Traces.SampleRatio)
		})
	}
}

func Test_LoadFile_Errors(t *testing.T) {
	viper.Reset()

	require.NoError(t, LoadFile(""))
	require.Error(t, LoadFile("test/test_config"))
	require.Error(t, LoadFile("test/missing_config.yaml"))
}
