// SPDX-License-Identifier: Apache-2.0

package otel

import "time"

type Config struct {
	Metrics *MetricsConfig
	Traces  *TracesConfig
	// ServiceVersion is reported as the service.version resource attribute.
	// Defaults to the vcs revision of the binary.
	ServiceVersion string
}

type MetricsConfig struct {
	Endpoint           string
	CollectionInterval time.Duration
	// Insecure disables TLS on the connection to the collector.
	Insecure bool
}

type TracesConfig struct {
	Endpoint string
	// SampleRatio is the fraction of traces sampled, in [0, 1]. Nil samples
	// every trace, zero samples none.
	SampleRatio *float64
	Insecure    bool
}

const (
	defaultCollectionInterval = 60 * time.Second
	defaultSampleRatio        = 1.0
)

func (c *Config) enabled() bool {
	return c != nil && (c.Metrics != nil || c.Traces != nil)
}

func (c *MetricsConfig) collectionInterval() time.Duration {
	if c.CollectionInterval > 0 {
		return c.CollectionInterval
	}
	return defaultCollectionInterval
}

func (c *TracesConfig) sampleRatio() float64 {
	if c.SampleRatio != nil {
		return *c.SampleRatio
	}
	return defaultSampleRatio
}
