// SPDX-License-Identifier: Apache-2.0

package server

import (
	"time"

	"github.com/xataio/anonymiser/pkg/tls"
)

type Config struct {
	// Address for the server to listen on. The format is "host:port". Defaults
	// to ":8080".
	Address string
	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Defaults to 5s.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Defaults to 10s.
	WriteTimeout time.Duration
	// BulkMaxRecords is the maximum number of records accepted by a single bulk
	// request. Defaults to 1000.
	BulkMaxRecords int
	// BulkWorkers is the number of workers masking the records of a bulk
	// request. Defaults to 4.
	BulkWorkers int
	// MaxInflightRecords limits the number of records being masked at any
	// time across all bulk requests. Requests over the limit are rejected with
	// 429. Defaults to 10000, and is never lower than BulkMaxRecords.
	MaxInflightRecords int
	// TLS configuration of the server. Disabled by default.
	TLS tls.Config
}

const (
	defaultServerReadTimeout  = 5 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerAddress      = ":8080"
	defaultBulkMaxRecords     = 1000
	defaultBulkWorkers        = 4
	defaultMaxInflightRecords = 10000
)

func (c *Config) readTimeout() time.Duration {
	if c.ReadTimeout > 0 {
		return c.ReadTimeout
	}
	return defaultServerReadTimeout
}

func (c *Config) writeTimeout() time.Duration {
	if c.WriteTimeout > 0 {
		return c.WriteTimeout
	}
	return defaultServerWriteTimeout
}

func (c *Config) address() string {
	if c.Address != "" {
		return c.Address
	}
	return defaultServerAddress
}

func (c *Config) bulkMaxRecords() int {
	if c.BulkMaxRecords > 0 {
		return c.BulkMaxRecords
	}
	return defaultBulkMaxRecords
}

func (c *Config) bulkWorkers() int {
	if c.BulkWorkers > 0 {
		return c.BulkWorkers
	}
	return defaultBulkWorkers
}

func (c *Config) maxInflightRecords() int {
	maxInflight := defaultMaxInflightRecords
	if c.MaxInflightRecords > 0 {
		maxInflight = c.MaxInflightRecords
	}
	return max(maxInflight, c.bulkMaxRecords())
}
