// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"runtime/debug"
	"sync"
)

const unknownRevision = "unknown"

// vcsRevision is only populated when the binary is built from a module
// checkout with `go build ./...`.
var vcsRevision = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknownRevision
	}

	for _, v := range info.Settings {
		if v.Key == "vcs.revision" {
			return v.Value
		}
	}

	return unknownRevision
})

func serviceVersion(cfg *Config) string {
	if cfg != nil && cfg.ServiceVersion != "" {
		return cfg.ServiceVersion
	}
	return vcsRevision()
}
