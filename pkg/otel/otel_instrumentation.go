// SPDX-License-Identifier: Apache-2.0

package otel

// InstrumentationProvider hands out named instrumentation to the anonymiser
// components and flushes it on Close.
type InstrumentationProvider interface {
	NewInstrumentation(name string) *Instrumentation
	Close() error
}

// disabledProvider is used when no telemetry backend is configured. The nil
// instrumentation it returns disables the instrumented decorators.
type disabledProvider struct{}

func (disabledProvider) NewInstrumentation(string) *Instrumentation { return nil }
func (disabledProvider) Close() error                               { return nil }

// NewInstrumentationProvider returns a provider exporting to the configured
// OTLP endpoints, or a disabled provider if neither metrics nor traces are
// configured.
func NewInstrumentationProvider(cfg *Config, opts ...ProviderOption) (InstrumentationProvider, error) {
	if !cfg.enabled() {
		return disabledProvider{}, nil
	}
	return NewProvider(cfg, opts...)
}
