// SPDX-License-Identifier: Apache-2.0

package profiling

import (
	"errors"
	"fmt"
	"net/http"
	httppprof "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	loglib "github.com/xataio/anonymiser/pkg/log"
)

const (
	defaultCPUProfileFile    = "cpu.prof"
	defaultMemoryProfileFile = "mem.prof"
)

// NewServer returns an http server exposing the pprof endpoints under
// /debug/pprof/ on its own mux, so they never leak into the default one.
func NewServer(address string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", httppprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", httppprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", httppprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", httppprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", httppprof.Trace)

	return &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartProfilingServer serves the pprof endpoints in the background. Errors
// serving them are logged, they never stop the process.
func StartProfilingServer(address string, logger loglib.Logger) *http.Server {
	logger = loglib.NewModuleLogger(logger, "profiling")
	srv := NewServer(address)
	go func() {
		logger.Info("profiling server listening", loglib.Fields{"address": address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "profiling server stopped", loglib.Fields{"address": address})
		}
	}()
	return srv
}

// StartCPUProfile starts writing a CPU profile to the given file. The
// function returned stops the profile and closes the file.
func StartCPUProfile(fileName string) (func(), error) {
	f, err := os.Create(orDefault(fileName, defaultCPUProfileFile))
	if err != nil {
		return nil, fmt.Errorf("creating CPU profile file: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

// CreateMemoryProfile writes the allocations profile to the given file.
func CreateMemoryProfile(fileName string) error {
	f, err := os.Create(orDefault(fileName, defaultMemoryProfileFile))
	if err != nil {
		return fmt.Errorf("creating memory profile file: %w", err)
	}
	defer f.Close()

	runtime.GC()
	if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
		return fmt.Errorf("writing memory profile: %w", err)
	}
	return nil
}

func orDefault(fileName, defaultName string) string {
	if fileName == "" {
		return defaultName
	}
	return fileName
}
