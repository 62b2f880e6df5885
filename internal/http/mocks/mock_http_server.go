// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"net/http"
)

type Server struct {
	StartServerFn func(*http.Server) error
	ShutdownFn    func(context.Context) error
}

func (m *Server) StartServer(s *http.Server) error {
	return m.StartServerFn(s)
}

func (m *Server) Shutdown(ctx context.Context) error {
	return m.ShutdownFn(ctx)
}
