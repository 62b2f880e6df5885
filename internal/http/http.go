// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"net/http"
)

// Server abstracts the lifecycle of the http server backing the anonymiser
// API, so it can be mocked in tests.
type Server interface {
	StartServer(*http.Server) error
	Shutdown(context.Context) error
}
