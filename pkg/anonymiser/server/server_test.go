// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	httpmocks "github.com/xataio/anonymiser/internal/http/mocks"
	synclib "github.com/xataio/anonymiser/internal/sync"
	syncmocks "github.com/xataio/anonymiser/internal/sync/mocks"
	"github.com/xataio/anonymiser/pkg/anonymiser"
	"github.com/xataio/anonymiser/pkg/anonymiser/mocks"
	"github.com/xataio/anonymiser/pkg/log"
	tlslib "github.com/xataio/anonymiser/pkg/tls"
	"github.com/xataio/anonymiser/pkg/transformers"
)

var testRequest = &anonymiser.Request{
	Data: &anonymiser.PiiData{
		Name:    "John Doe",
		Email:   "john@doe.com",
		Phone:   "555-1234",
		Country: "Spain",
	},
	Tokens: json.RawMessage(`{"name":"tok_1"}`),
	Nature: json.RawMessage(`"customer"`),
}

var testMaskedRequest = &anonymiser.Request{
	Data: &anonymiser.PiiData{
		Name:    "masked-name",
		Email:   "masked-email",
		Phone:   "masked-phone",
		Country: "masked-country",
	},
	Tokens: json.RawMessage(`{"name":"tok_1"}`),
	Nature: json.RawMessage(`"customer"`),
}

func TestServer_anonymise(t *testing.T) {
	t.Parallel()

	requestBytes, err := json.Marshal(testRequest)
	require.NoError(t, err)

	tests := []struct {
		name    string
		masker  anonymiser.Masker
		method  string
		payload io.Reader

		wantStatusCode int
		wantBody       *anonymiser.Request
	}{
		{
			name: "ok",
			masker: &mocks.Masker{
				MaskRequestFn: func(ctx context.Context, req *anonymiser.Request) *anonymiser.Request {
					require.Equal(t, testRequest, req)
					return testMaskedRequest
				},
			},
			payload:        bytes.NewBuffer(requestBytes),
			method:         http.MethodPost,
			wantStatusCode: http.StatusOK,
			wantBody:       testMaskedRequest,
		},
		{
			name: "error - method not allowed",
			masker: &mocks.Masker{
				MaskRequestFn: func(ctx context.Context, req *anonymiser.Request) *anonymiser.Request {
					panic("MaskRequestFn: should not be called")
				},
			},
			payload:        bytes.NewBuffer(requestBytes),
			method:         http.MethodGet,
			wantStatusCode: http.StatusMethodNotAllowed,
		},
		{
			name: "error - invalid payload",
			masker: &mocks.Masker{
				MaskRequestFn: func(ctx context.Context, req *anonymiser.Request) *anonymiser.Request {
					panic("MaskRequestFn: should not be called")
				},
			},
			payload:        bytes.NewBufferString("not a request"),
			method:         http.MethodPost,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "error - missing data",
			masker: &mocks.Masker{
				MaskRequestFn: func(ctx context.Context, req *anonymiser.Request) *anonymiser.Request {
					panic("MaskRequestFn: should not be called")
				},
			},
			payload:        bytes.NewBufferString(`{"tokens":{"name":"tok_1"}}`),
			method:         http.MethodPost,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := &Server{
				logger: log.NewNoopLogger(),
				masker: tc.masker,
			}

			req := httptest.NewRequest(tc.method, "/api/v1/anonymise", tc.payload)
			req.Header.Add(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			echoCtx := echo.New().NewContext(req, w)

			require.NoError(t, server.anonymise(echoCtx))
			require.Equal(t, tc.wantStatusCode, w.Result().StatusCode)
			if tc.wantBody != nil {
				got := &anonymiser.Request{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), got))
				require.Equal(t, tc.wantBody, got)
			}
		})
	}
}

func TestServer_anonymiseBulk(t *testing.T) {
	t.Parallel()

	bulkBytes, err := json.Marshal(bulkRequest{
		Records: []*anonymiser.Request{testRequest, testRequest},
	})
	require.NoError(t, err)

	errTest := errors.New("oh noes")

	tests := []struct {
		name    string
		masker  anonymiser.Masker
		limiter synclib.RecordLimiter
		method  string
		payload io.Reader

		wantStatusCode int
		wantRecords    int
	}{
		{
			name: "ok",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					require.Equal(t, []*anonymiser.Request{testRequest, testRequest}, reqs)
					require.Equal(t, 2, workers)
					return []*anonymiser.Request{testMaskedRequest, testMaskedRequest}, nil
				},
			},
			payload:        bytes.NewBuffer(bulkBytes),
			method:         http.MethodPost,
			wantStatusCode: http.StatusOK,
			wantRecords:    2,
		},
		{
			name: "ok - no records",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return []*anonymiser.Request{}, nil
				},
			},
			payload:        bytes.NewBufferString(`{"records":[]}`),
			method:         http.MethodPost,
			wantStatusCode: http.StatusOK,
			wantRecords:    0,
		},
		{
			name: "error - too many records",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return nil, errors.New("MaskAllFn: should not be called")
				},
			},
			payload:        bytes.NewBufferString(`{"records":[{"data":{}},{"data":{}},{"data":{}},{"data":{}}]}`),
			method:         http.MethodPost,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "error - too many inflight records",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return nil, errors.New("MaskAllFn: should not be called")
				},
			},
			limiter: &syncmocks.RecordLimiter{
				TryAcquireFn: func(records int) bool {
					require.Equal(t, 2, records)
					return false
				},
			},
			payload:        bytes.NewBuffer(bulkBytes),
			method:         http.MethodPost,
			wantStatusCode: http.StatusTooManyRequests,
		},
		{
			name: "error - masking records",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return nil, errTest
				},
			},
			payload:        bytes.NewBuffer(bulkBytes),
			method:         http.MethodPost,
			wantStatusCode: http.StatusServiceUnavailable,
		},
		{
			name: "error - method not allowed",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return nil, errors.New("MaskAllFn: should not be called")
				},
			},
			payload:        bytes.NewBuffer(bulkBytes),
			method:         http.MethodPut,
			wantStatusCode: http.StatusMethodNotAllowed,
		},
		{
			name: "error - record with missing data",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return nil, errors.New("MaskAllFn: should not be called")
				},
			},
			limiter: &syncmocks.RecordLimiter{
				TryAcquireFn: func(records int) bool {
					panic("TryAcquireFn: should not be called")
				},
			},
			payload:        bytes.NewBufferString(`{"records":[{"data":{}},{"tokens":{"name":"tok_1"}}]}`),
			method:         http.MethodPost,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "error - null record",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return nil, errors.New("MaskAllFn: should not be called")
				},
			},
			payload:        bytes.NewBufferString(`{"records":[null]}`),
			method:         http.MethodPost,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "error - invalid payload",
			masker: &mocks.Masker{
				MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
					return nil, errors.New("MaskAllFn: should not be called")
				},
			},
			payload:        bytes.NewBufferString(`{"records":`),
			method:         http.MethodPost,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			limiter := tc.limiter
			if limiter == nil {
				limiter = synclib.NewRecordLimiter(3)
			}

			server := &Server{
				logger:          log.NewNoopLogger(),
				masker:          tc.masker,
				inflightRecords: limiter,
				bulkMaxRecords:  3,
				bulkWorkers:     2,
			}

			req := httptest.NewRequest(tc.method, "/api/v1/anonymise/bulk", tc.payload)
			req.Header.Add(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			echoCtx := echo.New().NewContext(req, w)

			require.NoError(t, server.anonymiseBulk(echoCtx))
			require.Equal(t, tc.wantStatusCode, w.Result().StatusCode)
			if tc.wantStatusCode == http.StatusOK {
				got := &bulkResponse{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), got))
				require.Len(t, got.Records, tc.wantRecords)
			}
		})
	}
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	policy, err := anonymiser.NewPolicy(transformers.AffineParams{A: 3, B: 7, N: 10})
	require.NoError(t, err)

	s, err := New(&Config{}, policy, WithLogger(log.NewNoopLogger()))
	require.NoError(t, err)
	e, ok := s.server.(*echo.Echo)
	require.True(t, ok)
	require.Equal(t, defaultServerAddress, s.address)
	require.Equal(t, defaultBulkMaxRecords, s.bulkMaxRecords)

	t.Run("health", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
		require.NotEmpty(t, w.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("anonymise", func(t *testing.T) {
		t.Parallel()

		payload := `{"data":{"name":"John Doe","phone":"555","country":"Spain"},"nature":{"kind":"customer"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/anonymise", strings.NewReader(payload))
		req.Header.Add(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		got := &anonymiser.Request{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), got))
		require.Equal(t, transformers.ChunkedHashString("John Doe"), got.Data.Name)
		require.Equal(t, "002002002", got.Data.Phone)
		require.Equal(t, transformers.HashString("Spain"), got.Data.Country)
		require.JSONEq(t, `{"kind":"customer"}`, string(got.Nature))
	})

	t.Run("bulk", func(t *testing.T) {
		t.Parallel()

		records := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			records = append(records, fmt.Sprintf(`{"data":{"idNumber":"ID%d"}}`, i))
		}
		payload := `{"records":[` + strings.Join(records, ",") + `]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/anonymise/bulk", strings.NewReader(payload))
		req.Header.Add(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		got := &bulkResponse{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), got))
		require.Len(t, got.Records, 5)
		for i, r := range got.Records {
			want := transformers.SegmentedTransform(fmt.Sprintf("ID%d", i), transformers.AffineParams{A: 3, B: 7, N: 10})
			require.Equal(t, want, r.Data.IDNumber)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_Release(t *testing.T) {
	t.Parallel()

	var released []int
	limiter := &syncmocks.RecordLimiter{
		TryAcquireFn: func(records int) bool { return true },
		ReleaseFn: func(_ uint64, records int) {
			released = append(released, records)
		},
	}

	server := &Server{
		logger: log.NewNoopLogger(),
		masker: &mocks.Masker{
			MaskAllFn: func(ctx context.Context, reqs []*anonymiser.Request, workers int) ([]*anonymiser.Request, error) {
				return nil, errors.New("oh noes")
			},
		},
		inflightRecords: limiter,
		bulkMaxRecords:  10,
		bulkWorkers:     1,
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/anonymise/bulk", strings.NewReader(`{"records":[{"data":{}},{"data":{}}]}`))
	req.Header.Add(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()

	require.NoError(t, server.anonymiseBulk(echo.New().NewContext(req, w)))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, []int{2}, released)
}

func TestServer_New(t *testing.T) {
	t.Parallel()

	masker := &mocks.Masker{}

	s, err := New(&Config{
		Address:        "localhost:9999",
		BulkMaxRecords: 20000,
	}, masker)
	require.NoError(t, err)
	require.Equal(t, "localhost:9999", s.httpServer.Addr)
	require.Nil(t, s.httpServer.TLSConfig)
	require.Equal(t, defaultServerReadTimeout, s.httpServer.ReadTimeout)
	require.Equal(t, defaultServerWriteTimeout, s.httpServer.WriteTimeout)
	// the inflight limit never blocks a single bulk request of maximum size
	require.Equal(t, 20000, s.inflightRecords.Capacity())

	_, err = New(&Config{TLS: tlslib.Config{Enabled: true}}, masker)
	require.ErrorIs(t, err, tlslib.ErrMissingCertificate)
}

func TestServer_StartShutdown(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")
	httpServer := &http.Server{Addr: "localhost:9999"}

	tests := []struct {
		name    string
		server  *httpmocks.Server
		wantErr error
	}{
		{
			name: "ok - server closed",
			server: &httpmocks.Server{
				StartServerFn: func(s *http.Server) error {
					require.Equal(t, httpServer, s)
					return http.ErrServerClosed
				},
			},
			wantErr: nil,
		},
		{
			name: "error - starting server",
			server: &httpmocks.Server{
				StartServerFn: func(s *http.Server) error { return errTest },
			},
			wantErr: errTest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := &Server{
				server:     tc.server,
				httpServer: httpServer,
				logger:     log.NewNoopLogger(),
			}
			require.ErrorIs(t, s.Start(), tc.wantErr)
		})
	}

	s := &Server{
		server: &httpmocks.Server{
			ShutdownFn: func(ctx context.Context) error { return errTest },
		},
	}
	require.ErrorIs(t, s.Shutdown(context.Background()), errTest)
}
