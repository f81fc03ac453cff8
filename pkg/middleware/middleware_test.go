package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/recon/pkg/middleware"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		cfg     middleware.CORSConfig
		method  string
		origin  string
		headers map[string]string
	}{
		{
			name:    "disabled",
			cfg:     middleware.CORSConfig{Enabled: false, Origins: []string{"http://example.com"}},
			method:  "GET",
			origin:  "http://example.com",
			headers: map[string]string{"Access-Control-Allow-Origin": "", "Vary": ""},
		},
		{
			name: "allowed origin",
			cfg: middleware.CORSConfig{
				Enabled:        true,
				Origins:        []string{"http://example.com"},
				AllowedMethods: []string{"GET", "POST"},
				ExposedHeaders: []string{middleware.RequestIDHeader, "Location"},
				MaxAge:         3600,
			},
			method: "GET",
			origin: "http://example.com",
			headers: map[string]string{
				"Access-Control-Allow-Origin":   "http://example.com",
				"Access-Control-Expose-Headers": "X-Request-ID, Location",
				"Access-Control-Allow-Methods":  "",
				"Access-Control-Max-Age":        "",
				"Vary":                          "Origin",
			},
		},
		{
			name:    "no exposed headers",
			cfg:     middleware.CORSConfig{Enabled: true, Origins: []string{"http://example.com"}},
			method:  "GET",
			origin:  "http://example.com",
			headers: map[string]string{"Access-Control-Expose-Headers": ""},
		},
		{
			name:    "disallowed origin",
			cfg:     middleware.CORSConfig{Enabled: true, Origins: []string{"http://allowed.com"}},
			method:  "GET",
			origin:  "http://denied.com",
			headers: map[string]string{"Access-Control-Allow-Origin": "", "Vary": "Origin"},
		},
		{
			name: "credentials",
			cfg: middleware.CORSConfig{
				Enabled:          true,
				Origins:          []string{"http://example.com"},
				AllowCredentials: true,
			},
			method:  "GET",
			origin:  "http://example.com",
			headers: map[string]string{"Access-Control-Allow-Credentials": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(&tt.cfg)(http.HandlerFunc(ok))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			handler.ServeHTTP(rec, req)

			for k, want := range tt.headers {
				if got := rec.Header().Get(k); got != want {
					t.Errorf("%s: got %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}

	tests := []struct {
		name    string
		origin  string
		request string
		status  int
		called  bool
		headers map[string]string
	}{
		{
			name:    "allowed",
			origin:  "http://example.com",
			request: "POST",
			status:  http.StatusNoContent,
			headers: map[string]string{
				"Access-Control-Allow-Origin":  "http://example.com",
				"Access-Control-Allow-Methods": "GET, POST",
				"Access-Control-Allow-Headers": "Content-Type",
				"Access-Control-Max-Age":       "600",
			},
		},
		{
			name:    "disallowed origin",
			origin:  "http://denied.com",
			request: "POST",
			status:  http.StatusOK,
			called:  true,
			headers: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name:   "plain options",
			origin: "http://example.com",
			status: http.StatusOK,
			called: true,
			headers: map[string]string{
				"Access-Control-Allow-Origin":  "http://example.com",
				"Access-Control-Allow-Methods": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.request != "" {
				req.Header.Set("Access-Control-Request-Method", tt.request)
			}
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			if called != tt.called {
				t.Errorf("handler called = %v, want %v", called, tt.called)
			}
			for k, want := range tt.headers {
				if got := rec.Header().Get(k); got != want {
					t.Errorf("%s: got %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		status    int
	}{
		{"generated id", "", http.StatusAccepted},
		{"propagated id", "req-123", http.StatusNotFound},
		{"implicit ok", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				w.Write([]byte("body"))
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/test?q=1", nil)
			if tt.requestID != "" {
				req.Header.Set(middleware.RequestIDHeader, tt.requestID)
			}
			handler.ServeHTTP(rec, req)

			var entry struct {
				RequestID string `json:"request_id"`
				URI       string `json:"uri"`
				Status    int    `json:"status"`
			}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log entry: %v", err)
			}

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if entry.Status != want {
				t.Errorf("logged status: got %d, want %d", entry.Status, want)
			}
			if entry.URI != "/test?q=1" {
				t.Errorf("logged uri: got %s", entry.URI)
			}

			header := rec.Header().Get(middleware.RequestIDHeader)
			if header == "" || header != entry.RequestID {
				t.Errorf("request id: header %q, logged %q", header, entry.RequestID)
			}
			if tt.requestID != "" && header != tt.requestID {
				t.Errorf("request id: got %q, want %q", header, tt.requestID)
			}
		})
	}
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.com, http://b.com")

	env := &middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
	}

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled should be true")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.com" {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if len(cfg.AllowedHeaders) != 3 || cfg.AllowedHeaders[2] != middleware.RequestIDHeader {
		t.Errorf("allowed_headers: got %v", cfg.AllowedHeaders)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max_age: got %d, want 3600", cfg.MaxAge)
	}
	if !slices.Equal(cfg.ExposedHeaders, []string{middleware.RequestIDHeader}) {
		t.Errorf("exposed_headers: got %v", cfg.ExposedHeaders)
	}
}

func TestCORSConfigExposedHeaders(t *testing.T) {
	t.Setenv("TEST_CORS_EXPOSED", "X-Request-ID, Location")

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(&middleware.CORSEnv{ExposedHeaders: "TEST_CORS_EXPOSED"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !slices.Equal(cfg.ExposedHeaders, []string{"X-Request-ID", "Location"}) {
		t.Errorf("exposed_headers: got %v", cfg.ExposedHeaders)
	}

	empty := middleware.CORSConfig{ExposedHeaders: []string{}}
	if err := empty.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if len(empty.ExposedHeaders) != 0 {
		t.Errorf("explicit empty list replaced: %v", empty.ExposedHeaders)
	}

	base := middleware.CORSConfig{ExposedHeaders: []string{middleware.RequestIDHeader}}
	base.Merge(&middleware.CORSConfig{ExposedHeaders: []string{"Location"}})
	if !slices.Equal(base.ExposedHeaders, []string{"Location"}) {
		t.Errorf("merge: got %v", base.ExposedHeaders)
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Origins: []string{"http://base.com"},
		MaxAge:  3600,
	}
	base.Merge(&middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://overlay.com"},
		MaxAge:  7200,
	})

	if !base.Enabled || base.Origins[0] != "http://overlay.com" || base.MaxAge != 7200 {
		t.Errorf("merge: got %+v", base)
	}
}
