package shared

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantErr     bool
	}{
		{
			name:    "single header with single quotes",
			curlCmd: `curl -H 'X-Forwarded-User: kg' http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{
				"X-Forwarded-User": "kg",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:    "single header with double quotes",
			curlCmd: `curl -H "X-Forwarded-User: kg" http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{
				"X-Forwarded-User": "kg",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:    "multiple headers",
			curlCmd: `curl -H 'Accept: application/json' -H 'X-Proxy-Token: abc' http://127.0.0.1:8000/api/version`,
			wantHeaders: map[string]string{
				"Accept":        "application/json",
				"X-Proxy-Token": "abc",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:        "cookie in -b flag",
			curlCmd:     `curl -b 'session=abc123' http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{},
			wantCookie:  "session=abc123",
			wantErr:     false,
		},
		{
			name:        "cookie in -H header",
			curlCmd:     `curl -H 'Cookie: session=abc123; token=xyz' http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{},
			wantCookie:  "session=abc123; token=xyz",
			wantErr:     false,
		},
		{
			name:    "cookie header is excluded from regular headers",
			curlCmd: `curl -H 'Cookie: session=abc123' -H 'X-Proxy-Token: abc' http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{
				"X-Proxy-Token": "abc",
			},
			wantCookie: "session=abc123",
			wantErr:    false,
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl -H 'X-Proxy-Token: abc' \
-H 'Accept: application/json' \
http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{
				"X-Proxy-Token": "abc",
				"Accept":        "application/json",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:    "headers with spaces around colon",
			curlCmd: `curl -H 'X-Proxy-Token : abc' http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{
				"X-Proxy-Token": "abc",
			},
			wantCookie: "",
			wantErr:    false,
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' http://127.0.0.1:8000/health`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
			wantErr:     false,
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl http://127.0.0.1:8000/health`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand([]byte(tc.curlCmd))

			if (err != nil) != tc.wantErr {
				t.Errorf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
				return
			}

			if tc.wantErr {
				return
			}

			if result == nil {
				t.Fatal("ParseCurlCommand() returned nil result")
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}

			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %v, want %v", key, got, want)
				}
			}

			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %v, want %v", result.Cookie, tc.wantCookie)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		tmpDir := t.TempDir()
		curlFile := filepath.Join(tmpDir, "curl.sh")

		curlCmd := `curl -H 'X-Proxy-Token: abc' -H 'Accept: application/json' http://127.0.0.1:8000/health`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}

		if len(result.Headers) != 2 {
			t.Errorf("ParseCurlFile() headers count = %v, want 2", len(result.Headers))
		}

		if result.Headers["X-Proxy-Token"] != "abc" {
			t.Errorf("ParseCurlFile() X-Proxy-Token = %v, want abc", result.Headers["X-Proxy-Token"])
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		_, err := ParseCurlFile("/nonexistent/file.sh")
		if err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})

	t.Run("file with no valid headers", func(t *testing.T) {
		tmpDir := t.TempDir()
		curlFile := filepath.Join(tmpDir, "invalid.sh")

		if err := os.WriteFile(curlFile, []byte("curl http://127.0.0.1:8000"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		_, err := ParseCurlFile(curlFile)
		if err == nil {
			t.Error("ParseCurlFile() expected error for file with no headers")
		}
	})
}

func TestCurlHeaders_Apply(t *testing.T) {
	t.Run("sets headers and cookie", func(t *testing.T) {
		c := &CurlHeaders{
			Headers: map[string]string{
				"X-Proxy-Token": "abc",
				"Accept":        "application/json",
			},
			Cookie: "session=abc123",
		}

		h := http.Header{}
		c.Apply(h)

		if h.Get("X-Proxy-Token") != "abc" {
			t.Errorf("expected X-Proxy-Token abc, got %s", h.Get("X-Proxy-Token"))
		}
		if h.Get("Accept") != "application/json" {
			t.Errorf("expected Accept application/json, got %s", h.Get("Accept"))
		}
		if h.Get("Cookie") != "session=abc123" {
			t.Errorf("expected Cookie session=abc123, got %s", h.Get("Cookie"))
		}
	})

	t.Run("does not override existing values", func(t *testing.T) {
		c := &CurlHeaders{
			Headers: map[string]string{"Accept": "text/html"},
			Cookie:  "session=other",
		}

		h := http.Header{}
		h.Set("Accept", "application/json")
		h.Set("Cookie", "session=mine")
		c.Apply(h)

		if h.Get("Accept") != "application/json" {
			t.Errorf("expected existing Accept to survive, got %s", h.Get("Accept"))
		}
		if h.Get("Cookie") != "session=mine" {
			t.Errorf("expected existing Cookie to survive, got %s", h.Get("Cookie"))
		}
	})

	t.Run("skips transport-owned headers", func(t *testing.T) {
		c := &CurlHeaders{
			Headers: map[string]string{
				"Host":           "evil.example.com",
				"Content-Length": "999",
				"Content-Type":   "text/plain",
				"X-Proxy-Token":  "abc",
			},
		}

		h := http.Header{}
		c.Apply(h)

		if h.Get("Host") != "" || h.Get("Content-Length") != "" || h.Get("Content-Type") != "" {
			t.Error("expected transport-owned headers to be skipped")
		}
		if h.Get("X-Proxy-Token") != "abc" {
			t.Errorf("expected X-Proxy-Token abc, got %s", h.Get("X-Proxy-Token"))
		}
	})
}
