package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
)

type fakeBridge struct {
	output string
	err    error

	actions []string
	baseDir string
	path    string
	data    []byte
}

func (f *fakeBridge) TextIO(ctx context.Context, actions []string, baseDir string) (string, error) {
	f.actions = actions
	f.baseDir = baseDir
	return f.output, f.err
}

func (f *fakeBridge) WriteFile(path string, data []byte) error {
	f.path = path
	f.data = data
	return f.err
}

func newTextIORequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/text-io", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestHandleTextIO(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		output        string
		err           error
		allowOverride bool
		wantStatus    int
		wantBaseDir   string
		wantOutput    string
		wantExit      int
		wantErrType   string
	}{
		{
			name:        "success with default base dir",
			body:        `{"actions": ["login", "list"]}`,
			output:      "backend says hi",
			wantStatus:  http.StatusOK,
			wantBaseDir: "/default",
			wantOutput:  "backend says hi",
		},
		{
			name:          "explicit base dir with override allowed",
			body:          `{"actions": ["get_data"], "base_dir": "/game/user"}`,
			output:        "{}",
			allowOverride: true,
			wantStatus:    http.StatusOK,
			wantBaseDir:   "/game/user",
			wantOutput:    "{}",
		},
		{
			name:        "explicit base dir rejected by default",
			body:        `{"actions": ["get_data"], "base_dir": "/tmp/evil"}`,
			wantStatus:  http.StatusForbidden,
			wantErrType: ErrTypeForbidden,
		},
		{
			name:        "base dir equal to default",
			body:        `{"actions": ["get_data"], "base_dir": "/default/"}`,
			output:      "{}",
			wantStatus:  http.StatusOK,
			wantBaseDir: "/default",
			wantOutput:  "{}",
		},
		{
			name:        "non-zero exit",
			body:        `{"actions": ["bad"]}`,
			output:      "partial",
			err:         &bridge.ExitError{Path: "/b", Code: 2, Stderr: "oops"},
			wantStatus:  http.StatusOK,
			wantBaseDir: "/default",
			wantOutput:  "partial",
			wantExit:    2,
		},
		{
			name:        "spawn failure",
			body:        `{"actions": []}`,
			err:         &bridge.SpawnError{Path: "/b", Err: errors.New("no such file")},
			wantStatus:  http.StatusBadGateway,
			wantBaseDir: "/default",
			wantErrType: ErrTypeSpawnFailed,
		},
		{
			name:        "invalid json",
			body:        `{"actions": `,
			wantStatus:  http.StatusBadRequest,
			wantErrType: ErrTypeBadRequest,
		},
		{
			name:        "unknown field",
			body:        `{"action": ["x"]}`,
			wantStatus:  http.StatusBadRequest,
			wantErrType: ErrTypeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBridge{output: tt.output, err: tt.err}
			srv := New(fb, "/default", nil)
			srv.SetAllowBaseDirOverride(tt.allowOverride)

			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, newTextIORequest(tt.body, "application/json"))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantErrType != "" {
				var errResp ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
					t.Fatalf("decoding error response: %v", err)
				}
				if errResp.Type != tt.wantErrType {
					t.Errorf("error type = %q, want %q", errResp.Type, tt.wantErrType)
				}
				if errResp.RequestID == "" {
					t.Error("error response has no request_id")
				}
				if tt.wantStatus == http.StatusForbidden && fb.actions != nil {
					t.Errorf("backend called with %v, want no call", fb.actions)
				}
				return
			}

			var resp TextIOResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Output != tt.wantOutput {
				t.Errorf("output = %q, want %q", resp.Output, tt.wantOutput)
			}
			if resp.ExitCode != tt.wantExit {
				t.Errorf("exit_code = %d, want %d", resp.ExitCode, tt.wantExit)
			}
			if fb.baseDir != tt.wantBaseDir {
				t.Errorf("base dir = %q, want %q", fb.baseDir, tt.wantBaseDir)
			}
		})
	}
}

func TestHandleTextIOContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{name: "json", contentType: "application/json", wantStatus: http.StatusOK},
		{name: "json with charset", contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "plain text", contentType: "text/plain", wantStatus: http.StatusUnsupportedMediaType},
		{name: "form", contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBridge{output: "ok"}
			srv := New(fb, "/default", nil)

			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, newTextIORequest(`{"actions": ["login"]}`, tt.contentType))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnsupportedMediaType && fb.actions != nil {
				t.Errorf("backend called with %v, want no call", fb.actions)
			}
		})
	}
}

func TestHandleWriteFile(t *testing.T) {
	fb := &fakeBridge{}
	srv := New(fb, "", nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/files?path=/tmp/out.json", strings.NewReader(`{"a":1}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if fb.path != "/tmp/out.json" {
		t.Errorf("path = %q, want /tmp/out.json", fb.path)
	}
	if string(fb.data) != `{"a":1}` {
		t.Errorf("data = %q", fb.data)
	}
}

func TestHandleWriteFileErrors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "missing path",
			url:        "/api/v1/files",
			wantStatus: http.StatusBadRequest,
			wantType:   ErrTypeBadRequest,
		},
		{
			name:       "io failure",
			url:        "/api/v1/files?path=/nope/out",
			err:        &bridge.IOError{Op: "write", Path: "/nope/out", Err: errors.New("no such file or directory")},
			wantStatus: http.StatusInternalServerError,
			wantType:   ErrTypeIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&fakeBridge{err: tt.err}, "", nil)
			req := httptest.NewRequest(http.MethodPut, tt.url, strings.NewReader("x"))
			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if errResp.Type != tt.wantType {
				t.Errorf("type = %q, want %q", errResp.Type, tt.wantType)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := New(&fakeBridge{}, "", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
