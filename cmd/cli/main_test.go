package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestRequestSendsIdentityHeaders(t *testing.T) {
	var gotID, gotRole string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-User-ID")
		gotRole = r.Header.Get("X-User-Role")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	baseURL = server.URL
	userID = "teacher-1"
	role = "PROFESSOR"
	t.Cleanup(func() { baseURL, userID, role = "", "", "" })

	body, err := request(http.MethodGet, "/api/v1/rules", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if gotID != "teacher-1" || gotRole != "PROFESSOR" {
		t.Fatalf("expected identity headers, got id=%q role=%q", gotID, gotRole)
	}

	if !strings.Contains(string(body), "ok") {
		t.Fatalf("expected response body, got %s", body)
	}
}

func TestRequestFailsOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	baseURL = server.URL
	t.Cleanup(func() { baseURL = "" })

	if _, err := request(http.MethodGet, "/api/v1/rules", nil); err == nil {
		t.Fatalf("expected error for 403 response")
	}
}
