package response

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewResponseDefaults(t *testing.T) {
	res := New()

	if res.IsStatusSet() {
		t.Errorf("Expected status to be unset, got %d", res.Status())
	}
	if res.EffectiveStatus() != http.StatusOK {
		t.Errorf("Expected effective status %d, got %d", http.StatusOK, res.EffectiveStatus())
	}
	if len(res.Body()) != 0 {
		t.Errorf("Expected empty body, got %q", res.Body())
	}
}

func TestHeadersOverwrite(t *testing.T) {
	res := New()
	res.SetHeader("content-type", "text/plain")
	res.SetHeader("Content-Type", "application/json")

	if v := res.Header("CONTENT-TYPE"); v != "application/json" {
		t.Errorf("Expected header %q, got %q", "application/json", v)
	}
	if len(res.Headers()) != 1 {
		t.Errorf("Expected 1 header, got %d", len(res.Headers()))
	}
}

func TestBodyMut(t *testing.T) {
	res := New()
	_, _ = res.Write([]byte("hello"))
	_, _ = res.Write([]byte(" world"))

	body := res.BodyMut()
	*body = []byte("replaced")

	if string(res.Body()) != "replaced" {
		t.Errorf("Expected body %q, got %q", "replaced", res.Body())
	}
}

func TestWriteTo(t *testing.T) {
	res := New()
	res.SetStatus(http.StatusCreated).SetHeader("X-Test", "yes").SetBody([]byte("created"))

	rr := httptest.NewRecorder()
	if err := res.WriteTo(rr); err != nil {
		t.Fatalf("WriteTo returned error: %v", err)
	}

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, rr.Code)
	}
	if rr.Header().Get("X-Test") != "yes" {
		t.Errorf("Expected X-Test header, got %q", rr.Header().Get("X-Test"))
	}
	if rr.Header().Get("Content-Length") != "7" {
		t.Errorf("Expected Content-Length 7, got %q", rr.Header().Get("Content-Length"))
	}
	if rr.Body.String() != "created" {
		t.Errorf("Expected body %q, got %q", "created", rr.Body.String())
	}
}

func TestWriteToUnsetStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	if err := New().WriteTo(rr); err != nil {
		t.Fatalf("WriteTo returned error: %v", err)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
