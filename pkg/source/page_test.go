package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dailybrief/pkg/domain"
)

func dailyRequest() domain.RequestDescriptor {
	return domain.RequestDescriptor{
		Kind: domain.ScrapedText,
		Parameters: map[string]string{
			domain.ParamDay:   "19",
			domain.ParamMonth: "1",
		},
		Cadence: true,
	}
}

func TestPageSource_FetchSuccess(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.RequestURI()
		w.Write([]byte(`<html><body><h2>19 Gennaio</h2></body></html>`))
	}))
	defer server.Close()

	src := NewPageSource(server.URL+"/?mese=%d", nil)
	raw, err := src.Fetch(context.Background(), dailyRequest())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if requestedPath != "/?mese=1" {
		t.Errorf("Expected month-templated path /?mese=1, got %q", requestedPath)
	}
	if !strings.Contains(string(raw.Body), "19 Gennaio") {
		t.Errorf("Expected body to contain page content, got %q", raw.Body)
	}
	if raw.SourceID != server.URL+"/?mese=1" {
		t.Errorf("Expected source ID to be the fetched URL, got %q", raw.SourceID)
	}
	if raw.FetchedAt.IsZero() {
		t.Error("Expected fetch timestamp to be set")
	}
}

func TestPageSource_NonSuccessStatusIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewPageSource(server.URL+"/?mese=%d", nil)
	_, err := src.Fetch(context.Background(), dailyRequest())
	if err == nil {
		t.Fatal("Expected error for 500 response, got nil")
	}
	if !IsTransient(err) {
		t.Errorf("Expected transient fetch error, got: %v", err)
	}
}

func TestPageSource_NetworkErrorIsTransient(t *testing.T) {
	// Server is closed before the fetch, so the connection is refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	src := NewPageSource(server.URL+"/?mese=%d", nil)
	_, err := src.Fetch(context.Background(), dailyRequest())
	if err == nil {
		t.Fatal("Expected error for unreachable server, got nil")
	}
	if !IsTransient(err) {
		t.Errorf("Expected transient fetch error, got: %v", err)
	}
}

func TestPageSource_InvalidMonth(t *testing.T) {
	req := domain.RequestDescriptor{
		Kind:       domain.ScrapedText,
		Parameters: map[string]string{domain.ParamDay: "19", domain.ParamMonth: "not-a-month"},
	}

	src := NewPageSource("http://localhost/?mese=%d", nil)
	if _, err := src.Fetch(context.Background(), req); err == nil {
		t.Fatal("Expected error for invalid month parameter, got nil")
	}
}
