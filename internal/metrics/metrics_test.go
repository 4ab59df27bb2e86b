package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"just host", "example.com", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"ip address", "192.168.1.1", "192.168.1.1"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if fetchAttemptsTotal == nil || extractedItemsTotal == nil ||
		publishResultsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveHelpers(t *testing.T) {
	Init()
	ObserveFetch("https://Portal.example.com/noticias", "ok", 512)
	if val := testutil.ToFloat64(fetchAttemptsTotal.WithLabelValues("portal.example.com", "ok")); val != 1 {
		t.Errorf("fetch attempts = %f, want 1", val)
	}
	if val := testutil.ToFloat64(fetchBytesTotal.WithLabelValues("portal.example.com")); val != 512 {
		t.Errorf("fetch bytes = %f, want 512", val)
	}

	ObserveExtracted("PV Magazine LATAM", "synthetic", 3)
	if val := testutil.ToFloat64(extractedItemsTotal.WithLabelValues("PV Magazine LATAM", "synthetic")); val != 3 {
		t.Errorf("extracted = %f, want 3", val)
	}

	ObservePublish("simulated")
	ObservePublish("simulated")
	if val := testutil.ToFloat64(publishResultsTotal.WithLabelValues("simulated")); val != 2 {
		t.Errorf("publish = %f, want 2", val)
	}

	ObserveStageDuration("discover", 0)
	if n := testutil.CollectAndCount(stageDurationSeconds); n == 0 {
		t.Error("expected stage duration samples")
	}
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
