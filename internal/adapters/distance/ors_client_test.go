package distance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

func newTestORSClient(t *testing.T, h http.HandlerFunc) *ORSClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewORSClient("test-key", srv.URL, "driving-car", 5*time.Second, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestORSClientRoute(t *testing.T) {
	var gotReq matrixRequest
	c := newTestORSClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/matrix/driving-car" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"distances":[[4210.6]],"durations":[[599.5]]}`))
	})

	leg, err := c.Route(context.Background(), domain.Coordinates{Lon: -104.99, Lat: 39.74}, domain.Coordinates{Lon: -104.95, Lat: 39.75})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.DistanceMeters != 4211 || leg.DurationSeconds != 600 {
		t.Fatalf("leg = %+v, want 4211m / 600s", leg)
	}

	if len(gotReq.Locations) != 2 || gotReq.Locations[0][0] != -104.99 {
		t.Fatalf("locations = %v, want [lon, lat] pairs", gotReq.Locations)
	}
	if len(gotReq.Sources) != 1 || gotReq.Sources[0] != 0 {
		t.Fatalf("sources = %v, want [0]", gotReq.Sources)
	}
}

func TestORSClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestORSClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"distances":[[1000]],"durations":[[120]]}`))
	})

	leg, err := c.Route(context.Background(), domain.Coordinates{Lon: 1, Lat: 1}, domain.Coordinates{Lon: 2, Lat: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.DurationSeconds != 120 {
		t.Fatalf("duration = %d, want 120", leg.DurationSeconds)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestORSClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestORSClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad coordinates", http.StatusBadRequest)
	})

	if _, err := c.Route(context.Background(), domain.Coordinates{Lon: 1, Lat: 1}, domain.Coordinates{Lon: 2, Lat: 2}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestORSClientUnreachableDestination(t *testing.T) {
	c := newTestORSClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"distances":[[null]],"durations":[[null]]}`))
	})

	if _, err := c.Route(context.Background(), domain.Coordinates{Lon: 1, Lat: 1}, domain.Coordinates{Lon: 2, Lat: 2}); err == nil {
		t.Fatal("expected error for null matrix cell")
	}
}

func TestNewORSClientRequiresKey(t *testing.T) {
	if _, err := NewORSClient(" ", "", "", 0, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
