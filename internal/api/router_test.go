package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/config"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"github.com/kcirtapfromspace/offleash-sub001/internal/services"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)

type fakeFinder struct {
	got   services.AvailabilityRequest
	slots []domain.AvailableSlot
	err   error
}

func (f *fakeFinder) FindSlots(_ context.Context, req services.AvailabilityRequest, _ config.EngineConfig) ([]domain.AvailableSlot, error) {
	f.got = req
	return f.slots, f.err
}

type fakeOptimizer struct {
	got []domain.RouteBooking
}

func (f *fakeOptimizer) Optimize(_ context.Context, b []domain.RouteBooking) (domain.OptimizedRoute, error) {
	f.got = b
	stops := make([]domain.RouteStop, len(b))
	for i, bk := range b {
		stops[i] = domain.RouteStop{Sequence: i + 1, BookingID: bk.ID, LocationID: bk.LocationID}
	}
	return domain.OptimizedRoute{Stops: stops, TotalTravel: 90 * time.Second, Confidence: domain.ConfidenceMedium}, nil
}

type fakeBookings struct {
	day time.Time
}

func (f *fakeBookings) RouteBookings(_ context.Context, _ string, day time.Time) ([]domain.RouteBooking, error) {
	f.day = day
	return []domain.RouteBooking{{ID: "bk-1", LocationID: "loc-a"}, {ID: "bk-2", LocationID: "loc-b"}}, nil
}

type fakeFeed struct {
	walkerID string
	pos      ports.Position
}

func (f *fakeFeed) Latest(context.Context, string) (ports.Position, bool, error) {
	return f.pos, f.walkerID != "", nil
}

func (f *fakeFeed) Record(_ context.Context, walkerID string, p ports.Position) error {
	f.walkerID, f.pos = walkerID, p
	return nil
}

func newTestRouter(t *testing.T, finder *fakeFinder, opt *fakeOptimizer, bookings *fakeBookings, feed ports.PositionFeed) http.Handler {
	t.Helper()
	cfg, err := config.NewEngineConfig(config.DefaultEngineOptions())
	if err != nil {
		t.Fatalf("engine config: %v", err)
	}
	return NewRouter(Dependencies{
		Engine:       finder,
		EngineConfig: cfg,
		Optimizer:    opt,
		Bookings:     bookings,
		Positions:    feed,
		Now:          func() time.Time { return fixedNow },
		Logger:       zaptest.NewLogger(t),
	})
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, &fakeFinder{}, &fakeOptimizer{}, &fakeBookings{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d, want 405", rec.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestRouter(t, &fakeFinder{}, &fakeOptimizer{}, &fakeBookings{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestAvailabilityParsesQuery(t *testing.T) {
	travel := 25 * time.Minute
	finder := &fakeFinder{slots: []domain.AvailableSlot{{
		Start:              time.Date(2026, 6, 2, 15, 0, 0, 0, time.UTC),
		End:                time.Date(2026, 6, 2, 16, 0, 0, 0, time.UTC),
		TravelFromPrevious: &travel,
		Confidence:         domain.ConfidenceHigh,
	}}}
	h := newTestRouter(t, finder, &fakeOptimizer{}, &fakeBookings{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/availability?walker_id=w1&from=2026-06-02&to=2026-06-03&duration_minutes=60&location_id=loc-b&lat=39.75&lon=-104.95", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	got := finder.got
	if got.WalkerID != "w1" || got.ServiceDuration != time.Hour || !got.Now.Equal(fixedNow) {
		t.Fatalf("request = %+v", got)
	}
	if got.Target == nil || got.Target.ID != "loc-b" || got.Target.Coords.Lat != 39.75 {
		t.Fatalf("target = %+v, want loc-b with coordinates", got.Target)
	}
	if got.Range.End.Format(time.DateOnly) != "2026-06-03" {
		t.Fatalf("range end = %s, want 2026-06-03", got.Range.End)
	}

	var body struct {
		Slots []struct {
			Confidence string `json:"confidence"`
			Travel     *int64 `json:"travel_from_previous_seconds"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Slots) != 1 || body.Slots[0].Confidence != "high" || body.Slots[0].Travel == nil || *body.Slots[0].Travel != 1500 {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestAvailabilityBadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
		err   error
	}{
		{"missing walker", "from=2026-06-02&duration_minutes=60", nil},
		{"bad date", "walker_id=w1&from=06/02/2026&duration_minutes=60", nil},
		{"bad duration", "walker_id=w1&from=2026-06-02&duration_minutes=an-hour", nil},
		{"lat without lon", "walker_id=w1&from=2026-06-02&duration_minutes=60&lat=39.7", nil},
		{"engine rejects", "walker_id=w1&from=2026-06-02&duration_minutes=0", fmt.Errorf("find slots: %w: service duration must be positive", domain.ErrInvalidInput)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &fakeFinder{err: tt.err}, &fakeOptimizer{}, &fakeBookings{}, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/availability?"+tt.query, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAvailabilityInternalErrorIsHidden(t *testing.T) {
	finder := &fakeFinder{err: errors.New("find slots: walker \"w1\": connection refused")}
	h := newTestRouter(t, finder, &fakeOptimizer{}, &fakeBookings{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/availability?walker_id=w1&from=2026-06-02&duration_minutes=60", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestOptimizeRoute(t *testing.T) {
	opt := &fakeOptimizer{}
	bookings := &fakeBookings{}
	h := newTestRouter(t, &fakeFinder{}, opt, bookings, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/optimize",
		strings.NewReader(`{"walker_id":"w1","date":"2026-06-02"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if bookings.day.Format(time.DateOnly) != "2026-06-02" || len(opt.got) != 2 {
		t.Fatalf("day = %s, bookings = %d", bookings.day, len(opt.got))
	}

	var body struct {
		Stops       []struct{ BookingID string `json:"booking_id"` } `json:"stops"`
		TotalTravel int64                                           `json:"total_travel_seconds"`
		Confidence  string                                          `json:"confidence"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Stops) != 2 || body.TotalTravel != 90 || body.Confidence != "medium" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestOptimizeRouteRejectsBadBody(t *testing.T) {
	h := newTestRouter(t, &fakeFinder{}, &fakeOptimizer{}, &fakeBookings{}, nil)

	for _, body := range []string{
		`{"walker_id":"w1"}`,
		`{"date":"2026-06-02"}`,
		`{"walker_id":"w1","date":"2026-06-02","extra":true}`,
		`{"walker_id":"w1","date":"2026-06-02"}{}`,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/optimize", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestRecordPosition(t *testing.T) {
	feed := &fakeFeed{}
	h := newTestRouter(t, &fakeFinder{}, &fakeOptimizer{}, &fakeBookings{}, feed)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/walkers/position",
		strings.NewReader(`{"walker_id":"w1","lat":39.74,"lon":-104.99}`)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body=%s", rec.Code, rec.Body.String())
	}
	if feed.walkerID != "w1" || feed.pos.Coords.Lat != 39.74 || !feed.pos.RecordedAt.Equal(fixedNow) {
		t.Fatalf("recorded %q %+v", feed.walkerID, feed.pos)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/walkers/position",
		strings.NewReader(`{"walker_id":"w1","lat":120,"lon":-104.99}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range status = %d, want 400", rec.Code)
	}
}

func TestRecordPositionWithoutFeed(t *testing.T) {
	h := newTestRouter(t, &fakeFinder{}, &fakeOptimizer{}, &fakeBookings{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/walkers/position",
		strings.NewReader(`{"walker_id":"w1","lat":39.74,"lon":-104.99}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
