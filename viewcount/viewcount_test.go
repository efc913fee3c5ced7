package viewcount

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tripdoc/clock"
	"tripdoc/config"
)

type flakySender struct {
	failures int
	calls    []Event
}

func (s *flakySender) Send(_ context.Context, ev Event) error {
	s.calls = append(s.calls, ev)
	if len(s.calls) <= s.failures {
		return errors.New("counter unavailable")
	}
	return nil
}

func newReporter(s Sender) (*Reporter, *clock.Virtual, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	v := clock.NewVirtual(time.Unix(0, 0))
	cfg := config.ViewCountConfig{Attempts: 3, Spacing: time.Second}
	return NewReporter(cfg, s, v, zap.New(core)), v, logs
}

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		calls    int
		warned   bool
	}{
		{"first attempt", 0, 1, false},
		{"second attempt", 1, 2, false},
		{"third attempt", 2, 3, false},
		{"gives up", 5, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &flakySender{failures: tt.failures}
			r, v, logs := newReporter(s)

			var results []error
			r.OnResult(func(_ Event, err error) { results = append(results, err) })

			id := r.Report(context.Background(), "post-1")
			if len(s.calls) != 1 {
				t.Fatalf("got %d immediate attempts, want 1", len(s.calls))
			}
			v.Advance(999 * time.Millisecond)
			if len(s.calls) != 1 {
				t.Fatalf("retry before spacing elapsed")
			}
			v.Advance(10 * time.Second)

			if len(s.calls) != tt.calls {
				t.Errorf("got %d attempts, want %d", len(s.calls), tt.calls)
			}
			for _, ev := range s.calls {
				if ev.ID != id || ev.PostID != "post-1" {
					t.Errorf("unexpected event %+v", ev)
				}
			}
			if got := logs.FilterMessage("Unable to deliver view event").Len() == 1; got != tt.warned {
				t.Errorf("warning logged: got %v, want %v", got, tt.warned)
			}
			if r.Pending() != 0 {
				t.Errorf("%d retries pending", r.Pending())
			}
			if len(results) != 1 || (results[0] != nil) != tt.warned {
				t.Errorf("got results %v", results)
			}
		})
	}
}

func TestReport_Cancelled(t *testing.T) {
	s := &flakySender{failures: 5}
	r, v, _ := newReporter(s)
	ctx, cancel := context.WithCancel(context.Background())

	r.Report(ctx, "post-1")
	cancel()
	v.Advance(5 * time.Second)
	if len(s.calls) != 1 {
		t.Errorf("got %d attempts after cancel, want 1", len(s.calls))
	}
}

func TestReport_Stop(t *testing.T) {
	s := &flakySender{failures: 5}
	r, v, _ := newReporter(s)
	results, calls := map[string]error{}, 0
	r.OnResult(func(ev Event, err error) {
		results[ev.PostID] = err
		calls++
	})
	r.Report(context.Background(), "a")
	r.Report(context.Background(), "b")
	if r.Pending() != 2 {
		t.Fatalf("got %d pending, want 2", r.Pending())
	}
	r.Stop()
	v.Advance(5 * time.Second)
	if len(s.calls) != 2 || v.Pending() != 0 {
		t.Errorf("got %d attempts, %d timers", len(s.calls), v.Pending())
	}
	if len(results) != 2 || !errors.Is(results["a"], context.Canceled) || !errors.Is(results["b"], context.Canceled) {
		t.Errorf("got results %v, want both cancelled", results)
	}
	r.Stop()
	if calls != 2 {
		t.Errorf("got %d results, want 2", calls)
	}
}

func TestHTTPSender(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Authorization") != "Bearer s3cr3t" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.PostID == "missing" {
			http.Error(w, "no such post", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "s3cr3t", time.Second)
	ev := Event{PostID: "lake-bled", At: time.Unix(100, 0).UTC()}
	if err := s.Send(context.Background(), ev); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.PostID != "lake-bled" || !got.At.Equal(ev.At) {
		t.Errorf("server got %+v", got)
	}

	if err := s.Send(context.Background(), Event{PostID: "missing"}); err == nil {
		t.Error("expected error for 404")
	}
	if err := NewHTTPSender(srv.URL, "", time.Second).Send(context.Background(), ev); err == nil {
		t.Error("expected error without token")
	}
}
