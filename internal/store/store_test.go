package store

import (
	"path/filepath"
	"testing"

	hub "github.com/seniorjoinu/ic-event-hub"
)

func TestLoadOnFreshStoreReportsNotOK(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false on a database with nothing saved")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	want := hub.Snapshot{
		BatchMaxAgeNS:     1000,
		BatchMaxSizeBytes: 2048,
		Filters: []hub.SnapshotFilter{
			{
				Topics:    []hub.Field{{Name: hub.EventNameField, Value: []byte("order_placed")}},
				Endpoints: []hub.Endpoint{{Principal: hub.Principal{1}, Method: "on_order"}},
			},
		},
	}

	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true after a Save")
	}
	if got.BatchMaxAgeNS != want.BatchMaxAgeNS || got.BatchMaxSizeBytes != want.BatchMaxSizeBytes {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if len(got.Filters) != 1 || len(got.Filters[0].Endpoints) != 1 {
		t.Fatalf("got %+v, want one filter with one endpoint", got.Filters)
	}
	if got.Filters[0].Endpoints[0] != want.Filters[0].Endpoints[0] {
		t.Fatalf("got endpoint %+v, want %+v", got.Filters[0].Endpoints[0], want.Filters[0].Endpoints[0])
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Save(hub.Snapshot{BatchMaxAgeNS: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(hub.Snapshot{BatchMaxAgeNS: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load()
	if err != nil || !ok {
		t.Fatalf("Load: %v, ok=%v", err, ok)
	}
	if got.BatchMaxAgeNS != 2 {
		t.Fatalf("BatchMaxAgeNS = %d, want 2", got.BatchMaxAgeNS)
	}
}
