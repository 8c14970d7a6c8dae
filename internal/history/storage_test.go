package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
)

func newRecord(id string, createdAt time.Time) *Record {
	return &Record{
		ID:        id,
		Actions:   []string{"get_data"},
		Timestamp: uint64(createdAt.Unix()),
		CreatedAt: createdAt,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history"))
	rec := NewRecord(bridge.Call{
		Request:     bridge.NewRequest([]string{"login", "list"}, 1700000000),
		BackendPath: "/srv/addons/ppb_backend/ppb_backend_linux.bin",
		Payload:     `{"actions": ["login", "list"], "timestamp": 1700000000}`,
		Output: &bridge.Output{
			Stdout:   []byte("ok\n"),
			Stderr:   []byte("warn\n"),
			ExitCode: 0,
			Duration: 1500 * time.Millisecond,
		},
	})

	if err := store.Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load(rec.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Payload != rec.Payload {
		t.Errorf("Payload = %s, want %s", got.Payload, rec.Payload)
	}
	if strings.Join(got.Actions, ",") != "login,list" {
		t.Errorf("Actions = %v, want [login list]", got.Actions)
	}
	if got.Stdout != "ok\n" || got.Stderr != "warn\n" {
		t.Errorf("Stdout/Stderr = %q/%q", got.Stdout, got.Stderr)
	}
	if got.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", got.DurationMs)
	}
	if got.Status() != "ok" {
		t.Errorf("Status() = %q, want ok", got.Status())
	}
}

func TestStoreRecordImplementsRecorder(t *testing.T) {
	var _ bridge.Recorder = (*Store)(nil)

	store := NewStore(t.TempDir())
	err := store.Record(bridge.Call{
		Request: bridge.NewRequest(nil, 1),
		Err:     &bridge.SpawnError{Path: "/missing", Err: os.ErrNotExist},
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List() returned %d records, want 1", len(records))
	}
	if records[0].Status() != "failed" {
		t.Errorf("Status() = %q, want failed", records[0].Status())
	}
	if !strings.Contains(records[0].Error, "/missing") {
		t.Errorf("Error = %q, want spawn error text", records[0].Error)
	}
	if records[0].Actions == nil {
		t.Error("Actions = nil, want empty slice")
	}
}

func TestStoreListOrderAndCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	now := time.Now()

	older := newRecord("aaaaaaaa-0000-0000-0000-000000000001", now.Add(-time.Hour))
	newer := newRecord("bbbbbbbb-0000-0000-0000-000000000002", now)
	for _, rec := range []*Record{older, newer} {
		if err := store.Save(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	if records[0].ID != newer.ID || records[1].ID != older.ID {
		t.Errorf("List() order = [%s %s], want newest first", records[0].ID, records[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))
	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() returned %d records, want 0", len(records))
	}
	if _, err := store.GetLatest(); !errors.Is(err, ErrNoRecords) {
		t.Errorf("GetLatest() error = %v, want ErrNoRecords", err)
	}
}

func TestStoreFindByPrefix(t *testing.T) {
	store := NewStore(t.TempDir())
	now := time.Now()
	recs := []*Record{
		newRecord("abcd1111-0000-0000-0000-000000000001", now.Add(-2*time.Minute)),
		newRecord("abcd2222-0000-0000-0000-000000000002", now.Add(-time.Minute)),
		newRecord("ef015555-0000-0000-0000-000000000003", now),
	}
	for _, rec := range recs {
		if err := store.Save(rec); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		prefix  string
		wantID  string
		wantErr bool
	}{
		{name: "unique prefix", prefix: "abcd1", wantID: recs[0].ID},
		{name: "full id", prefix: recs[1].ID, wantID: recs[1].ID},
		{name: "latest", prefix: "latest", wantID: recs[2].ID},
		{name: "too short", prefix: "abc", wantErr: true},
		{name: "no match", prefix: "9999", wantErr: true},
		{name: "ambiguous", prefix: "abcd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindByPrefix(tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindByPrefix() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.ID != tt.wantID {
				t.Errorf("FindByPrefix() ID = %s, want %s", got.ID, tt.wantID)
			}
		})
	}

	_, err := store.FindByPrefix("abcd")
	var ambiguous *AmbiguousIDError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("FindByPrefix(abcd) error = %v, want *AmbiguousIDError", err)
	}
	if len(ambiguous.Matches) != 2 {
		t.Errorf("ambiguous matches = %d, want 2", len(ambiguous.Matches))
	}
}

func TestStoreDeleteAndPrune(t *testing.T) {
	store := NewStore(t.TempDir())
	now := time.Now()
	old := newRecord("11111111-0000-0000-0000-000000000001", now.AddDate(0, 0, -40))
	recent := newRecord("22222222-0000-0000-0000-000000000002", now.AddDate(0, 0, -1))
	extra := newRecord("33333333-0000-0000-0000-000000000003", now)
	for _, rec := range []*Record{old, recent, extra} {
		if err := store.Save(rec); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := store.Prune(now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d, want 1", deleted)
	}
	if _, err := store.Load(old.ID); err == nil {
		t.Error("old record still present after Prune()")
	}

	if err := store.Delete(extra.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(extra.ID); err == nil {
		t.Error("Delete() of a missing record returned nil")
	}

	records, _ := store.List()
	if len(records) != 1 || records[0].ID != recent.ID {
		t.Errorf("remaining records = %v, want only %s", records, recent.ID)
	}
}

func TestRecordStatus(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{name: "ok", rec: Record{}, want: "ok"},
		{name: "non-zero exit", rec: Record{ExitCode: 2, Error: "exited"}, want: "exit 2"},
		{name: "ignored exit", rec: Record{ExitCode: 1}, want: "exit 1"},
		{name: "spawn failure", rec: Record{Error: "no such file"}, want: "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}
