package history

import (
	"testing"
	"time"

	"cjd/internal/errors"
	"cjd/internal/logging"
	"cjd/internal/normalize"
	"cjd/internal/paths"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	if err := paths.EnsureDir(root); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	store, err := Open(root, logging.NewDiscard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(file string, created time.Time) *Run {
	return &Run{
		File:        file,
		SortBy:      "key",
		RemoveEmpty: true,
		Modified:    true,
		Stats: normalize.Stats{
			TotalEntries:        4,
			DuplicatesFound:     1,
			DuplicatesRemoved:   1,
			EntriesWithValue:    2,
			EntriesWithoutValue: 1,
		},
		Checksum:   "abc123",
		DurationMs: 12,
		CreatedAt:  created,
	}
}

func TestOpen_RequiresInit(t *testing.T) {
	root := t.TempDir() // no .cjd directory

	_, err := Open(root, logging.NewDiscard())
	if err == nil {
		t.Fatal("Open() = nil, want error for uninitialized project")
	}
	if !errors.HasCode(err, errors.HistoryUnavailable) {
		t.Errorf("error code = %v, want %v", errors.CodeOf(err), errors.HistoryUnavailable)
	}
}

func TestStore_RecordAndList(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []*Run{
		testRun("a.json", base),
		testRun("b.json", base.Add(1*time.Minute)),
		testRun("a.json", base.Add(2*time.Minute)),
	}
	for _, run := range runs {
		if err := store.RecordRun(run); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	all, err := store.ListRuns("", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(ListRuns()) = %d, want 3", len(all))
	}
	// Newest first
	if all[0].File != "a.json" || !all[0].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Errorf("first run = %s at %v, want newest a.json", all[0].File, all[0].CreatedAt)
	}
	if all[2].CreatedAt.After(all[1].CreatedAt) {
		t.Error("runs are not ordered newest first")
	}

	// Field round trip
	got := all[0]
	if got.ID == "" {
		t.Error("ID was not filled in")
	}
	if got.SortBy != "key" {
		t.Errorf("SortBy = %q, want %q", got.SortBy, "key")
	}
	if !got.RemoveEmpty || !got.Modified {
		t.Error("boolean fields did not round-trip")
	}
	if got.Stats.TotalEntries != 4 || got.Stats.DuplicatesRemoved != 1 {
		t.Errorf("Stats = %+v, want the recorded values", got.Stats)
	}
	if got.Checksum != "abc123" {
		t.Errorf("Checksum = %q, want %q", got.Checksum, "abc123")
	}
	if got.DurationMs != 12 {
		t.Errorf("DurationMs = %d, want 12", got.DurationMs)
	}

	// File filter
	aOnly, err := store.ListRuns("a.json", 0)
	if err != nil {
		t.Fatalf("ListRuns(a.json) error = %v", err)
	}
	if len(aOnly) != 2 {
		t.Errorf("len(ListRuns(a.json)) = %d, want 2", len(aOnly))
	}
	for _, run := range aOnly {
		if run.File != "a.json" {
			t.Errorf("filtered run has file %q", run.File)
		}
	}

	// Limit
	limited, err := store.ListRuns("", 2)
	if err != nil {
		t.Fatalf("ListRuns(limit=2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(ListRuns(limit=2)) = %d, want 2", len(limited))
	}
}

func TestStore_RecordRun_Validation(t *testing.T) {
	store := openTestStore(t)

	if err := store.RecordRun(&Run{}); err == nil {
		t.Error("RecordRun() without file = nil, want error")
	}

	run := testRun("a.json", time.Time{})
	if err := store.RecordRun(run); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if run.ID == "" {
		t.Error("RecordRun() did not generate an ID")
	}
	if run.CreatedAt.IsZero() {
		t.Error("RecordRun() did not set a timestamp")
	}
}

func TestStore_Totals(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if empty.Runs != 0 || empty.Files != 0 || empty.DuplicatesRemoved != 0 {
		t.Errorf("Totals() on empty store = %+v, want zeros", empty)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, file := range []string{"a.json", "a.json", "b.json"} {
		if err := store.RecordRun(testRun(file, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	totals, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if totals.Runs != 3 {
		t.Errorf("Runs = %d, want 3", totals.Runs)
	}
	if totals.Files != 2 {
		t.Errorf("Files = %d, want 2", totals.Files)
	}
	if totals.DuplicatesFound != 3 {
		t.Errorf("DuplicatesFound = %d, want 3", totals.DuplicatesFound)
	}
	if totals.DuplicatesRemoved != 3 {
		t.Errorf("DuplicatesRemoved = %d, want 3", totals.DuplicatesRemoved)
	}
}

func TestStore_Checksums(t *testing.T) {
	store := openTestStore(t)

	got, err := store.LookupChecksum("a.json")
	if err != nil {
		t.Fatalf("LookupChecksum() error = %v", err)
	}
	if got != "" {
		t.Errorf("LookupChecksum() on empty store = %q, want empty", got)
	}

	if err := store.StoreChecksum("a.json", "sum1"); err != nil {
		t.Fatalf("StoreChecksum() error = %v", err)
	}
	got, err = store.LookupChecksum("a.json")
	if err != nil {
		t.Fatalf("LookupChecksum() error = %v", err)
	}
	if got != "sum1" {
		t.Errorf("LookupChecksum() = %q, want %q", got, "sum1")
	}

	// Replacing updates in place
	if err := store.StoreChecksum("a.json", "sum2"); err != nil {
		t.Fatalf("StoreChecksum() error = %v", err)
	}
	got, _ = store.LookupChecksum("a.json")
	if got != "sum2" {
		t.Errorf("LookupChecksum() after update = %q, want %q", got, "sum2")
	}
}

func TestStore_Prune(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := store.RecordRun(testRun("a.json", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	removed, err := store.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune(2) removed %d runs, want 3", removed)
	}

	left, err := store.ListRuns("", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("len(ListRuns()) after prune = %d, want 2", len(left))
	}
	// The newest two survive
	if !left[0].CreatedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("newest surviving run at %v, want %v", left[0].CreatedAt, base.Add(4*time.Minute))
	}

	// keep <= 0 means unlimited
	removed, err = store.Prune(0)
	if err != nil {
		t.Fatalf("Prune(0) error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Prune(0) removed %d runs, want 0", removed)
	}
}

func TestStore_Reopen(t *testing.T) {
	root := t.TempDir()
	if err := paths.EnsureDir(root); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	store, err := Open(root, logging.NewDiscard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.RecordRun(testRun("a.json", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(root, logging.NewDiscard())
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.ListRuns("", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("len(ListRuns()) after reopen = %d, want 1", len(runs))
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("hello"))
	b := Checksum([]byte("hello"))
	c := Checksum([]byte("world"))

	if a != b {
		t.Errorf("Checksum() is not stable: %s != %s", a, b)
	}
	if a == c {
		t.Error("Checksum() collides on different content")
	}
	if len(a) != 64 {
		t.Errorf("len(Checksum()) = %d, want 64 hex chars", len(a))
	}
}
