// internal/history/boltstore_test.go
package history

import (
    "encoding/json"
    "path/filepath"
    "testing"
)

type fakeReport struct {
    ID string `json:"id"`
}

func openStore(t *testing.T, retention int) *BoltStore {
    t.Helper()
    store, err := Open(filepath.Join(t.TempDir(), "runs.db"), retention)
    if err != nil {
        t.Fatalf("failed to open store: %v", err)
    }
    t.Cleanup(func() { store.Close() })
    return store
}

func TestSaveAndRecentRunsOrder(t *testing.T) {
    store := openStore(t, 10)

    for _, id := range []string{"run-1", "run-2", "run-3"} {
        if err := store.SaveRun(fakeReport{ID: id}); err != nil {
            t.Fatalf("save %s: %v", id, err)
        }
    }

    runs, err := store.RecentRuns(2)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(runs) != 2 {
        t.Fatalf("runs = %d, want 2", len(runs))
    }

    var first fakeReport
    if err := json.Unmarshal(runs[0], &first); err != nil {
        t.Fatalf("bad payload: %v", err)
    }
    if first.ID != "run-3" {
        t.Fatalf("most recent run = %q, want run-3", first.ID)
    }
}

func TestRetentionPrunesOldest(t *testing.T) {
    store := openStore(t, 3)

    for _, id := range []string{"a", "b", "c", "d", "e"} {
        if err := store.SaveRun(fakeReport{ID: id}); err != nil {
            t.Fatalf("save %s: %v", id, err)
        }
    }

    runs, err := store.RecentRuns(0)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(runs) != 3 {
        t.Fatalf("retained = %d, want 3", len(runs))
    }

    var oldest fakeReport
    if err := json.Unmarshal(runs[len(runs)-1], &oldest); err != nil {
        t.Fatalf("bad payload: %v", err)
    }
    if oldest.ID != "c" {
        t.Fatalf("oldest retained = %q, want c", oldest.ID)
    }
}
