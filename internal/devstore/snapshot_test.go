package devstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kingrea/roster/internal/employee"
)

func TestSnapshotMissingFileLoadsEmpty(t *testing.T) {
	snap := NewSnapshot(filepath.Join(t.TempDir(), "employees.json"))
	records, err := snap.Load()
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty load, got %v %v", records, err)
	}
}

func TestSnapshotRoundTripKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "employees.json")
	snap := NewSnapshot(path)
	if err := snap.Save([]employee.Employee{sample("b"), sample("a")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	records, err := snap.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 || records[0].ID != "b" || records[1].ID != "a" {
		t.Fatalf("unexpected records %+v", records)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestSnapshotRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewSnapshot(path).Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestServerPersistsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.json")
	snap := NewSnapshot(path)
	settings := Settings{Host: "127.0.0.1", Port: 0, MaxBodyBytes: 4096, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
	srv := NewServer(settings, WithSnapshot(snap))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	payload, _ := json.Marshal(sample("p1"))
	resp, err := http.Post(srv.BaseURL()+"/employees", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	records, err := snap.Load()
	if err != nil || len(records) != 1 || records[0].ID != "p1" {
		t.Fatalf("snapshot not written: %+v %v", records, err)
	}
}

func TestConcurrentWritesAllReachSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshot(filepath.Join(dir, "employees.json"))
	srv := NewServer(Settings{MaxBodyBytes: 4096}, WithSnapshot(snap))
	handler := srv.Handler()

	const writers = 50
	for round := 0; round < 5; round++ {
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				payload, _ := json.Marshal(sample(id))
				req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader(payload))
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				if rec.Code != http.StatusCreated {
					t.Errorf("post %s: status %d", id, rec.Code)
				}
			}(fmt.Sprintf("r%d-%d", round, i))
		}
		wg.Wait()

		records, err := snap.Load()
		if err != nil {
			t.Fatalf("round %d: load: %v", round, err)
		}
		if len(records) != srv.Memory().Len() {
			t.Fatalf("round %d: memory holds %d, snapshot holds %d", round, srv.Memory().Len(), len(records))
		}
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}
