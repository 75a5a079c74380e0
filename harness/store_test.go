package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func sampleReport(id string) *RunReport {
	return &RunReport{
		ID:     id,
		Suite:  "sample",
		Passed: 1,
		Cases: []CaseReport{
			{Name: "hello", Verdict: VerdictPass, Engine: "js"},
		},
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStore(dir)

	want := sampleReport("run-1")
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "run-1.json")); err != nil {
		t.Fatalf("report file: %v", err)
	}

	got, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Suite != want.Suite || got.Passed != want.Passed {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
	if len(got.Cases) != 1 || got.Cases[0].Verdict != VerdictPass {
		t.Errorf("Cases = %+v, want one pass", got.Cases)
	}
}

func TestDiskStore_LazyTempDir(t *testing.T) {
	s := NewDiskStore("")
	if err := s.Save(sampleReport("run-2")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dir, err := s.Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	if _, err := s.Load("run-2"); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestDiskStore_MissingReport(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	if _, err := s.Load("never-saved"); err == nil {
		t.Fatal("expected error for unknown run ID")
	}
}

// countingStore records how often the backing store is hit.
type countingStore struct {
	reports map[string]*RunReport
	loads   int
}

func newCountingStore() *countingStore {
	return &countingStore{reports: make(map[string]*RunReport)}
}

func (s *countingStore) Save(report *RunReport) error {
	s.reports[report.ID] = report
	return nil
}

func (s *countingStore) Load(runID string) (*RunReport, error) {
	s.loads++
	report, ok := s.reports[runID]
	if !ok {
		return nil, fmt.Errorf("no report %s", runID)
	}
	return report, nil
}

func TestLRUStore_ServesFromCache(t *testing.T) {
	back := newCountingStore()
	s := NewLRUStore(2, back)

	if err := s.Save(sampleReport("a")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load("a"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.loads != 0 {
		t.Errorf("backing loads = %d, want 0 (cache hit)", back.loads)
	}
}

func TestLRUStore_EvictsLeastRecent(t *testing.T) {
	back := newCountingStore()
	s := NewLRUStore(2, back)

	for _, id := range []string{"a", "b"} {
		if err := s.Save(sampleReport(id)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	// Touch a so that b is the eviction candidate.
	if _, err := s.Load("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(sampleReport("c")); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load("b"); err != nil {
		t.Fatalf("Load b: %v", err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want 1 (b was evicted)", back.loads)
	}
	// Promoting b back in evicted a, while c stayed cached.
	if _, err := s.Load("c"); err != nil {
		t.Fatalf("Load c: %v", err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want still 1 (c stayed cached)", back.loads)
	}
}

func TestLRUStore_MissPropagates(t *testing.T) {
	s := NewLRUStore(2, newCountingStore())
	if _, err := s.Load("nope"); err == nil {
		t.Fatal("expected error from backing store")
	}
}
