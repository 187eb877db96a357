package store

import (
	"path/filepath"
	"testing"

	"housecraft/internal/sim/catalogs"
	"housecraft/internal/sim/house"
)

// reopen drains the writer via Close and opens a fresh handle on the same
// database.
func reopen(t *testing.T, s *SQLiteStore, path string) *SQLiteStore {
	t.Helper()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	next, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = next.Close() })
	return next
}

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "houses.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, path := openTestStore(t)

	snap := sampleSnapshot(t)
	s.Save(snap)
	s = reopen(t, s, path)

	got, ok, err := s.Load(snap.Serial)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Serial != snap.Serial || got.LastRevision != snap.LastRevision {
		t.Fatalf("loaded serial=%08X rev=%d, want %08X rev=%d", got.Serial, got.LastRevision, snap.Serial, snap.LastRevision)
	}
	if got.Design.Components.Count() != snap.Design.Components.Count() {
		t.Fatalf("design grid lost entries on disk")
	}
}

func TestLoadMissing(t *testing.T) {
	s, _ := openTestStore(t)

	_, ok, err := s.Load(0xDEAD)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("missing serial reported present")
	}
}

func TestSaveLatestWins(t *testing.T) {
	s, path := openTestStore(t)

	f := house.FromSnapshot(sampleSnapshot(t), catalogs.Default(), noWorld{})
	s.Save(f.Snapshot())

	f.DesignState().Components().Add(22, 2, 0, 7)
	f.DesignState().OnRevised()
	s.Save(f.Snapshot())

	s = reopen(t, s, path)

	got, ok, err := s.Load(f.Serial())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.LastRevision != f.LastRevision() {
		t.Fatalf("revision = %d, want latest %d", got.LastRevision, f.LastRevision())
	}
}

func TestLoadAllOrdered(t *testing.T) {
	s, path := openTestStore(t)

	a := sampleSnapshot(t)
	b := sampleSnapshot(t)
	b.Serial = a.Serial - 1
	s.Save(a)
	s.Save(b)

	s = reopen(t, s, path)

	snaps, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("loaded %d records, want 2", len(snaps))
	}
	if snaps[0].Serial > snaps[1].Serial {
		t.Fatalf("records not ordered by serial")
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s, path := openTestStore(t)

	snap := sampleSnapshot(t)
	s.Save(snap)
	s = reopen(t, s, path)

	if err := s.Delete(snap.Serial); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Load(snap.Serial); ok {
		t.Fatalf("deleted record still present")
	}
}
