package store

import (
	"testing"

	"housecraft/internal/sim/catalogs"
	"housecraft/internal/sim/house"
	"housecraft/internal/sim/multi"
)

type noWorld struct{}

func (noWorld) ItemsIn(house.Rect2D) []house.Entity   { return nil }
func (noWorld) MobilesIn(house.Rect2D) []house.Mobile { return nil }

func sampleSnapshot(t *testing.T) house.Snapshot {
	t.Helper()
	f := house.NewFoundation(0x40001234, house.Point3D{X: 1400, Y: 1200, Z: 5}, 9, 8, house.StyleBrick, catalogs.Default(), noWorld{})
	f.SetPrice(64500)

	design := f.DesignState()
	design.Components().Add(21, 0, 0, 7)
	design.Components().Add(0x675, 1, 0, 7)
	design.MeltFixtures()

	return f.Snapshot()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := sampleSnapshot(t)

	got, err := Decode(Encode(snap))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Serial != snap.Serial || got.Location != snap.Location {
		t.Fatalf("identity mismatch: %+v vs %+v", got, snap)
	}
	if got.Style != snap.Style || got.Price != snap.Price || got.SignpostGraphic != snap.SignpostGraphic {
		t.Fatalf("attributes mismatch: %+v", got)
	}
	if got.LastRevision != snap.LastRevision {
		t.Fatalf("revision = %d, want %d", got.LastRevision, snap.LastRevision)
	}

	if got.Design.Revision != snap.Design.Revision {
		t.Fatalf("design revision = %d, want %d", got.Design.Revision, snap.Design.Revision)
	}
	wantEntries := snap.Design.Components.Entries()
	gotEntries := got.Design.Components.Entries()
	if len(gotEntries) != len(wantEntries) {
		t.Fatalf("design entries = %d, want %d", len(gotEntries), len(wantEntries))
	}
	for i := range wantEntries {
		if gotEntries[i] != wantEntries[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, gotEntries[i], wantEntries[i])
		}
	}
	if len(got.Design.Fixtures) != 1 || got.Design.Fixtures[0].ItemID != 0x675 {
		t.Fatalf("fixtures not preserved: %+v", got.Design.Fixtures)
	}
	if got.Design.Components.Center() != snap.Design.Components.Center() {
		t.Fatalf("grid anchor not preserved")
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	b := Encode(sampleSnapshot(t))
	b[0] = 99

	if _, err := Decode(b); err == nil {
		t.Fatalf("unknown version accepted")
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	b := Encode(sampleSnapshot(t))

	for _, n := range []int{0, 3, 16, len(b) / 2, len(b) - 1} {
		if _, err := Decode(b[:n]); err == nil {
			t.Fatalf("truncated record of %d bytes accepted", n)
		}
	}
}

func TestSnapshotRestoreRebuildsFixtures(t *testing.T) {
	f := house.NewFoundation(0x40004321, house.Point3D{X: 1500, Y: 1500, Z: 0}, 7, 7, house.StyleStone, catalogs.Default(), noWorld{})

	design := f.DesignState()
	design.Components().Add(0x675, 1, 0, 7)
	design.MeltFixtures()
	// Mimic a committed door by copying the melted design into current.
	fixtures := design.Fixtures()

	snap := f.Snapshot()
	snap.Current = house.StateSnapshot{
		Components: multi.NewFromEntries(7, 8, multi.Point{X: 3, Y: 3}, nil),
		Fixtures:   fixtures,
		Revision:   snap.Design.Revision,
	}

	decoded, err := Decode(Encode(snap))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	restored := house.FromSnapshot(decoded, catalogs.Default(), noWorld{})
	if len(restored.Fixtures()) != 1 {
		t.Fatalf("restored fixtures = %d, want 1", len(restored.Fixtures()))
	}
	if restored.LastRevision() != f.LastRevision() {
		t.Fatalf("restored revision counter = %d, want %d", restored.LastRevision(), f.LastRevision())
	}
}
