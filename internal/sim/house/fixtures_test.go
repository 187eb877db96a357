package house

import (
	"testing"

	"housecraft/internal/sim/catalogs"
	"housecraft/internal/sim/multi"
)

func TestIsFixtureIDBounds(t *testing.T) {
	cases := []struct {
		id   uint16
		want bool
	}{
		{0x674, false},
		{0x675, true},
		{0x6F4, true},
		{0x6F5, false}, // ranges are half-open
		{0x181D, true},
		{0x1829, false},
		{21, false},
		{0x9AD7, true},
		{0x9B4C, false},
	}
	for _, c := range cases {
		if got := IsFixtureID(c.id); got != c.want {
			t.Fatalf("IsFixtureID(%04X) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestClassifyTyped675Family(t *testing.T) {
	kind, spec := ClassifyFixture(0x675)
	if kind != FixtureDoor {
		t.Fatalf("kind = %v, want door", kind)
	}
	if spec.Facing != WestCW || spec.BaseID != 0x675 || spec.OpenSound != 0xEC || spec.CloseSound != 0xF3 {
		t.Fatalf("spec = %+v", spec)
	}

	_, spec = ClassifyFixture(0x677)
	if spec.Facing != EastCCW {
		t.Fatalf("facing = %v, want EastCCW", spec.Facing)
	}

	// Sub-type 3 starts a new base with its own sound pair.
	_, spec = ClassifyFixture(0x6A5)
	if spec.BaseID != 0x6A5 || spec.OpenSound != 0xEA || spec.CloseSound != 0xF1 {
		t.Fatalf("sub-type spec = %+v", spec)
	}
}

func TestClassifyTeleporter(t *testing.T) {
	kind, _ := ClassifyFixture(0x181D)
	if kind != FixtureTeleporter {
		t.Fatalf("kind = %v, want teleporter", kind)
	}
	kind, _ = ClassifyFixture(0x1828)
	if kind != FixtureTeleporter {
		t.Fatalf("kind = %v, want teleporter", kind)
	}
}

func TestClassifySlidingDoors(t *testing.T) {
	_, spec := ClassifyFixture(0x2A05)
	if spec.Facing != SouthSW {
		t.Fatalf("facing = %v, want SouthSW", spec.Facing)
	}
	if spec.OpenSound != -1 {
		t.Fatalf("open sound = %d, want silent", spec.OpenSound)
	}

	// The 0x2A0D block carries the mechanical sound.
	_, spec = ClassifyFixture(0x2A0D)
	if spec.OpenSound != 0x539 {
		t.Fatalf("open sound = %d, want 0x539", spec.OpenSound)
	}
}

func newFixtureFoundation() *Foundation {
	return NewFoundation(0x40000002, Point3D{X: 2000, Y: 2000, Z: 0}, 9, 9, StyleStone, catalogs.Default(), testWorld{})
}

func TestAddFixturesPairsDoubleDoor(t *testing.T) {
	f := newFixtureFoundation()

	f.AddFixtures([]multi.Entry{
		{ItemID: 0x675, OffsetX: 1, OffsetY: 0, OffsetZ: 7}, // west half
		{ItemID: 0x677, OffsetX: 2, OffsetY: 0, OffsetZ: 7}, // east half
	})

	fixtures := f.Fixtures()
	if len(fixtures) != 2 {
		t.Fatalf("fixtures = %d, want 2", len(fixtures))
	}
	west := fixtures[0].(*Door)
	east := fixtures[1].(*Door)
	if west.Link != east || east.Link != west {
		t.Fatalf("double door halves not linked to each other")
	}
	if west.KeyValue == "" || west.KeyValue != east.KeyValue {
		t.Fatalf("batch doors do not share a lock key")
	}
}

func TestAddFixturesLoneDoorUnlinked(t *testing.T) {
	f := newFixtureFoundation()

	f.AddFixtures([]multi.Entry{
		{ItemID: 0x675, OffsetX: 1, OffsetY: 0, OffsetZ: 7},
	})

	door := f.Fixtures()[0].(*Door)
	if door.Link != nil {
		t.Fatalf("lone door linked to %v", door.Link)
	}
	if !door.Locked {
		t.Fatalf("minted door not locked")
	}
}

func TestAddFixturesMismatchedHalvesUnlinked(t *testing.T) {
	f := newFixtureFoundation()

	// Matching facings but the wrong relative offset.
	f.AddFixtures([]multi.Entry{
		{ItemID: 0x675, OffsetX: 1, OffsetY: 0, OffsetZ: 7},
		{ItemID: 0x677, OffsetX: 3, OffsetY: 0, OffsetZ: 7},
	})

	for _, fx := range f.Fixtures() {
		if d := fx.(*Door); d.Link != nil {
			t.Fatalf("misplaced halves linked anyway")
		}
	}
}

func TestAddFixturesPairsTeleporters(t *testing.T) {
	f := newFixtureFoundation()

	f.AddFixtures([]multi.Entry{
		{ItemID: 0x181D, OffsetX: 0, OffsetY: 0, OffsetZ: 7},
		{ItemID: 0x181D, OffsetX: 3, OffsetY: 3, OffsetZ: 7},
	})

	fixtures := f.Fixtures()
	a := fixtures[0].(*Teleporter)
	b := fixtures[1].(*Teleporter)
	if a.Target != b || b.Target != a {
		t.Fatalf("teleporter pair not cross-linked")
	}
}

func TestAddFixturesLoneTeleporterUnlinked(t *testing.T) {
	f := newFixtureFoundation()

	f.AddFixtures([]multi.Entry{
		{ItemID: 0x181D, OffsetX: 0, OffsetY: 0, OffsetZ: 7},
	})

	tp := f.Fixtures()[0].(*Teleporter)
	if tp.Target != nil {
		t.Fatalf("lone teleporter linked to itself")
	}
}

func TestAddFixturesDistinctTeleporterGraphics(t *testing.T) {
	f := newFixtureFoundation()

	f.AddFixtures([]multi.Entry{
		{ItemID: 0x181D, OffsetX: 0, OffsetY: 0, OffsetZ: 7},
		{ItemID: 0x181E, OffsetX: 3, OffsetY: 3, OffsetZ: 7},
	})

	for _, fx := range f.Fixtures() {
		if tp := fx.(*Teleporter); tp.Target != nil {
			t.Fatalf("teleporters with different graphics linked")
		}
	}
}
