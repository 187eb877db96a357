package house

import (
	"sort"

	"github.com/google/uuid"

	"housecraft/internal/sim/multi"
)

// Facing is a door's hinge orientation. The numeric order matches the
// legacy client's and must not change: generic door graphics encode the
// facing as (itemID-base)/2 % 8.
type Facing int

const (
	WestCW Facing = iota
	EastCCW
	WestCCW
	EastCW
	SouthCW
	NorthCCW
	SouthCCW
	NorthCW
	// Sliding doors.
	SouthSW
	SouthSE
	WestSN
	WestSS
)

// fixtureRanges lists every item-id interval (half-open) that melts out of
// the grid as a fixture. Kept sorted for binary search; the values are the
// legacy client's and are load-bearing for wire compatibility.
var fixtureRanges = [][2]uint16{
	{0x0E8, 0x0F8},
	{0x314, 0x364},
	{0x675, 0x6F5},
	{0x824, 0x834},
	{0x839, 0x849},
	{0x84C, 0x85C},
	{0x866, 0x876},
	{0x181D, 0x1829},
	{0x1FED, 0x1FFD},
	{0x241F, 0x2421},
	{0x2423, 0x2425},
	{0x2A05, 0x2A1D},
	{0x2D46, 0x2D47},
	{0x2D48, 0x2D49},
	{0x2D63, 0x2D70},
	{0x2FE2, 0x2FE3},
	{0x2FE4, 0x2FE5},
	{0x319C, 0x31B0},
	{0x367B, 0x369B},
	{0x409B, 0x40A3},
	{0x410C, 0x4114},
	{0x41C2, 0x41CA},
	{0x41CF, 0x41D7},
	{0x436E, 0x437E},
	{0x46DD, 0x46E5},
	{0x4D22, 0x4D2A},
	{0x50C8, 0x50D8},
	{0x5142, 0x514A},
	{0x9AD7, 0x9AE7},
	{0x9B3C, 0x9B4C},
}

// IsFixtureID reports whether an item id is a door or teleporter graphic.
func IsFixtureID(id uint16) bool {
	i := sort.Search(len(fixtureRanges), func(i int) bool { return fixtureRanges[i][1] > id })
	return i < len(fixtureRanges) && fixtureRanges[i][0] <= id
}

// Door is a live door entity instantiated from a melted fixture entry.
type Door struct {
	serial     uint32
	ItemID     uint16
	loc        Point3D
	Facing     Facing
	BaseID     uint16
	OpenSound  int
	CloseSound int
	Locked     bool
	KeyValue   string
	Link       *Door
}

func (d *Door) Serial() uint32        { return d.serial }
func (d *Door) Location() Point3D     { return d.loc }
func (d *Door) SetLocation(p Point3D) { d.loc = p }

// Teleporter is a live in-house teleporter entity.
type Teleporter struct {
	serial uint32
	ItemID uint16
	loc    Point3D
	Target *Teleporter
}

func (t *Teleporter) Serial() uint32        { return t.serial }
func (t *Teleporter) Location() Point3D     { return t.loc }
func (t *Teleporter) SetLocation(p Point3D) { t.loc = p }

// FixtureKind tags the result of classifying an item id.
type FixtureKind int

const (
	FixtureNone FixtureKind = iota
	FixtureDoor
	FixtureTeleporter
)

// DoorSpec describes how to instantiate a classified door graphic.
type DoorSpec struct {
	Facing     Facing
	BaseID     uint16
	OpenSound  int
	CloseSound int
}

type doorFamily int

const (
	famTeleporter doorFamily = iota
	famTyped16              // per-16 sub-type selects base and sound pair
	famSimple               // base is the range start, facing from offset
	famFixed                // fixed facing and base for the whole range
	fam2A05                 // paired 4-facing pattern with conditional sound
	fam2D63
	fam319C
	fam367B
	famSA
	fam436E
)

type doorRange struct {
	lo, hi     uint16 // half-open
	family     doorFamily
	base       uint16
	facing     Facing // famFixed only
	openSound  int
	closeSound int
}

// doorRanges drives classification; sorted by lo, binary-searched. The
// numeric content mirrors the legacy client's door graphic layout.
var doorRanges = []doorRange{
	{lo: 0x0E8, hi: 0x0F8, family: famSimple, base: 0x0E8, openSound: 0xED, closeSound: 0xF4},
	{lo: 0x314, hi: 0x364, family: famTyped16, base: 0x314, openSound: 0xED, closeSound: 0xF4},
	{lo: 0x675, hi: 0x6F5, family: famTyped16, base: 0x675},
	{lo: 0x824, hi: 0x834, family: famSimple, base: 0x824, openSound: 0xEC, closeSound: 0xF3},
	{lo: 0x839, hi: 0x849, family: famSimple, base: 0x839, openSound: 0xEB, closeSound: 0xF2},
	{lo: 0x84C, hi: 0x85C, family: famSimple, base: 0x84C, openSound: 0xEC, closeSound: 0xF3},
	{lo: 0x866, hi: 0x876, family: famSimple, base: 0x866, openSound: 0xEB, closeSound: 0xF2},
	{lo: 0x181D, hi: 0x1829, family: famTeleporter},
	{lo: 0x1FED, hi: 0x1FFD, family: famSimple, base: 0x1FED, openSound: 0xEC, closeSound: 0xF3},
	{lo: 0x241F, hi: 0x2421, family: famFixed, base: 0x2415, facing: NorthCCW, openSound: -1, closeSound: -1},
	{lo: 0x2423, hi: 0x2425, family: famFixed, base: 0x2423, facing: WestCW, openSound: -1, closeSound: -1},
	{lo: 0x2A05, hi: 0x2A1D, family: fam2A05},
	{lo: 0x2D46, hi: 0x2D47, family: famFixed, base: 0x2D46, facing: NorthCW, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x2D48, hi: 0x2D49, family: famFixed, base: 0x2D48, facing: SouthCCW, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x2D63, hi: 0x2D70, family: fam2D63},
	{lo: 0x2FE2, hi: 0x2FE3, family: famFixed, base: 0x2FE2, facing: SouthCCW, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x2FE4, hi: 0x2FE5, family: famFixed, base: 0x2FE4, facing: WestCCW, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x319C, hi: 0x31AE, family: fam319C},
	{lo: 0x31AE, hi: 0x31AF, family: famFixed, base: 0x31AE, facing: WestCCW, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x367B, hi: 0x369B, family: fam367B},
	{lo: 0x409B, hi: 0x40A3, family: famSA, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x410C, hi: 0x4114, family: famSA, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x41C2, hi: 0x41CA, family: famSA, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x41CF, hi: 0x41D7, family: famSA, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x436E, hi: 0x437E, family: fam436E, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x46DD, hi: 0x46E5, family: famSA, openSound: 0xEB, closeSound: 0xF2},
	{lo: 0x4D22, hi: 0x4D2A, family: famSA, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x50C8, hi: 0x50D0, family: famSA, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x50D0, hi: 0x50D8, family: famSA, openSound: 0xEA, closeSound: 0xF1},
	{lo: 0x5142, hi: 0x514A, family: famSA, openSound: 0xF0, closeSound: 0xEF},
}

// typed16 variants of the 0x675 family: base and sound pair per sub-type.
var typed675 = []DoorSpec{
	{BaseID: 0x675, OpenSound: 0xEC, CloseSound: 0xF3},
	{BaseID: 0x685, OpenSound: 0xEC, CloseSound: 0xF3},
	{BaseID: 0x695, OpenSound: 0xEB, CloseSound: 0xF2},
	{BaseID: 0x6A5, OpenSound: 0xEA, CloseSound: 0xF1},
	{BaseID: 0x6B5, OpenSound: 0xEA, CloseSound: 0xF1},
	{BaseID: 0x6C5, OpenSound: 0xEC, CloseSound: 0xF3},
	{BaseID: 0x6D5, OpenSound: 0xEA, CloseSound: 0xF1},
	{BaseID: 0x6E5, OpenSound: 0xEA, CloseSound: 0xF1},
}

func saDoorFacing(offset int) Facing {
	return Facing((offset/2 + 2*(1+offset/4)) % 8)
}

// ClassifyFixture maps an item id to the entity it instantiates. Ids in
// the fixture ranges that build no door (future client content) return
// FixtureNone and are silently dropped by AddFixtures.
func ClassifyFixture(id uint16) (FixtureKind, DoorSpec) {
	i := sort.Search(len(doorRanges), func(i int) bool { return doorRanges[i].hi > id })
	if i >= len(doorRanges) || doorRanges[i].lo > id {
		return FixtureNone, DoorSpec{}
	}
	r := doorRanges[i]
	off := int(id - r.lo)

	switch r.family {
	case famTeleporter:
		return FixtureTeleporter, DoorSpec{}

	case famTyped16:
		typ := off / 16
		facing := Facing(off / 2 % 8)
		if r.lo == 0x675 {
			spec := typed675[typ]
			spec.Facing = facing
			return FixtureDoor, spec
		}
		return FixtureDoor, DoorSpec{
			Facing:     facing,
			BaseID:     r.base + uint16(typ)*16,
			OpenSound:  r.openSound,
			CloseSound: r.closeSound,
		}

	case famSimple:
		return FixtureDoor, DoorSpec{
			Facing:     Facing(off / 2 % 8),
			BaseID:     r.base,
			OpenSound:  r.openSound,
			CloseSound: r.closeSound,
		}

	case famFixed:
		return FixtureDoor, DoorSpec{
			Facing:     r.facing,
			BaseID:     r.base,
			OpenSound:  r.openSound,
			CloseSound: r.closeSound,
		}

	case fam2A05:
		sound := -1
		if id >= 0x2A0D && id < 0x2A15 {
			sound = 0x539
		}
		return FixtureDoor, DoorSpec{
			Facing:     Facing(off/2%4 + 8),
			BaseID:     0x29F5 + uint16(8*(off/8)),
			OpenSound:  sound,
			CloseSound: sound,
		}

	case fam2D63:
		mod := off / 2 % 2
		facing := SouthCCW
		if mod != 0 {
			facing = WestCCW
		}
		return FixtureDoor, DoorSpec{
			Facing:     facing,
			BaseID:     0x2D63 + uint16(4*(off/4)+mod*2),
			OpenSound:  0xEA,
			CloseSound: 0xF1,
		}

	case fam319C:
		mod := off / 2 % 2
		// 0x31A8/0x31AA have their facing pair swapped in the client art.
		var facing Facing
		if id == 0x31AA || id == 0x31A8 {
			facing = NorthCW
			if mod != 0 {
				facing = EastCW
			}
		} else {
			facing = EastCW
			if mod != 0 {
				facing = NorthCW
			}
		}
		return FixtureDoor, DoorSpec{
			Facing:     facing,
			BaseID:     0x319C + uint16(4*(off/4)+mod*2),
			OpenSound:  0xEA,
			CloseSound: 0xF1,
		}

	case fam367B:
		facing := Facing(off / 2 % 8)
		if off/16 == 0 {
			return FixtureDoor, DoorSpec{Facing: facing, BaseID: 0x367B, OpenSound: 0xED, CloseSound: 0xF4}
		}
		return FixtureDoor, DoorSpec{Facing: facing, BaseID: 0x368B, OpenSound: 0xEC, CloseSound: 0x3E7}

	case famSA:
		return FixtureDoor, DoorSpec{
			Facing:     saDoorFacing(off),
			BaseID:     id,
			OpenSound:  r.openSound,
			CloseSound: r.closeSound,
		}

	case fam436E:
		/* Offset      0  2  4  6  8  10 12 14
		 * Facing      2  3  2  3  6  7  6  7
		 */
		return FixtureDoor, DoorSpec{
			Facing:     Facing((off/2 + 2*((1+off/4)%2)) % 8),
			BaseID:     id,
			OpenSound:  r.openSound,
			CloseSound: r.closeSound,
		}
	}

	return FixtureNone, DoorSpec{}
}

// linkOffsets maps a door facing to where its matching half must stand and
// which facing that half carries. Eight hinged pairs plus four sliding.
var linkOffsets = map[Facing]struct {
	facing Facing
	dx, dy int
}{
	WestCW:   {EastCCW, 1, 0},
	EastCCW:  {WestCW, -1, 0},
	WestCCW:  {EastCW, 1, 0},
	EastCW:   {WestCCW, -1, 0},
	SouthCW:  {NorthCCW, 0, -1},
	NorthCCW: {SouthCW, 0, 1},
	SouthCCW: {NorthCW, 0, -1},
	NorthCW:  {SouthCCW, 0, 1},
	SouthSW:  {SouthSE, 1, 0},
	SouthSE:  {SouthSW, -1, 0},
	WestSN:   {WestSS, 0, 1},
	WestSS:   {WestSN, 0, -1},
}

// AddFixtures instantiates door and teleporter entities from melted
// fixture entries and links pairs. All doors minted in one batch share one
// lazily generated lock key. Pairing is deterministic in insertion order:
// teleporters scan forward circularly for an identical item id, doors scan
// strictly forward for the matching half at the expected offset. Changing
// the scan order would desync pairing from the legacy client.
func (f *Foundation) AddFixtures(list []multi.Entry) {
	keyValue := ""

	for _, mte := range list {
		kind, spec := ClassifyFixture(mte.ItemID)
		switch kind {
		case FixtureTeleporter:
			tp := &Teleporter{serial: nextSerial(), ItemID: mte.ItemID}
			f.placeFixture(tp, mte)

		case FixtureDoor:
			if keyValue == "" {
				keyValue = uuid.NewString()
			}
			door := &Door{
				serial:     nextSerial(),
				ItemID:     mte.ItemID,
				Facing:     spec.Facing,
				BaseID:     spec.BaseID,
				OpenSound:  spec.OpenSound,
				CloseSound: spec.CloseSound,
				Locked:     true,
				KeyValue:   keyValue,
			}
			f.placeFixture(door, mte)
		}
	}

	for i, fixture := range f.fixtures {
		switch fx := fixture.(type) {
		case *Teleporter:
			if fx.Target != nil {
				continue
			}
			for j := 1; j <= len(f.fixtures); j++ {
				check, ok := f.fixtures[(i+j)%len(f.fixtures)].(*Teleporter)
				if ok && check != fx && check.ItemID == fx.ItemID {
					fx.Target = check
					break
				}
			}

		case *Door:
			if fx.Link != nil {
				continue
			}
			link := linkOffsets[fx.Facing]
			for j := i + 1; j < len(f.fixtures); j++ {
				check, ok := f.fixtures[j].(*Door)
				if !ok || check.Link != nil || check.Facing != link.facing {
					continue
				}
				at, want := check.Location(), fx.Location()
				if at.X-want.X == link.dx && at.Y-want.Y == link.dy && at.Z == want.Z {
					check.Link = fx
					fx.Link = check
					break
				}
			}
		}
	}
}

func (f *Foundation) placeFixture(e Entity, mte multi.Entry) {
	f.fixtures = append(f.fixtures, e)
	e.SetLocation(Point3D{
		X: f.loc.X + int(mte.OffsetX),
		Y: f.loc.Y + int(mte.OffsetY),
		Z: f.loc.Z + int(mte.OffsetZ),
	})
}

// ClearFixtures deletes every live fixture entity.
func (f *Foundation) ClearFixtures() {
	f.fixtures = nil
}

// Fixtures returns the live fixture entities in insertion order.
func (f *Foundation) Fixtures() []Entity {
	return append([]Entity(nil), f.fixtures...)
}

// IsFixture reports whether the entity is one of this foundation's live
// fixtures.
func (f *Foundation) IsFixture(e Entity) bool {
	for _, fx := range f.fixtures {
		if fx == e {
			return true
		}
	}
	return false
}
