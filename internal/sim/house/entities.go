package house

import "sync/atomic"

// Point3D is a world-absolute location.
type Point3D struct {
	X int
	Y int
	Z int
}

// Rect2D is a world-absolute footprint.
type Rect2D struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect2D) Contains(p Point3D) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

type AccessLevel int

const (
	AccessPlayer AccessLevel = iota
	AccessCounselor
	AccessGameMaster
)

// Entity is the minimal handle the design engine needs on a world object.
type Entity interface {
	Serial() uint32
	Location() Point3D
	SetLocation(Point3D)
}

// Mobile is the acting player, supplied by the entity framework.
type Mobile interface {
	Entity
	ID() string
	Alive() bool
	InCombat() bool
	Access() AccessLevel
	SetHidden(hidden bool)
	NetState() NetState

	// SendLocalizedMessage surfaces a client-localized notice by number.
	SendLocalizedMessage(number int)
	// SendMessage surfaces a raw server message (staff notices).
	SendMessage(format string, args ...any)
}

// NetState is the send-bytes primitive for one connected client.
type NetState interface {
	Send(p []byte)
	Mobile() Mobile
}

// Banker is the external economy policy the commit flow charges against.
type Banker interface {
	Balance(m Mobile) int
	Withdraw(m Mobile, amount int) bool
	Deposit(m Mobile, amount int) bool
}

// World lets a foundation find entities standing inside its footprint so
// they can be relocated while the structure is being edited.
type World interface {
	ItemsIn(r Rect2D) []Entity
	MobilesIn(r Rect2D) []Mobile
}

var serialCounter atomic.Uint32

// nextSerial allocates a serial for engine-owned entities (fixtures and
// signage). Foundations carry serials assigned by the item framework.
func nextSerial() uint32 {
	return 0x70000000 | serialCounter.Add(1)
}

// Static is a decorative engine-owned entity (signpost, sign hanger).
type Static struct {
	serial uint32
	ItemID uint16
	loc    Point3D
}

func NewStatic(itemID uint16) *Static {
	return &Static{serial: nextSerial(), ItemID: itemID}
}

func (s *Static) Serial() uint32        { return s.serial }
func (s *Static) Location() Point3D     { return s.loc }
func (s *Static) SetLocation(p Point3D) { s.loc = p }
