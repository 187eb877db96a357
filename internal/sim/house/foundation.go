package house

import (
	"sync/atomic"

	"housecraft/internal/sim/catalogs"
	"housecraft/internal/sim/multi"
)

// Style selects the foundation border graphics.
type Style int

const (
	StyleStone Style = iota
	StyleDarkWood
	StyleLightWood
	StyleDungeon
	StyleBrick
	StyleElvenGrey
	StyleElvenNatural
	StyleCrystal
	StyleShadow
)

const (
	defaultSignpostGraphic = 9
	signHangerGraphic      = 0xB98
	dirtFloorID            = 0x31F4
	southStairRowID        = 0x751
)

// Foundation is the structure aggregate under customization. It owns three
// design-state slots: current (committed, visible to everyone), design
// (actively edited) and backup (user checkpoint), all sharing one revision
// counter.
type Foundation struct {
	serial uint32
	loc    Point3D

	baseWidth  int
	baseHeight int

	style           Style
	price           int
	signpostGraphic int

	lastRevision atomic.Int32

	current *DesignState
	design  *DesignState
	backup  *DesignState

	fixtures   []Entity
	signHanger *Static
	signpost   *Static

	customizer string // actor id currently editing, "" when none

	cats  *catalogs.Catalogs
	world World

	relocated []relocatedEntity
}

type relocatedEntity struct {
	entity Entity
	oldLoc Point3D
}

// NewFoundation places a fresh foundation of the given base plot size
// (border included, south stair row excluded) at loc.
func NewFoundation(serial uint32, loc Point3D, width, height int, style Style, cats *catalogs.Catalogs, world World) *Foundation {
	f := &Foundation{
		serial:          serial,
		loc:             loc,
		baseWidth:       width,
		baseHeight:      height,
		style:           style,
		signpostGraphic: defaultSignpostGraphic,
		cats:            cats,
		world:           world,
	}

	mcl := f.Components()
	x := mcl.Min().X
	y := mcl.Height() - 1 - mcl.Center().Y

	f.signHanger = NewStatic(signHangerGraphic)
	f.signHanger.SetLocation(Point3D{X: loc.X + x, Y: loc.Y + y, Z: loc.Z + 7})

	f.CheckSignpost()
	return f
}

func (f *Foundation) Serial() uint32        { return f.serial }
func (f *Foundation) Location() Point3D     { return f.loc }
func (f *Foundation) SetLocation(p Point3D) { f.loc = p }

func (f *Foundation) Style() Style          { return f.style }
func (f *Foundation) SetStyle(s Style)      { f.style = s }
func (f *Foundation) Price() int            { return f.price }
func (f *Foundation) SetPrice(p int)        { f.price = p }
func (f *Foundation) Signpost() *Static     { return f.signpost }
func (f *Foundation) SignHanger() *Static   { return f.signHanger }
func (f *Foundation) LastRevision() int32   { return f.lastRevision.Load() }
func (f *Foundation) Customizer() string    { return f.customizer }

// Components is the committed, externally visible tile grid.
func (f *Foundation) Components() *multi.ComponentList {
	return f.CurrentState().Components()
}

// CurrentState lazily initializes all three slots on first touch.
func (f *Foundation) CurrentState() *DesignState {
	if f.current == nil {
		f.setInitialState()
	}
	return f.current
}

func (f *Foundation) DesignState() *DesignState {
	if f.design == nil {
		f.setInitialState()
	}
	return f.design
}

func (f *Foundation) BackupState() *DesignState {
	if f.backup == nil {
		f.setInitialState()
	}
	return f.backup
}

func (f *Foundation) setCurrentState(st *DesignState) { f.current = st }
func (f *Foundation) setDesignState(st *DesignState)  { f.design = st }
func (f *Foundation) setBackupState(st *DesignState)  { f.backup = st }

// setInitialState seeds all three slots with the empty-with-border layout.
func (f *Foundation) setInitialState() {
	f.current = newDesignState(f, f.GetEmptyFoundation())
	f.design = copyState(f.current)
	f.backup = copyState(f.current)
}

// Area is the world-absolute footprint covered by the committed grid.
func (f *Foundation) Area() Rect2D {
	mcl := f.Components()
	return Rect2D{
		X:      f.loc.X + mcl.Min().X,
		Y:      f.loc.Y + mcl.Min().Y,
		Width:  mcl.Width(),
		Height: mcl.Height(),
	}
}

// BanLocation is where contained entities are relocated while editing.
func (f *Foundation) BanLocation() Point3D {
	mcl := f.Components()
	return Point3D{
		X: f.loc.X + mcl.Min().X,
		Y: f.loc.Y + mcl.Height() - 1 - mcl.Center().Y,
		Z: f.loc.Z,
	}
}

// MaxLevels is 4 for large plots (either dimension >= 14), else 3.
func (f *Foundation) MaxLevels() int {
	mcl := f.Components()
	if mcl.Width() >= 14 || mcl.Height() >= 14 {
		return 4
	}
	return 3
}

// LevelZ maps a 1-indexed floor level to its elevation, clamping invalid
// levels to 1.
func (f *Foundation) LevelZ(level int) int {
	if level < 1 || level > f.MaxLevels() {
		level = 1
	}
	return (level-1)*20 + 7
}

// ZLevel is the inverse of LevelZ.
func (f *Foundation) ZLevel(z int) int {
	level := (z-7)/20 + 1
	if level < 1 || level > f.MaxLevels() {
		level = 1
	}
	return level
}

// foundationGraphics returns the border tile ids for a style.
func foundationGraphics(style Style) (east, south, post, corner uint16) {
	switch style {
	case StyleLightWood:
		return 0x00BE, 0x00BF, 0x00C0, 0x00BD
	case StyleDungeon:
		return 0x02FF, 0x02FE, 0x0300, 0x02FD
	case StyleBrick:
		return 0x0043, 0x0042, 0x0044, 0x0041
	case StyleStone:
		return 0x0064, 0x0063, 0x0066, 0x0065
	case StyleElvenGrey:
		return 0x2DF9, 0x2DFA, 0x2DF8, 0x2DF7
	case StyleElvenNatural:
		return 0x2DFD, 0x2DFE, 0x2DFC, 0x2DFB
	case StyleCrystal:
		return 0x3671, 0x3670, 0x3673, 0x3672
	case StyleShadow:
		return 0x3675, 0x3674, 0x3677, 0x3676
	default:
		return 0x0015, 0x0016, 0x0017, 0x0014
	}
}

// applyFoundation stamps the style's border onto an empty grid.
func applyFoundation(style Style, mcl *multi.ComponentList) {
	east, south, post, corner := foundationGraphics(style)

	xc := mcl.Center().X
	yc := mcl.Center().Y
	w := mcl.Width()
	h := mcl.Height()

	mcl.Add(post, 0-xc, 0-yc, 0)
	mcl.Add(corner, w-1-xc, h-2-yc, 0)

	for x := 1; x < w; x++ {
		mcl.Add(south, x-xc, 0-yc, 0)
		if x < w-1 {
			mcl.Add(south, x-xc, h-2-yc, 0)
		}
	}

	for y := 1; y < h-1; y++ {
		mcl.Add(east, 0-xc, y-yc, 0)
		if y < h-2 {
			mcl.Add(east, w-1-xc, y-yc, 0)
		}
	}
}

// GetEmptyFoundation builds the empty-with-border layout for this plot:
// base shape grown by one southern row, border graphics per style, and the
// entry stair row along the new south edge.
func (f *Foundation) GetEmptyFoundation() *multi.ComponentList {
	center := multi.Point{X: f.baseWidth / 2, Y: f.baseHeight / 2}
	mcl := multi.New(f.baseWidth, f.baseHeight, center)

	mcl.Resize(mcl.Width(), mcl.Height()+1)

	xc := mcl.Center().X
	yc := mcl.Center().Y
	y := mcl.Height() - 1

	applyFoundation(f.style, mcl)

	for x := 1; x < mcl.Width(); x++ {
		mcl.Add(southStairRowID, x-xc, y-yc, 0)
	}

	return mcl
}

// CheckWall reports whether a full-height wall stands on the column at the
// anchor-relative position.
func (f *Foundation) CheckWall(mcl *multi.ComponentList, x, y int) bool {
	for _, tile := range mcl.ColumnAt(x, y) {
		if tile.OffsetZ == 7 && f.cats.Height(tile.ItemID) == 20 {
			return true
		}
	}
	return false
}

// CheckSignpost adds or removes the signpost depending on whether a wall
// occupies the doorway column.
func (f *Foundation) CheckSignpost() {
	mcl := f.Components()

	x := mcl.Min().X
	y := mcl.Height() - 2 - mcl.Center().Y

	if f.CheckWall(mcl, x, y) {
		f.signpost = nil
		return
	}

	at := Point3D{X: f.loc.X + x, Y: f.loc.Y + y, Z: f.loc.Z + 7}
	if f.signpost == nil {
		f.signpost = NewStatic(uint16(f.signpostGraphic))
	} else {
		f.signpost.ItemID = uint16(f.signpostGraphic)
	}
	f.signpost.SetLocation(at)
}

// RelocateEntities moves every entity inside the footprint to the ban
// location, remembering prior positions for restoration.
func (f *Foundation) RelocateEntities(except Mobile) {
	if f.world == nil {
		return
	}
	area := f.Area()
	ban := f.BanLocation()

	for _, item := range f.world.ItemsIn(area) {
		if f.IsFixture(item) || item == f.signpost || item == f.signHanger {
			continue
		}
		f.relocated = append(f.relocated, relocatedEntity{entity: item, oldLoc: item.Location()})
		item.SetLocation(ban)
	}
	for _, m := range f.world.MobilesIn(area) {
		if except != nil && m.ID() == except.ID() {
			continue
		}
		f.relocated = append(f.relocated, relocatedEntity{entity: m, oldLoc: m.Location()})
		m.SetLocation(ban)
	}
}

// EjectAll pushes whatever is inside out to the ban location without
// recording positions. Used when a commit reshapes the structure.
func (f *Foundation) EjectAll() {
	if f.world == nil {
		return
	}
	area := f.Area()
	ban := f.BanLocation()
	for _, item := range f.world.ItemsIn(area) {
		if f.IsFixture(item) || item == f.signpost || item == f.signHanger {
			continue
		}
		item.SetLocation(ban)
	}
	for _, m := range f.world.MobilesIn(area) {
		m.SetLocation(ban)
	}
}

// RestoreRelocatedEntities returns relocated entities to their saved
// positions.
func (f *Foundation) RestoreRelocatedEntities() {
	for _, r := range f.relocated {
		r.entity.SetLocation(r.oldLoc)
	}
	f.relocated = nil
}

// IsHiddenToCustomizer reports whether the entity is suppressed from the
// editing client's view.
func (f *Foundation) IsHiddenToCustomizer(e Entity) bool {
	return e == f.signpost || e == f.signHanger || f.IsFixture(e)
}
