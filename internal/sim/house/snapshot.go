package house

import (
	"housecraft/internal/sim/catalogs"
	"housecraft/internal/sim/multi"
)

// StateSnapshot is the persistable form of one design slot.
type StateSnapshot struct {
	Components *multi.ComponentList
	Fixtures   []multi.Entry
	Revision   int32
}

// Snapshot is the persistable form of a foundation. Live fixture entities
// are not captured: they are rebuilt from the committed state's melted
// entries on restore.
type Snapshot struct {
	Serial          uint32
	Location        Point3D
	Width           int
	Height          int
	Style           Style
	Price           int
	SignpostGraphic int
	LastRevision    int32

	Current StateSnapshot
	Design  StateSnapshot
	Backup  StateSnapshot
}

// Snapshot captures the foundation for persistence. Grids are cloned, so
// the snapshot stays stable while editing continues.
func (f *Foundation) Snapshot() Snapshot {
	snapState := func(st *DesignState) StateSnapshot {
		return StateSnapshot{
			Components: st.Components().Clone(),
			Fixtures:   st.Fixtures(),
			Revision:   st.Revision(),
		}
	}
	return Snapshot{
		Serial:          f.serial,
		Location:        f.loc,
		Width:           f.baseWidth,
		Height:          f.baseHeight,
		Style:           f.style,
		Price:           f.price,
		SignpostGraphic: f.signpostGraphic,
		LastRevision:    f.lastRevision.Load(),
		Current:         snapState(f.CurrentState()),
		Design:          snapState(f.DesignState()),
		Backup:          snapState(f.BackupState()),
	}
}

// FromSnapshot rebuilds a foundation from a persisted snapshot: the three
// design slots are restored verbatim, fixture entities are re-minted from
// the committed state and the signpost is re-evaluated.
func FromSnapshot(s Snapshot, cats *catalogs.Catalogs, world World) *Foundation {
	f := NewFoundation(s.Serial, s.Location, s.Width, s.Height, s.Style, cats, world)
	f.price = s.Price
	f.signpostGraphic = s.SignpostGraphic
	f.lastRevision.Store(s.LastRevision)

	f.current = restoreState(f, s.Current.Components, s.Current.Fixtures, s.Current.Revision)
	f.design = restoreState(f, s.Design.Components, s.Design.Fixtures, s.Design.Revision)
	f.backup = restoreState(f, s.Backup.Components, s.Backup.Fixtures, s.Backup.Revision)

	f.AddFixtures(f.current.Fixtures())
	f.CheckSignpost()

	return f
}
