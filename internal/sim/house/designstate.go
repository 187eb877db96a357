package house

import (
	"sync/atomic"

	"housecraft/internal/sim/multi"
)

// DesignState is one snapshot of a structure's tile layout plus the fixture
// entries melted out of it. A foundation owns three of them (current,
// design, backup); revisions are issued from the foundation's shared
// counter so they are unique and ordered across all three slots.
type DesignState struct {
	foundation *Foundation
	components *multi.ComponentList
	fixtures   []multi.Entry

	revision atomic.Int32
	packet   atomic.Pointer[[]byte]
}

func newDesignState(f *Foundation, components *multi.ComponentList) *DesignState {
	return &DesignState{
		foundation: f,
		components: components,
	}
}

// copyState deep-copies src: no grid storage is ever shared between slots.
func copyState(src *DesignState) *DesignState {
	st := &DesignState{
		foundation: src.foundation,
		components: src.components.Clone(),
		fixtures:   append([]multi.Entry(nil), src.fixtures...),
	}
	st.revision.Store(src.Revision())
	return st
}

// restoreState rebuilds a state from persisted parts.
func restoreState(f *Foundation, components *multi.ComponentList, fixtures []multi.Entry, revision int32) *DesignState {
	st := &DesignState{
		foundation: f,
		components: components,
		fixtures:   fixtures,
	}
	st.revision.Store(revision)
	return st
}

func (st *DesignState) Components() *multi.ComponentList { return st.components }

// Fixtures returns the melted fixture entries in scan order.
func (st *DesignState) Fixtures() []multi.Entry {
	return append([]multi.Entry(nil), st.fixtures...)
}

func (st *DesignState) Revision() int32 {
	return st.revision.Load()
}

// OnRevised stamps the state with the foundation's next revision and drops
// the cached wire packet.
func (st *DesignState) OnRevised() {
	st.revision.Store(st.foundation.lastRevision.Add(1))
	st.packet.Store(nil)
}

// CachedPacket returns the pre-serialized detailed-info packet, if any.
func (st *DesignState) CachedPacket() []byte {
	if p := st.packet.Load(); p != nil {
		return *p
	}
	return nil
}

func (st *DesignState) storePacket(p []byte) {
	st.packet.Store(&p)
}

// FreezeFixtures re-embeds every fixture entry into the grid as an
// ordinary component and empties the fixture list. Used when reverting to
// a flat structural snapshot of the committed state.
func (st *DesignState) FreezeFixtures() {
	st.OnRevised()

	for _, e := range st.fixtures {
		st.components.Add(e.ItemID, int(e.OffsetX), int(e.OffsetY), int(e.OffsetZ))
	}
	st.fixtures = nil
}

// MeltFixtures scans the grid in reverse, pulls out every entry whose item
// id classifies as a door or teleporter graphic, and collects them as
// fixture entries preserving relative order. A door is either in the grid
// as data or in the world as an entity, never both.
func (st *DesignState) MeltFixtures() {
	st.OnRevised()

	list := st.components.Entries()
	count := 0
	for i := len(list) - 1; i >= 0; i-- {
		if IsFixtureID(list[i].ItemID) {
			count++
		}
	}

	fixtures := make([]multi.Entry, count)
	for i := len(list) - 1; i >= 0; i-- {
		e := list[i]
		if IsFixtureID(e.ItemID) {
			count--
			fixtures[count] = e
			st.components.Remove(e.ItemID, int(e.OffsetX), int(e.OffsetY), int(e.OffsetZ))
		}
	}
	st.fixtures = fixtures
}
