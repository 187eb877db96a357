package house

import "sync"

// Localized client message numbers surfaced by the design engine.
const (
	msgCombatLock         = 1005564 // Wouldst thou flee during the heat of battle??
	msgCannotWhileEditing = 1062206 // You cannot do that while customizing a house.
	msgNoSpeech           = 1061925 // You cannot speak while customizing your house.
	msgWithdrawn          = 1060398 // ~1_AMOUNT~ gold has been withdrawn from your bank box.
	msgDeposited          = 1060397 // ~1_AMOUNT~ gold has been deposited into your bank box.
	msgInsufficient       = 1061903 // You cannot commit this house design ... necessary funds ...
)

// Context is the exclusive editing lock one actor holds over one
// foundation.
type Context struct {
	mobile     Mobile
	foundation *Foundation
	level      int
}

func (c *Context) Mobile() Mobile          { return c.mobile }
func (c *Context) Foundation() *Foundation { return c.foundation }
func (c *Context) Level() int              { return c.level }
func (c *Context) MaxLevels() int          { return c.foundation.MaxLevels() }

// ContextTable maps actor ids to their live design context. At most one
// context exists per actor; the set of contexts referencing a foundation
// determines whether it is being customized.
type ContextTable struct {
	mu      sync.Mutex
	byActor map[string]*Context
}

func NewContextTable() *ContextTable {
	return &ContextTable{byActor: make(map[string]*Context)}
}

// Find returns the actor's context, or nil.
func (t *ContextTable) Find(m Mobile) *Context {
	if m == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byActor[m.ID()]
}

// Check reports whether the actor is free of a design context, notifying
// them otherwise.
func (t *ContextTable) Check(m Mobile) bool {
	if t.Find(m) == nil {
		return true
	}
	m.SendLocalizedMessage(msgCannotWhileEditing)
	return false
}

// Add registers a context for the actor, hides them inside the structure
// and suppresses fixture and signage entities from their view.
func (t *ContextTable) Add(m Mobile, f *Foundation) *Context {
	if m == nil {
		return nil
	}

	c := &Context{mobile: m, foundation: f, level: 1}

	t.mu.Lock()
	t.byActor[m.ID()] = c
	t.mu.Unlock()

	f.customizer = m.ID()

	m.SetHidden(true)
	loc := f.Location()
	m.SetLocation(Point3D{X: loc.X, Y: loc.Y, Z: loc.Z + 7})

	ns := m.NetState()
	if ns == nil {
		return c
	}

	for _, fx := range f.Fixtures() {
		sendRemoveEntity(ns, fx.Serial())
	}
	if f.signpost != nil {
		sendRemoveEntity(ns, f.signpost.Serial())
	}
	if f.signHanger != nil {
		sendRemoveEntity(ns, f.signHanger.Serial())
	}

	return c
}

// Remove drops the actor's context and restores the hidden entities to
// their view.
func (t *ContextTable) Remove(m Mobile) {
	c := t.Find(m)
	if c == nil {
		return
	}

	t.mu.Lock()
	delete(t.byActor, m.ID())
	t.mu.Unlock()

	c.foundation.customizer = ""

	ns := m.NetState()
	if ns == nil {
		return
	}

	// The entity framework resends fixture and signage info on the next
	// refresh; nothing to push here beyond unhiding.
	m.SetHidden(false)
}
