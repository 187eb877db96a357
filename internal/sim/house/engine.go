package house

import (
	"log"
	"sync"
	"time"

	"housecraft/internal/protocol"
	"housecraft/internal/sim/catalogs"
	"housecraft/internal/sim/tuning"
)

// TraceWriter receives anti-cheat audit records. Writes are best effort:
// the dispatcher swallows every error.
type TraceWriter interface {
	Write(v any) error
}

// InvalidPieceTrace is the audit record for a rejected placement.
type InvalidPieceTrace struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	ItemID int       `json:"item_id"`
	Kind   string    `json:"kind"`
}

// Engine mediates every design edit: it owns the session table, the
// compression send queue and the foundation registry, and consumes the
// catalogs, tuning, banker and audit collaborators.
type Engine struct {
	log      *log.Logger
	cats     *catalogs.Catalogs
	tun      tuning.Tuning
	contexts *ContextTable
	queue    *SendQueue
	banker   Banker
	audit    TraceWriter

	mu          sync.Mutex
	foundations map[uint32]*Foundation
}

func NewEngine(cats *catalogs.Catalogs, tun tuning.Tuning, banker Banker, audit TraceWriter, logger *log.Logger) *Engine {
	return &Engine{
		log:         logger,
		cats:        cats,
		tun:         tun,
		contexts:    NewContextTable(),
		queue:       NewSendQueue(cats.IsFloor, logger),
		banker:      banker,
		audit:       audit,
		foundations: make(map[uint32]*Foundation),
	}
}

// Close drains and stops the send queue.
func (e *Engine) Close() {
	e.queue.Close()
}

func (e *Engine) Catalogs() *catalogs.Catalogs { return e.cats }
func (e *Engine) Contexts() *ContextTable      { return e.contexts }

// Register adds a foundation to the lookup table.
func (e *Engine) Register(f *Foundation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.foundations[f.Serial()] = f
}

// Unregister drops a foundation, evicting any editor first.
func (e *Engine) Unregister(f *Foundation) {
	e.mu.Lock()
	delete(e.foundations, f.Serial())
	e.mu.Unlock()
}

// Serials lists every registered foundation serial.
func (e *Engine) Serials() []uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]uint32, 0, len(e.foundations))
	for serial := range e.foundations {
		out = append(out, serial)
	}
	return out
}

// Find returns the registered foundation with the given serial, or nil.
func (e *Engine) Find(serial uint32) *Foundation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.foundations[serial]
}

// CustomizationCost is the flat fee charged on every commit.
func (e *Engine) CustomizationCost() int { return e.tun.CustomizationCost }

// BlockSpeech reports whether the actor's chat should be suppressed
// because they are editing, sending the notice when so.
func (e *Engine) BlockSpeech(m Mobile) bool {
	if e.contexts.Find(m) == nil {
		return false
	}
	m.SendLocalizedMessage(msgNoSpeech)
	return true
}

// BeginCustomize opens an editing session on f for m. The actor must be
// alive, out of combat and not already editing; everything standing inside
// is relocated out first.
func (e *Engine) BeginCustomize(m Mobile, f *Foundation) {
	if m == nil || !m.Alive() {
		return
	}
	if m.InCombat() {
		m.SendLocalizedMessage(msgCombatLock)
		return
	}
	if e.contexts.Find(m) != nil {
		m.SendLocalizedMessage(msgCannotWhileEditing)
		return
	}

	f.RelocateEntities(m)

	e.contexts.Add(m, f)

	ns := m.NetState()
	if ns == nil {
		return
	}
	ns.Send(protocol.BeginCustomization(f.Serial()))
	e.SendInfoTo(ns, f)
	e.sendDetailed(ns, f, f.DesignState())
}

// SendInfoTo pushes the general design info the viewer should see: the
// in-progress design for the editor, the committed state for everyone
// else.
func (e *Engine) SendInfoTo(ns NetState, f *Foundation) {
	if ns == nil {
		return
	}
	st := f.CurrentState()
	if c := e.contexts.Find(ns.Mobile()); c != nil && c.Foundation() == f {
		st = f.DesignState()
	}
	ns.Send(protocol.DesignGeneral(f.Serial(), st.Revision()))
}

func (e *Engine) sendDetailed(ns NetState, f *Foundation, st *DesignState) {
	if ns == nil {
		return
	}
	e.queue.Enqueue(ns, f, st)
}

func sendRemoveEntity(ns NetState, serial uint32) {
	ns.Send(protocol.RemoveEntity(serial))
}

// traceValidity records a rejected placement for anti-cheat review.
// Logging failure never aborts the command.
func (e *Engine) traceValidity(m Mobile, itemID int, kind string) {
	if e.audit == nil {
		return
	}
	_ = e.audit.Write(InvalidPieceTrace{
		Time:   time.Now().UTC(),
		Actor:  m.ID(),
		ItemID: itemID,
		Kind:   kind,
	})
}
