package house

import (
	"housecraft/internal/protocol"
)

// HandleQueryDetails answers a client pull for the full tile state of a
// foundation. The editor of a foundation sees its in-progress design;
// everyone else within range sees the committed state.
func (e *Engine) HandleQueryDetails(m Mobile, q protocol.QueryDesignDetails) {
	f := e.Find(q.Serial)
	if f == nil || m == nil {
		return
	}
	ns := m.NetState()
	if ns == nil {
		return
	}

	loc := m.Location()
	floc := f.Location()
	if abs(loc.X-floc.X) > 24 || abs(loc.Y-floc.Y) > 24 {
		return
	}

	st := f.CurrentState()
	if c := e.contexts.Find(m); c != nil && c.Foundation() == f {
		st = f.DesignState()
	}
	e.sendDetailed(ns, f, st)
}

// Handle dispatches one encoded designer command. Every edit requires a
// live context on the addressed foundation; commands on foundations the
// actor is not editing are dropped.
func (e *Engine) Handle(m Mobile, cmd protocol.EncodedCommand) {
	f := e.Find(cmd.Serial)
	if f == nil || m == nil {
		return
	}
	c := e.contexts.Find(m)
	if c == nil || c.Foundation() != f {
		return
	}

	switch cmd.Command {
	case protocol.CmdBackup:
		e.doBackup(f)
	case protocol.CmdRestore:
		e.doRestore(m, f)
	case protocol.CmdCommit:
		e.doCommit(m, f)
	case protocol.CmdDelete:
		e.doDelete(m, f, cmd.Args)
	case protocol.CmdBuild:
		e.doBuild(m, c, f, cmd.Args)
	case protocol.CmdClose:
		e.doClose(m, f)
	case protocol.CmdStairs:
		e.doStairs(m, c, f, cmd.Args)
	case protocol.CmdSync:
		e.doSync(m, f)
	case protocol.CmdClear:
		e.doClear(m, f)
	case protocol.CmdLevel:
		e.doLevel(m, c, f, cmd.Args)
	case protocol.CmdRoof:
		e.doRoof(m, c, f, cmd.Args)
	case protocol.CmdRoofDelete:
		e.doRoofDelete(m, f, cmd.Args)
	case protocol.CmdRevert:
		e.doRevert(m, f)
	default:
		e.log.Printf("design: actor=%s unknown command 0x%02X", m.ID(), cmd.Command)
	}
}

func (e *Engine) doBackup(f *Foundation) {
	f.setBackupState(copyState(f.DesignState()))
}

func (e *Engine) doRestore(m Mobile, f *Foundation) {
	restored := copyState(f.BackupState())
	f.setDesignState(restored)
	restored.OnRevised()

	ns := m.NetState()
	e.SendInfoTo(ns, f)
	e.sendDetailed(ns, f, restored)
}

func (e *Engine) doRevert(m Mobile, f *Foundation) {
	reverted := copyState(f.CurrentState())
	reverted.FreezeFixtures()
	f.setDesignState(reverted)
	f.CheckSignpost()
	reverted.OnRevised()

	ns := m.NetState()
	e.SendInfoTo(ns, f)
	e.sendDetailed(ns, f, reverted)
}

func (e *Engine) doClear(m Mobile, f *Foundation) {
	cleared := newDesignState(f, f.GetEmptyFoundation())
	f.setDesignState(cleared)
	cleared.OnRevised()

	ns := m.NetState()
	e.SendInfoTo(ns, f)
	e.sendDetailed(ns, f, cleared)
}

func (e *Engine) doSync(m Mobile, f *Foundation) {
	e.sendDetailed(m.NetState(), f, f.DesignState())
}

func (e *Engine) doBuild(m Mobile, c *Context, f *Foundation, args *protocol.Reader) {
	itemID := uint16(args.ReadInt32())
	x := int(args.ReadInt32())
	y := int(args.ReadInt32())
	if args.Err() != nil {
		return
	}

	design := f.DesignState()

	if m.Access() < AccessGameMaster && !e.cats.ValidPiece(itemID, false) {
		e.traceValidity(m, int(itemID), "piece")
		e.sendDetailed(m.NetState(), f, design)
		return
	}

	mcl := design.Components()

	z := f.LevelZ(c.Level())

	// Tiles on the far south row sit at ground level.
	if y+mcl.Center().Y == mcl.Height()-1 {
		z = 0
	}

	mcl.Add(itemID, x, y, z)
	design.OnRevised()
}

func (e *Engine) doDelete(m Mobile, f *Foundation, args *protocol.Reader) {
	itemID := int(args.ReadInt32())
	x := int(args.ReadInt32())
	y := int(args.ReadInt32())
	z := int(args.ReadInt32())
	if args.Err() != nil {
		return
	}

	design := f.DesignState()
	mcl := design.Components()

	ax := x + mcl.Center().X
	ay := y + mcl.Center().Y

	// The foundation border at ground level is not deletable. Resend
	// without a revision bump so the client rolls back.
	if z == 0 && ax >= 0 && ax < mcl.Width() && ay >= 0 && ay < mcl.Height()-1 {
		e.sendDetailed(m.NetState(), f, design)
		return
	}

	fixState := false

	if e.tun.AllowStairSectioning {
		// The client removes the entire run locally; flag a resend to
		// bring it back in line with the single-piece removal here.
		fixState = f.DeleteStairs(mcl, itemID, x, y, z, true)
		mcl.Remove(uint16(itemID), x, y, z)
	} else if !f.DeleteStairs(mcl, itemID, x, y, z, false) {
		mcl.Remove(uint16(itemID), x, y, z)
	}

	if ax >= 1 && ax < mcl.Width() && ay >= 1 && ay < mcl.Height()-1 {
		f.backfillFloor(mcl, x, y)
	}

	design.OnRevised()

	if fixState {
		e.sendDetailed(m.NetState(), f, design)
	}
}

func (e *Engine) doStairs(m Mobile, c *Context, f *Foundation, args *protocol.Reader) {
	multiID := int(args.ReadInt32())
	x := int(args.ReadInt32())
	y := int(args.ReadInt32())
	if args.Err() != nil {
		return
	}

	design := f.DesignState()

	if !e.cats.ValidStairMulti(multiID) {
		e.traceValidity(m, multiID, "stair")
		e.sendDetailed(m.NetState(), f, design)
		return
	}

	mcl := design.Components()
	z := f.LevelZ(c.Level())

	for _, piece := range e.cats.StairComponents(multiID) {
		if piece.ItemID > 1 {
			mcl.Add(piece.ItemID, x+piece.X, y+piece.Y, z+piece.Z)
		}
	}

	design.OnRevised()
}

func (e *Engine) doRoof(m Mobile, c *Context, f *Foundation, args *protocol.Reader) {
	if !e.tun.RoofBuildingEnabled && m.Access() < AccessGameMaster {
		return
	}

	itemID := uint16(args.ReadInt32())
	x := int(args.ReadInt32())
	y := int(args.ReadInt32())
	z := int(args.ReadInt32())
	if args.Err() != nil {
		return
	}

	design := f.DesignState()

	if m.Access() < AccessGameMaster && !e.cats.ValidPiece(itemID, true) {
		e.traceValidity(m, int(itemID), "roof")
		e.sendDetailed(m.NetState(), f, design)
		return
	}

	mcl := design.Components()

	if z < -3 || z > 12 || z%3 != 0 {
		z = -3
	}
	z += f.LevelZ(c.Level())

	// One roof tile per column per level.
	level := c.Level()
	for _, mte := range mcl.Entries() {
		if int(mte.OffsetX) == x && int(mte.OffsetY) == y &&
			f.ZLevel(int(mte.OffsetZ)) == level && e.cats.IsRoof(mte.ItemID) {
			mcl.Remove(mte.ItemID, x, y, int(mte.OffsetZ))
		}
	}

	mcl.Add(itemID, x, y, z)
	design.OnRevised()
}

func (e *Engine) doRoofDelete(m Mobile, f *Foundation, args *protocol.Reader) {
	itemID := uint16(args.ReadInt32())
	x := int(args.ReadInt32())
	y := int(args.ReadInt32())
	z := int(args.ReadInt32())
	if args.Err() != nil {
		return
	}

	design := f.DesignState()

	if !e.cats.IsRoof(itemID) {
		e.sendDetailed(m.NetState(), f, design)
		return
	}

	design.Components().Remove(itemID, x, y, z)
	design.OnRevised()
}

func (e *Engine) doLevel(m Mobile, c *Context, f *Foundation, args *protocol.Reader) {
	newLevel := int(args.ReadInt32())
	if args.Err() != nil {
		return
	}

	if newLevel < 1 || newLevel > f.MaxLevels() {
		newLevel = 1
	}
	c.level = newLevel

	loc := m.Location()
	m.SetLocation(Point3D{X: loc.X, Y: loc.Y, Z: f.Location().Z + f.LevelZ(newLevel)})

	e.SendInfoTo(m.NetState(), f)
}

func (e *Engine) doClose(m Mobile, f *Foundation) {
	e.contexts.Remove(m)

	ns := m.NetState()
	if ns != nil {
		ns.Send(protocol.EndCustomization(f.Serial()))
		e.SendInfoTo(ns, f)
		e.sendDetailed(ns, f, f.CurrentState())
	}

	f.CheckSignpost()
	f.EjectAll()
	f.RestoreRelocatedEntities()
}

// doCommit prices the pending design, settles payment and swaps it in as
// the committed state, extracting functional fixtures along the way.
func (e *Engine) doCommit(m Mobile, f *Foundation) {
	current := f.CurrentState()
	design := f.DesignState()

	oldPrice := f.Price()
	delta := design.Components().Count() - (current.Components().Count() + len(current.Fixtures()))
	newPrice := oldPrice + e.tun.CustomizationCost + delta*e.tun.ComponentPrice
	cost := newPrice - oldPrice

	if m.Access() >= AccessGameMaster && cost != 0 {
		verb := "withdrawn from"
		amount := cost
		if cost < 0 {
			verb = "deposited into"
			amount = -cost
		}
		m.SendMessage("%d gold would have been %s your bank if you were not staff.", amount, verb)
		e.log.Printf("design: commit serial=%08X actor=%s staff bypass cost=%d", f.Serial(), m.ID(), cost)
	} else if cost > 0 {
		if e.banker.Withdraw(m, cost) {
			m.SendLocalizedMessage(msgWithdrawn)
		} else {
			m.SendLocalizedMessage(msgInsufficient)
			return
		}
	} else if cost < 0 {
		if e.banker.Deposit(m, -cost) {
			m.SendLocalizedMessage(msgDeposited)
		} else {
			return
		}
	}

	committed := copyState(design)

	f.ClearFixtures()
	committed.MeltFixtures()
	f.AddFixtures(committed.Fixtures())
	f.setCurrentState(committed)

	f.SetPrice(newPrice - e.tun.CustomizationCost)

	e.contexts.Remove(m)

	ns := m.NetState()
	if ns != nil {
		ns.Send(protocol.EndCustomization(f.Serial()))
		e.sendDetailed(ns, f, committed)
	}

	f.CheckSignpost()
	f.EjectAll()
	f.RestoreRelocatedEntities()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
