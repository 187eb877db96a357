package house

import (
	"log"
	"sync"

	"housecraft/internal/protocol"
	"housecraft/internal/sim/multi"
)

// sendQueueEntry snapshots everything the worker needs so producers never
// hold a reference the session path might mutate mid-compression.
type sendQueueEntry struct {
	ns       NetState
	root     *DesignState
	serial   uint32
	revision int32
	xMin     int
	yMin     int
	xMax     int
	yMax     int
	tiles    []multi.Entry
}

// SendQueue offloads detailed-design compression from the session path. A
// single worker drains a multi-producer channel, builds (or reuses) the
// compressed packet and performs the send itself, so producers never block
// on compression or network I/O. A built packet is installed into the
// design state's cache only if the state's live revision still matches the
// snapshot; stale results are sent to the requester but never cached.
type SendQueue struct {
	ch      chan sendQueueEntry
	wg      sync.WaitGroup
	once    sync.Once
	isFloor func(uint16) bool
	log     *log.Logger
}

func NewSendQueue(isFloor func(uint16) bool, logger *log.Logger) *SendQueue {
	q := &SendQueue{
		ch:      make(chan sendQueueEntry, 512),
		isFloor: isFloor,
		log:     logger,
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue schedules a detailed-info send of st to ns.
func (q *SendQueue) Enqueue(ns NetState, f *Foundation, st *DesignState) {
	if ns == nil {
		return
	}
	mcl := st.Components()
	entry := sendQueueEntry{
		ns:       ns,
		root:     st,
		serial:   f.Serial(),
		revision: st.Revision(),
		xMin:     mcl.Min().X,
		yMin:     mcl.Min().Y,
		xMax:     mcl.Max().X,
		yMax:     mcl.Max().Y,
		tiles:    mcl.Entries(),
	}
	q.ch <- entry
}

// Close stops the worker after draining pending entries.
func (q *SendQueue) Close() {
	q.once.Do(func() { close(q.ch) })
	q.wg.Wait()
}

func (q *SendQueue) run() {
	defer q.wg.Done()

	for e := range q.ch {
		p := e.root.CachedPacket()
		if p == nil {
			p = protocol.DesignDetails(e.serial, e.revision, e.xMin, e.yMin, e.xMax, e.yMax, e.tiles, q.isFloor, q.log)
			if e.revision == e.root.Revision() {
				e.root.storePacket(p)
			}
		}
		e.ns.Send(p)
	}
}
