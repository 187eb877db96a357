package multi

// ComponentList is a resizable 2D grid of per-column tile stacks. Entries
// are stored in insertion order; the per-column index is derived from the
// entry list and rebuilt wholesale on every mutation so the two can never
// drift apart. Coordinates given to callers are anchor-relative: a column
// lookup adds the center offset to reach absolute array indices.
type ComponentList struct {
	entries []Entry
	center  Point
	width   int
	height  int

	// tiles[ax][ay] holds the column stack in insertion order.
	tiles [][][]Entry
}

// New returns an empty list of the given dimensions with the given anchor.
func New(width, height int, center Point) *ComponentList {
	l := &ComponentList{
		center: center,
		width:  width,
		height: height,
	}
	l.rebuild()
	return l
}

// NewFromEntries builds a list over a pre-existing entry sequence.
func NewFromEntries(width, height int, center Point, entries []Entry) *ComponentList {
	l := &ComponentList{
		entries: append([]Entry(nil), entries...),
		center:  center,
		width:   width,
		height:  height,
	}
	l.rebuild()
	return l
}

// Clone returns a fully independent copy sharing no storage with l.
func (l *ComponentList) Clone() *ComponentList {
	return NewFromEntries(l.width, l.height, l.center, l.entries)
}

func (l *ComponentList) Width() int    { return l.width }
func (l *ComponentList) Height() int   { return l.height }
func (l *ComponentList) Center() Point { return l.center }
func (l *ComponentList) Count() int    { return len(l.entries) }

// Min is the anchor-relative coordinate of the north-west corner.
func (l *ComponentList) Min() Point {
	return Point{X: -l.center.X, Y: -l.center.Y}
}

// Max is the anchor-relative coordinate of the south-east corner.
func (l *ComponentList) Max() Point {
	return Point{X: l.width - 1 - l.center.X, Y: l.height - 1 - l.center.Y}
}

// Entries returns a copy of the entry list in insertion order.
func (l *ComponentList) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Add appends a component at the given anchor-relative position.
func (l *ComponentList) Add(itemID uint16, x, y, z int) {
	l.entries = append(l.entries, Entry{
		ItemID:  itemID,
		OffsetX: int16(x),
		OffsetY: int16(y),
		OffsetZ: int16(z),
	})
	l.rebuild()
}

// Remove deletes the first entry matching the exact 4-tuple. Missing
// matches are a no-op; the return value exists for callers that care.
func (l *ComponentList) Remove(itemID uint16, x, y, z int) bool {
	for i, e := range l.entries {
		if e.ItemID == itemID && int(e.OffsetX) == x && int(e.OffsetY) == y && int(e.OffsetZ) == z {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			l.rebuild()
			return true
		}
	}
	return false
}

// RemoveFunc deletes every entry in the (x, y) column matching the
// predicate and reports how many were removed.
func (l *ComponentList) RemoveFunc(x, y int, match func(Entry) bool) int {
	removed := 0
	kept := l.entries[:0]
	for _, e := range l.entries {
		if int(e.OffsetX) == x && int(e.OffsetY) == y && match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	if removed > 0 {
		l.rebuild()
	}
	return removed
}

// Resize reallocates the column index to the new dimensions, keeping the
// anchor and dropping entries whose coordinates fall out of bounds.
func (l *ComponentList) Resize(width, height int) {
	l.width = width
	l.height = height

	kept := l.entries[:0]
	for _, e := range l.entries {
		ax := int(e.OffsetX) + l.center.X
		ay := int(e.OffsetY) + l.center.Y
		if ax >= 0 && ax < width && ay >= 0 && ay < height {
			kept = append(kept, e)
		}
	}
	l.entries = kept
	l.rebuild()
}

// ColumnAt returns the stack at the anchor-relative column, or nil when the
// position is out of bounds. The returned slice must not be mutated.
func (l *ComponentList) ColumnAt(x, y int) []Entry {
	ax := x + l.center.X
	ay := y + l.center.Y
	if ax < 0 || ax >= l.width || ay < 0 || ay >= l.height {
		return nil
	}
	return l.tiles[ax][ay]
}

func (l *ComponentList) rebuild() {
	l.tiles = make([][][]Entry, l.width)
	for x := range l.tiles {
		l.tiles[x] = make([][]Entry, l.height)
	}
	for _, e := range l.entries {
		ax := int(e.OffsetX) + l.center.X
		ay := int(e.OffsetY) + l.center.Y
		if ax >= 0 && ax < l.width && ay >= 0 && ay < l.height {
			l.tiles[ax][ay] = append(l.tiles[ax][ay], e)
		}
	}
}
