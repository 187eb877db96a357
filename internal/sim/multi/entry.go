package multi

// Entry is one placed component, positioned relative to the owning
// structure's anchor point.
type Entry struct {
	ItemID  uint16
	OffsetX int16
	OffsetY int16
	OffsetZ int16
	Flags   int32
}

// Point is a 2D anchor-relative coordinate.
type Point struct {
	X int
	Y int
}
