package house

import "housecraft/internal/sim/multi"

/* Stair block ids
 * (sorted ascending)
 */
var stairBlockIDs = []int{
	0x3EE, 0x709, 0x71E, 0x721,
	0x738, 0x750, 0x76C, 0x788,
	0x7A3, 0x7BA, 0x35D2, 0x3609,
	0x4317, 0x4318, 0x4B07, 0x7807,
}

/* Stair sequence ids
 * (sorted ascending)
 * Four consecutive ids form the N,W,S,E run of one style.
 */
var stairSeqs = []int{
	0x3EF, 0x70A, 0x722, 0x739,
	0x751, 0x76D, 0x789, 0x7A4,
}

/* Other stair ids
 * Listed in order: north, west, south, east.
 */
var stairIDs = []int{
	0x71F, 0x736, 0x737, 0x749,
	0x35D4, 0x35D3, 0x35D6, 0x35D5,
	0x360B, 0x360A, 0x360D, 0x360C,
	0x4360, 0x435E, 0x435F, 0x4361,
	0x435C, 0x435A, 0x435B, 0x435D,
	0x4364, 0x4362, 0x4363, 0x4365,
	0x4B05, 0x4B04, 0x4B34, 0x4B33,
	0x7809, 0x7808, 0x780A, 0x780B,
	0x7BB, 0x7BC,
}

// IsStairBlock reports whether the id is a solid stair block tile.
func IsStairBlock(id int) bool {
	delta := -1
	for i := 0; delta < 0 && i < len(stairBlockIDs); i++ {
		delta = stairBlockIDs[i] - id
	}
	return delta == 0
}

// IsStair reports whether the id is a stair tile and, if so, its cardinal
// direction (0=north, 1=west, 2=south, 3=east).
func IsStair(id int) (dir int, ok bool) {
	delta := -4
	for i := 0; delta < -3 && i < len(stairSeqs); i++ {
		delta = stairSeqs[i] - id
	}
	if delta >= -3 && delta <= 0 {
		return -delta, true
	}

	for i, sid := range stairIDs {
		if sid == id {
			return i % 4, true
		}
	}
	return 0, false
}

// DeleteStairs identifies whether (id, x, y, z) sits on a staircase and, if
// stair sectioning is off, demolishes the whole 4-step run, backfilling a
// dirt floor wherever the column loses its last base floor. With
// sectioning on it only identifies (the client removes the run locally and
// the caller resends state). Returns whether the target was stair work.
func (f *Foundation) DeleteStairs(mcl *multi.ComponentList, id, x, y, z int, allowSectioning bool) bool {
	ax := x + mcl.Center().X
	ay := y + mcl.Center().Y

	if ax < 0 || ay < 0 || ax >= mcl.Width() || ay >= mcl.Height()-1 || z < 7 || (z-7)%5 != 0 {
		return false
	}

	if IsStairBlock(id) {
		// Climb the column to the stair tile resting on this block.
		for _, tile := range mcl.ColumnAt(x, y) {
			if int(tile.OffsetZ) == z+5 {
				id = int(tile.ItemID)
				z = int(tile.OffsetZ)
				if !IsStairBlock(id) {
					break
				}
			}
		}
	}

	dir, ok := IsStair(id)
	if !ok {
		return false
	}

	if allowSectioning {
		return true // the client already removed the run
	}

	height := (z - 7) % 20 / 5

	var xStart, yStart, xInc, yInc int
	switch dir {
	default: // north
		xStart, yStart, xInc, yInc = x, y+height, 0, -1
	case 1: // west
		xStart, yStart, xInc, yInc = x+height, y, -1, 0
	case 2: // south
		xStart, yStart, xInc, yInc = x, y-height, 0, 1
	case 3: // east
		xStart, yStart, xInc, yInc = x-height, y, 1, 0
	}

	zStart := z - height*5

	for i := 0; i < 4; i++ {
		sx := xStart + i*xInc
		sy := yStart + i*yInc

		for j := 0; j <= i; j++ {
			sz := zStart + j*5
			mcl.RemoveFunc(sx, sy, func(e multi.Entry) bool {
				return int(e.OffsetZ) == sz && f.cats.Height(e.ItemID) >= 5
			})
		}

		ax = sx + mcl.Center().X
		ay = sy + mcl.Center().Y

		if ax >= 1 && ax < mcl.Width() && ay >= 1 && ay < mcl.Height()-1 {
			f.backfillFloor(mcl, sx, sy)
		}
	}

	return true
}

// backfillFloor drops a dirt tile at z=7 when the column has no base floor
// left.
func (f *Foundation) backfillFloor(mcl *multi.ComponentList, x, y int) {
	for _, tile := range mcl.ColumnAt(x, y) {
		if tile.OffsetZ == 7 && tile.ItemID != 1 {
			return
		}
	}
	mcl.Add(dirtFloorID, x, y, 7)
}
