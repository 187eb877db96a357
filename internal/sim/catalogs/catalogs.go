package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Catalogs holds the data-driven legality and classification tables used by
// the design engine: which components a player may place, which item ids
// count as roofs, which stair multis exist and what footprint they stamp,
// and per-item tile heights (the floor/wall split on the wire and the wall
// test behind signpost placement both key off height).
type Catalogs struct {
	Components ComponentCatalog
	Stairs     StairCatalog
}

type ComponentCatalog struct {
	Pieces  []IDRange
	Roofs   []IDRange
	Heights []HeightRange

	Digest string
}

type StairCatalog struct {
	ByMultiID map[int]StairMulti
	Digest    string
}

// IDRange is an inclusive item-id range. Single ids use From == To.
type IDRange struct {
	From uint16 `json:"from"`
	To   uint16 `json:"to"`
}

type HeightRange struct {
	From   uint16 `json:"from"`
	To     uint16 `json:"to"`
	Height int    `json:"height"`
}

type StairMulti struct {
	MultiID    int          `json:"multi_id"`
	Components []StairPiece `json:"components"`
}

type StairPiece struct {
	ItemID uint16 `json:"item"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Z      int    `json:"z"`
}

type componentsFile struct {
	Pieces  []IDRange     `json:"pieces"`
	Roofs   []IDRange     `json:"roofs"`
	Heights []HeightRange `json:"heights"`
}

type stairsFile struct {
	Multis []StairMulti `json:"multis"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadComponents(filepath.Join(configDir, "components.json"), &c.Components); err != nil {
		return nil, err
	}
	if err := loadStairs(filepath.Join(configDir, "stairs.json"), &c.Stairs); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadComponents(path string, out *ComponentCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseComponents(raw, out)
}

func parseComponents(raw []byte, out *ComponentCatalog) error {
	var f componentsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("components.json: %w", err)
	}
	for _, r := range append(append(append([]IDRange(nil), f.Pieces...), f.Roofs...)) {
		if r.To < r.From {
			return fmt.Errorf("components.json: inverted range %#x..%#x", r.From, r.To)
		}
	}
	out.Pieces = sortRanges(f.Pieces)
	out.Roofs = sortRanges(f.Roofs)
	out.Heights = f.Heights
	sort.Slice(out.Heights, func(i, j int) bool { return out.Heights[i].From < out.Heights[j].From })
	out.Digest = sha256Hex(raw)
	return nil
}

func loadStairs(path string, out *StairCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseStairs(raw, out)
}

func parseStairs(raw []byte, out *StairCatalog) error {
	var f stairsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("stairs.json: %w", err)
	}
	out.ByMultiID = make(map[int]StairMulti, len(f.Multis))
	for _, m := range f.Multis {
		if len(m.Components) == 0 {
			return fmt.Errorf("stairs.json: multi %#x has no components", m.MultiID)
		}
		out.ByMultiID[m.MultiID] = m
	}
	out.Digest = sha256Hex(raw)
	return nil
}

func sortRanges(rs []IDRange) []IDRange {
	out := append([]IDRange(nil), rs...)
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func inRanges(rs []IDRange, id uint16) bool {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].To >= id })
	return i < len(rs) && rs[i].From <= id
}

// IsRoof reports whether the item id classifies as a roof tile.
func (c *Catalogs) IsRoof(id uint16) bool {
	return inRanges(c.Components.Roofs, id)
}

// ValidPiece reports whether a component may be placed by a regular player.
// Roof pieces are only legal through the roof command and vice versa.
func (c *Catalogs) ValidPiece(id uint16, roof bool) bool {
	if roof != c.IsRoof(id) {
		return false
	}
	if roof {
		return inRanges(c.Components.Roofs, id)
	}
	return inRanges(c.Components.Pieces, id)
}

// ValidStairMulti reports whether the multi id is a known stair prefab.
func (c *Catalogs) ValidStairMulti(multiID int) bool {
	_, ok := c.Stairs.ByMultiID[multiID]
	return ok
}

// StairMultiIDs returns the known stair multi ids in ascending order.
func (c *Catalogs) StairMultiIDs() []int {
	ids := make([]int, 0, len(c.Stairs.ByMultiID))
	for id := range c.Stairs.ByMultiID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// StairComponents returns the prefab footprint for a stair multi id.
func (c *Catalogs) StairComponents(multiID int) []StairPiece {
	return c.Stairs.ByMultiID[multiID].Components
}

// Height returns the tile height for an item id; unknown ids are flat.
func (c *Catalogs) Height(id uint16) int {
	hs := c.Components.Heights
	i := sort.Search(len(hs), func(i int) bool { return hs[i].To >= id })
	if i < len(hs) && hs[i].From <= id {
		return hs[i].Height
	}
	return 0
}

// IsFloor reports whether the item renders on a floor plane of the wire
// format. Anything at wall height or above is a wall-plane tile.
func (c *Catalogs) IsFloor(id uint16) bool {
	return c.Height(id) <= 0
}
