package catalogs

import (
	_ "embed"
	"fmt"
)

//go:embed defaults/components.json
var defaultComponents []byte

//go:embed defaults/stairs.json
var defaultStairs []byte

// Default returns the built-in catalog set. Shards override it by shipping
// components.json / stairs.json in the config directory.
func Default() *Catalogs {
	var c Catalogs
	if err := parseComponents(defaultComponents, &c.Components); err != nil {
		panic(fmt.Sprintf("embedded components.json: %v", err))
	}
	if err := parseStairs(defaultStairs, &c.Stairs); err != nil {
		panic(fmt.Sprintf("embedded stairs.json: %v", err))
	}
	return &c
}
