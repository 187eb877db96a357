package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// AllowStairSectioning makes the client remove a whole staircase run
	// locally on delete; the server then only removes the targeted entry.
	AllowStairSectioning bool `yaml:"allow_stair_sectioning"`

	// RoofBuildingEnabled gates the roof commands for regular players.
	RoofBuildingEnabled bool `yaml:"roof_building_enabled"`

	// CustomizationCost is the flat fee added on every commit.
	CustomizationCost int `yaml:"customization_cost"`

	// ComponentPrice is the per-component price delta applied on commit.
	ComponentPrice int `yaml:"component_price"`

	// SendBufferSize is the per-client outgoing packet buffer.
	SendBufferSize int `yaml:"send_buffer_size"`

	// StartingBalance seeds the bank account of mobiles minted by the dev
	// roster. Production deployments resolve accounts externally.
	StartingBalance int `yaml:"starting_balance"`
}

func Default() Tuning {
	return Tuning{
		AllowStairSectioning: true,
		RoofBuildingEnabled:  true,
		CustomizationCost:    0,
		ComponentPrice:       500,
		SendBufferSize:       256,
		StartingBalance:      100000,
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.ComponentPrice < 0 {
		return t, fmt.Errorf("tuning.yaml: component_price must be >= 0")
	}
	if t.SendBufferSize <= 0 {
		t.SendBufferSize = Default().SendBufferSize
	}
	return t, nil
}
