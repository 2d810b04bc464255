package command

import (
	"fmt"
	"time"

	"github.com/patchgarden/gardener/internal/loops"
	"github.com/pixil98/go-errors"
)

type LoopsConfig struct {
	Feeder    LoopConfig `json:"feeder"`
	Hatcher   LoopConfig `json:"hatcher"`
	Harvester LoopConfig `json:"harvester"`
	Buyer     LoopConfig `json:"buyer"`
}

func (c *LoopsConfig) validate() error {
	el := errors.NewErrorList()

	el.Add(c.Feeder.validate("feeder"))
	el.Add(c.Hatcher.validate("hatcher"))
	el.Add(c.Harvester.validate("harvester"))
	el.Add(c.Buyer.validate("buyer"))

	return el.Err()
}

// autostart lists the loops the config wants running from boot, keyed by
// loop name.
func (c *LoopsConfig) autostart() map[string]map[string]any {
	out := map[string]map[string]any{}
	for name, lc := range map[string]LoopConfig{
		loops.LoopFeeder:    c.Feeder,
		loops.LoopHatcher:   c.Hatcher,
		loops.LoopHarvester: c.Harvester,
		loops.LoopBuyer:     c.Buyer,
	} {
		if lc.Autostart {
			out[name] = lc.Options
		}
	}
	return out
}

type LoopConfig struct {
	Autostart bool           `json:"autostart,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

func (c *LoopConfig) validate(name string) error {
	el := errors.NewErrorList()

	if v, ok := c.Options["intervalMs"].(string); ok {
		_, err := time.ParseDuration(v)
		if err != nil {
			el.Add(fmt.Errorf("%s: parsing intervalMs: %w", name, err))
		}
	}

	return el.Err()
}
