package command

import (
	"github.com/pixil98/go-errors"
)

type Config struct {
	Game     GameConfig     `json:"game"`
	Store    StoreConfig    `json:"store"`
	Bus      BusConfig      `json:"bus"`
	RunState RunStateConfig `json:"run_state"`
	Loops    LoopsConfig    `json:"loops"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Game.validate())
	el.Add(c.Store.validate())
	el.Add(c.Bus.validate())
	el.Add(c.RunState.validate())
	el.Add(c.Loops.validate())

	return el.Err()
}
