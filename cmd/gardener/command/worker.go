package command

import (
	"fmt"

	"github.com/patchgarden/gardener/internal/bus"
	"github.com/patchgarden/gardener/internal/dispatch"
	"github.com/patchgarden/gardener/internal/loops"
	"github.com/patchgarden/gardener/internal/mirror"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Event bus carrying inbound frames
	busServer, err := cfg.Bus.buildServer()
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	// State mirror fed from the bus
	m := mirror.New()
	ingester := mirror.NewIngester(m, busServer, bus.SubjectFrames)

	// Websocket client publishing frames onto the bus
	client, err := cfg.Game.buildClient(busServer)
	if err != nil {
		return nil, fmt.Errorf("creating game client: %w", err)
	}

	// Persistence server client and the state push-back worker
	storeClient := cfg.Store.buildClient()
	syncer, err := cfg.Store.buildSyncer(storeClient, m)
	if err != nil {
		return nil, fmt.Errorf("creating syncer: %w", err)
	}

	// Loop controller with the four autonomous loops
	dispatcher := dispatch.NewDispatcher(client)
	controller := loops.NewController(cfg.RunState.buildKeeper(), cfg.Loops.autostart())

	feeder := loops.NewFeeder(m, dispatcher, storeClient, loops.FeederConfig{})
	hatcher := loops.NewHatcher(m, dispatcher, storeClient, loops.HatcherConfig{})
	harvester := loops.NewHarvester(m, dispatcher, loops.HarvesterConfig{})
	buyer := loops.NewBuyer(m, dispatcher, loops.BuyerConfig{})

	controller.Register(loops.LoopFeeder, feeder.Run)
	controller.Register(loops.LoopHatcher, hatcher.Run)
	controller.Register(loops.LoopHarvester, harvester.Run)
	controller.Register(loops.LoopBuyer, buyer.Run)

	return service.WorkerList{
		"bus":       busServer,
		"transport": client,
		"ingester":  ingester,
		"syncer":    syncer,
		"loops":     controller,
	}, nil
}
