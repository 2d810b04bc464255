// Package dispatch turns loop decisions into outbound game actions. It is
// a thin layer over the socket sender: one method per action, no retries,
// no queueing. A failed send is reported to the caller and the loop decides
// what to do on its next tick.
package dispatch

import (
	"context"
	"fmt"

	"github.com/patchgarden/gardener/internal/protocol"
)

// Sender pushes one JSON message to the game socket.
type Sender interface {
	Send(ctx context.Context, v any) error
}

type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

func (d *Dispatcher) FeedPet(ctx context.Context, petID, cropItemID string) error {
	return d.sender.Send(ctx, protocol.NewFeedPet(petID, cropItemID))
}

func (d *Dispatcher) HarvestCrop(ctx context.Context, slot, slotIndex int) error {
	return d.sender.Send(ctx, protocol.NewHarvestCrop(slot, slotIndex))
}

func (d *Dispatcher) PlantSeed(ctx context.Context, slot int, species string) error {
	return d.sender.Send(ctx, protocol.NewPlantSeed(slot, species))
}

func (d *Dispatcher) PlantEgg(ctx context.Context, slot int, eggID string) error {
	return d.sender.Send(ctx, protocol.NewPlantEgg(slot, eggID))
}

func (d *Dispatcher) HatchEgg(ctx context.Context, slot int) error {
	return d.sender.Send(ctx, protocol.NewHatchEgg(slot))
}

func (d *Dispatcher) SellPet(ctx context.Context, itemID string) error {
	return d.sender.Send(ctx, protocol.NewSellPet(itemID))
}

func (d *Dispatcher) SellAllCrops(ctx context.Context) error {
	return d.sender.Send(ctx, protocol.NewSellAllCrops())
}

// Purchase buys one unit of an item from the named shop kind.
func (d *Dispatcher) Purchase(ctx context.Context, kind, id string) error {
	msg, ok := protocol.NewPurchase(kind, id)
	if !ok {
		return fmt.Errorf("unknown shop kind %q", kind)
	}
	return d.sender.Send(ctx, msg)
}
