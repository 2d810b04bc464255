package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"
)

type fakeSender struct {
	sent []any
	err  error
}

func (f *fakeSender) Send(_ context.Context, v any) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeSender) lastJSON(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	b, err := json.Marshal(f.sent[len(f.sent)-1])
	if err != nil {
		t.Fatalf("marshaling sent message: %v", err)
	}
	return string(b)
}

func TestDispatcher_Messages(t *testing.T) {
	tests := map[string]struct {
		send func(*Dispatcher, context.Context) error
		want string
	}{
		"feed pet": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.FeedPet(ctx, "p-1", "i-9") },
			want: `{"type":"FeedPet","petId":"p-1","cropItemId":"i-9"}`,
		},
		"harvest crop": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.HarvestCrop(ctx, 14, 2) },
			want: `{"type":"HarvestCrop","slot":14,"slotIndex":2}`,
		},
		"plant seed": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.PlantSeed(ctx, 3, "carrot") },
			want: `{"type":"PlantSeed","slot":3,"species":"carrot"}`,
		},
		"plant egg": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.PlantEgg(ctx, 7, "rareegg") },
			want: `{"type":"PlantEgg","slot":7,"eggId":"rareegg"}`,
		},
		"hatch egg": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.HatchEgg(ctx, 7) },
			want: `{"type":"HatchEgg","slot":7}`,
		},
		"sell pet": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.SellPet(ctx, "i-2") },
			want: `{"type":"SellPet","itemId":"i-2"}`,
		},
		"sell all crops": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.SellAllCrops(ctx) },
			want: `{"type":"SellAllCrops"}`,
		},
		"purchase seed": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.Purchase(ctx, "seed", "carrot") },
			want: `{"type":"PurchaseSeed","id":"carrot"}`,
		},
		"purchase decor": {
			send: func(d *Dispatcher, ctx context.Context) error { return d.Purchase(ctx, "decor", "gnome") },
			want: `{"type":"PurchaseDecor","id":"gnome"}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sender := &fakeSender{}
			d := NewDispatcher(sender)
			if err := tt.send(d, context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "message", sender.lastJSON(t), tt.want)
		})
	}
}

func TestDispatcher_UnknownShopKind(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender)

	err := d.Purchase(context.Background(), "potions", "mana")
	if err == nil {
		t.Fatal("expected error for unknown shop kind")
	}
	testutil.AssertEqual(t, "nothing sent", len(sender.sent), 0)
}

func TestDispatcher_SendErrorPropagates(t *testing.T) {
	sender := &fakeSender{err: fmt.Errorf("socket closed")}
	d := NewDispatcher(sender)

	if err := d.SellAllCrops(context.Background()); err == nil {
		t.Fatal("expected send error")
	}
}
