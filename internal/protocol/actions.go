package protocol

// Outbound action types accepted by the game socket. Messages are flat
// objects with a type discriminator, matching what the game client sends.
const (
	TypeFeedPet       = "FeedPet"
	TypeHarvestCrop   = "HarvestCrop"
	TypePlantSeed     = "PlantSeed"
	TypePlantEgg      = "PlantEgg"
	TypeHatchEgg      = "HatchEgg"
	TypeSellPet       = "SellPet"
	TypeSellAllCrops  = "SellAllCrops"
	TypePurchaseSeed  = "PurchaseSeed"
	TypePurchaseEgg   = "PurchaseEgg"
	TypePurchaseTool  = "PurchaseTool"
	TypePurchaseDecor = "PurchaseDecor"
)

type FeedPet struct {
	Type       string `json:"type"`
	PetID      string `json:"petId"`
	CropItemID string `json:"cropItemId"`
}

func NewFeedPet(petID, cropItemID string) FeedPet {
	return FeedPet{Type: TypeFeedPet, PetID: petID, CropItemID: cropItemID}
}

type HarvestCrop struct {
	Type      string `json:"type"`
	Slot      int    `json:"slot"`
	SlotIndex int    `json:"slotIndex"`
}

func NewHarvestCrop(slot, slotIndex int) HarvestCrop {
	return HarvestCrop{Type: TypeHarvestCrop, Slot: slot, SlotIndex: slotIndex}
}

type PlantSeed struct {
	Type    string `json:"type"`
	Slot    int    `json:"slot"`
	Species string `json:"species"`
}

func NewPlantSeed(slot int, species string) PlantSeed {
	return PlantSeed{Type: TypePlantSeed, Slot: slot, Species: species}
}

type PlantEgg struct {
	Type  string `json:"type"`
	Slot  int    `json:"slot"`
	EggID string `json:"eggId"`
}

func NewPlantEgg(slot int, eggID string) PlantEgg {
	return PlantEgg{Type: TypePlantEgg, Slot: slot, EggID: eggID}
}

type HatchEgg struct {
	Type string `json:"type"`
	Slot int    `json:"slot"`
}

func NewHatchEgg(slot int) HatchEgg {
	return HatchEgg{Type: TypeHatchEgg, Slot: slot}
}

type SellPet struct {
	Type   string `json:"type"`
	ItemID string `json:"itemId"`
}

func NewSellPet(itemID string) SellPet {
	return SellPet{Type: TypeSellPet, ItemID: itemID}
}

type SellAllCrops struct {
	Type string `json:"type"`
}

func NewSellAllCrops() SellAllCrops {
	return SellAllCrops{Type: TypeSellAllCrops}
}

type Purchase struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NewPurchase builds the purchase message for a shop kind. The second
// return is false for an unknown kind.
func NewPurchase(kind, id string) (Purchase, bool) {
	var t string
	switch kind {
	case ShopSeed:
		t = TypePurchaseSeed
	case ShopEgg:
		t = TypePurchaseEgg
	case ShopTool:
		t = TypePurchaseTool
	case ShopDecor:
		t = TypePurchaseDecor
	default:
		return Purchase{}, false
	}
	return Purchase{Type: t, ID: id}, true
}

// Shop kinds, in purchase order.
const (
	ShopSeed  = "seed"
	ShopEgg   = "egg"
	ShopTool  = "tool"
	ShopDecor = "decor"
)

// ShopKinds lists the shop kinds in canonical purchase order.
func ShopKinds() []string {
	return []string{ShopSeed, ShopEgg, ShopTool, ShopDecor}
}
