package character

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
	"github.com/dabidoe/character-foundry/internal/rules"
)

const maxAttunedItems = 3

func findInventoryItem(c *entities.Character, itemID string) (*entities.Item, error) {
	if itemID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}
	idx := c.FindItem(itemID)
	if idx < 0 {
		return nil, errors.NotFound("Item not found in inventory")
	}
	return &c.Inventory[idx], nil
}

// AddItem copies a library item into the inventory, or adds a custom item
func (o *Orchestrator) AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Quantity < 0 {
		return nil, errors.InvalidArgument("quantity cannot be negative")
	}

	var item entities.Item
	switch {
	case input.GUID != "":
		if o.itemRepo == nil {
			return nil, errors.Unavailable("item library is not configured")
		}
		got, err := o.itemRepo.Get(ctx, items.GetInput{GUID: input.GUID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get library item %s", input.GUID)
		}
		item = got.Item.Instance(o.itemIDGen.Generate(), input.Quantity)
	case input.Item != nil:
		if strings.TrimSpace(input.Item.Name) == "" {
			return nil, errors.InvalidArgument("item name is required")
		}
		item = input.Item.Instance(o.itemIDGen.Generate(), input.Quantity)
		if item.Category == "" {
			item.Category = entities.CategoryGear
		}
		if item.Rarity == "" {
			item.Rarity = entities.RarityCommon
		}
	default:
		return nil, errors.InvalidArgument("guid or item is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	c.Inventory = append(c.Inventory, item)

	saved, err := o.save(ctx, c)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Item added to inventory",
		"character_id", saved.ID,
		"item_id", item.ID,
		"guid", item.GUID,
		"quantity", item.Quantity,
	)

	added := saved.Inventory[len(saved.Inventory)-1]
	return &AddItemOutput{Item: &added, Inventory: saved.Inventory}, nil
}

// EquipItem equips an inventory item and unequips whatever held its slot
func (o *Orchestrator) EquipItem(ctx context.Context, input *EquipItemInput) (*EquipItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	item, err := findInventoryItem(c, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Slot == "" {
		return nil, errors.InvalidArgumentf("%s cannot be equipped", item.Name)
	}

	// drop the item's current slot so re-equipping can move it
	item.Equipped = false
	item.EquippedSlot = ""
	layout := rules.EquipmentLayout(c.Inventory)

	slot := entities.Slot(input.Slot)
	if slot == "" {
		slot = item.Slot
	}
	if slot == entities.SlotRing {
		switch {
		case layout[entities.SlotRing1] == nil:
			slot = entities.SlotRing1
		case layout[entities.SlotRing2] == nil:
			slot = entities.SlotRing2
		default:
			return nil, errors.FailedPrecondition("both ring slots are occupied")
		}
	}
	if !item.CanEquipIn(slot) {
		return nil, errors.InvalidArgumentf("%s cannot be equipped in %s", item.Name, slot)
	}

	if item.RequiresAttunement && !item.Attuned {
		attuned := 0
		for _, other := range c.Inventory {
			if other.Attuned {
				attuned++
			}
		}
		if attuned >= maxAttunedItems {
			return nil, errors.FailedPreconditionf("cannot attune to more than %d items", maxAttunedItems)
		}
		item.Attuned = true
	}

	displaced := []entities.Slot{slot}
	if item.HasProperty(entities.PropertyTwoHanded) {
		displaced = append(displaced, entities.SlotOffHand)
	}
	if slot == entities.SlotOffHand {
		if main := layout[entities.SlotMainHand]; main != nil && main.HasProperty(entities.PropertyTwoHanded) {
			displaced = append(displaced, entities.SlotMainHand)
		}
	}

	var unequipped []*entities.Item
	for _, s := range displaced {
		if other := layout[s]; other != nil {
			other.Equipped = false
			other.EquippedSlot = ""
			unequipped = append(unequipped, other)
		}
	}

	item.Equipped = true
	item.EquippedSlot = slot
	c.AC = rules.ArmorClass(c)

	if _, err := o.save(ctx, c); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Item equipped",
		"character_id", c.ID,
		"item_id", item.ID,
		"slot", slot,
		"ac", c.AC,
	)

	return &EquipItemOutput{
		Item:       item,
		Slot:       slot,
		Unequipped: unequipped,
		AC:         c.AC,
	}, nil
}

// UnequipItem unequips an inventory item. Unequipping an unequipped item
// is a no-op.
func (o *Orchestrator) UnequipItem(ctx context.Context, input *UnequipItemInput) (*UnequipItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	item, err := findInventoryItem(c, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Equipped {
		return &UnequipItemOutput{Item: item, AC: c.AC}, nil
	}

	item.Equipped = false
	item.EquippedSlot = ""
	c.AC = rules.ArmorClass(c)

	if _, err := o.save(ctx, c); err != nil {
		return nil, err
	}

	return &UnequipItemOutput{Item: item, AC: c.AC}, nil
}

// RemoveItem drops part or all of a stack
func (o *Orchestrator) RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Quantity < 0 {
		return nil, errors.InvalidArgument("quantity cannot be negative")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	item, err := findInventoryItem(c, input.ItemID)
	if err != nil {
		return nil, err
	}

	out := &RemoveItemOutput{ItemID: item.ID}
	if input.Quantity > 0 && input.Quantity < item.Quantity {
		item.Quantity -= input.Quantity
		out.Removed = input.Quantity
		out.Remaining = item.Quantity
	} else {
		out.Removed = max(item.Quantity, 1)
		idx := c.FindItem(item.ID)
		c.Inventory = append(c.Inventory[:idx], c.Inventory[idx+1:]...)
	}
	c.AC = rules.ArmorClass(c)
	out.AC = c.AC

	if _, err := o.save(ctx, c); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Item removed from inventory",
		"character_id", c.ID,
		"item_id", out.ItemID,
		"removed", out.Removed,
	)

	return out, nil
}
