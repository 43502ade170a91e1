package engine

import (
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/vendor"
)

// Vendors lists the vendors at the current location.
func (g *Game) Vendors() []*vendor.Def {
	return g.market.At(g.player.LocationID)
}

// CanTrade reports nil if the ranger may trade with vendorID right now.
func (g *Game) CanTrade(vendorID string) error {
	_, err := g.vendorHere(vendorID)
	return err
}

func (g *Game) vendorHere(vendorID string) (*vendor.Def, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	d, err := g.market.Get(vendorID)
	if err != nil {
		return nil, err
	}
	if d.Location != g.player.LocationID {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrVendorElsewhere)
	}
	if err := d.Admits(g.player); err != nil {
		return nil, err
	}
	return d, nil
}

// BuyArtifact purchases one artifact. No day passes.
//
// Postcondition: On error neither credits nor inventory change.
func (g *Game) BuyArtifact(vendorID, artifactID string) error {
	if _, err := g.vendorHere(vendorID); err != nil {
		return err
	}
	a, err := g.market.BuyArtifact(vendorID, artifactID, g.roller.UUID("artifact id "+artifactID), g.player, g.player.Inventory)
	if err != nil {
		return err
	}
	g.notify(SeveritySuccess, "Purchased %s for %d credits.", a.Name(), a.Def.Cost)
	return nil
}

// BuyBlueprint purchases a service blueprint.
func (g *Game) BuyBlueprint(vendorID, serviceID string) error {
	if _, err := g.vendorHere(vendorID); err != nil {
		return err
	}
	price, err := g.market.BuyBlueprint(vendorID, serviceID, g.player, g.player.Inventory)
	if err != nil {
		return err
	}
	def, _ := g.bundle.Services.Get(serviceID)
	g.notify(SeveritySuccess, "Purchased %s blueprint for %d credits.", def.Name, price)
	return nil
}

// BuyConsumable purchases qty units of a consumable.
func (g *Game) BuyConsumable(vendorID, consumableID string, qty int) error {
	if _, err := g.vendorHere(vendorID); err != nil {
		return err
	}
	total, err := g.market.BuyConsumable(vendorID, consumableID, qty, g.player, g.player.Inventory)
	if err != nil {
		return err
	}
	def, _ := g.bundle.Items.Consumable(consumableID)
	g.notify(SeveritySuccess, "Purchased %d x %s for %d credits.", qty, def.Name, total)
	return nil
}

// SellArtifact sells an owned artifact back for half its cost.
func (g *Game) SellArtifact(vendorID, instanceID string) error {
	if _, err := g.vendorHere(vendorID); err != nil {
		return err
	}
	a, err := g.player.Inventory.Artifact(instanceID)
	if err != nil {
		return err
	}
	name := a.Name()
	price, err := g.market.SellArtifact(vendorID, instanceID, g.player, g.player.Inventory)
	if err != nil {
		return err
	}
	g.notify(SeveritySuccess, "Sold %s for %d credits.", name, price)
	return nil
}

// SellBlueprint sells an owned blueprint back at its deploy cost.
func (g *Game) SellBlueprint(vendorID, serviceID string) error {
	if _, err := g.vendorHere(vendorID); err != nil {
		return err
	}
	price, err := g.market.SellBlueprint(vendorID, serviceID, g.player, g.player.Inventory)
	if err != nil {
		return err
	}
	g.notify(SeveritySuccess, "Sold blueprint %s for %d credits.", serviceID, price)
	return nil
}
