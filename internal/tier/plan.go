package tier

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Money represents a monetary amount in the smallest currency unit.
type Money struct {
	Amount   int64  `yaml:"amount"`   // Amount in smallest currency unit (cents for USD)
	Currency string `yaml:"currency"` // ISO 4217 currency code
}

// Plan describes a subscription plan. PaddlePriceID links the plan to the
// payment provider's price catalog; it drives checkout creation and the
// price-to-tier resolution in webhook processing. Free plans carry no price ID.
type Plan struct {
	Tier          Tier     `yaml:"tier"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Price         Money    `yaml:"price"`
	Features      []string `yaml:"features"`
	PaddlePriceID string   `yaml:"paddle_price_id"`
}

// Catalog is the immutable set of subscription plans, loaded once at startup
// and injected into the components that need it.
type Catalog struct {
	plans   []Plan
	byTier  map[Tier]Plan
	byPrice map[string]Plan
}

// NewCatalog builds a catalog from the given plans. Every known tier must
// appear exactly once, paid tiers must carry a provider price ID, and price
// IDs must be unique.
func NewCatalog(plans []Plan) (*Catalog, error) {
	byTier := make(map[Tier]Plan, len(plans))
	byPrice := make(map[string]Plan, len(plans))

	for _, p := range plans {
		if !p.Tier.IsValid() {
			return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidCatalog, p.Tier)
		}
		if _, dup := byTier[p.Tier]; dup {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidCatalog, p.Tier)
		}
		if p.Tier != Free && p.PaddlePriceID == "" {
			return nil, fmt.Errorf("%w: paid tier %q has no provider price id", ErrInvalidCatalog, p.Tier)
		}
		if p.PaddlePriceID != "" {
			if _, dup := byPrice[p.PaddlePriceID]; dup {
				return nil, fmt.Errorf("%w: duplicate price id %q", ErrInvalidCatalog, p.PaddlePriceID)
			}
			byPrice[p.PaddlePriceID] = p
		}
		byTier[p.Tier] = p
	}

	for _, t := range All {
		if _, ok := byTier[t]; !ok {
			return nil, fmt.Errorf("%w: missing plan for tier %q", ErrInvalidCatalog, t)
		}
	}

	ordered := make([]Plan, len(plans))
	copy(ordered, plans)
	sort.Slice(ordered, func(i, j int) bool {
		return Rank(ordered[i].Tier) < Rank(ordered[j].Tier)
	})

	return &Catalog{plans: ordered, byTier: byTier, byPrice: byPrice}, nil
}

// LoadCatalog reads plans from a YAML file and validates them.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	return NewCatalog(doc.Plans)
}

// List returns all plans in ascending rank order.
func (c *Catalog) List() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// ByTier returns the plan for a tier.
func (c *Catalog) ByTier(t Tier) (Plan, bool) {
	p, ok := c.byTier[t]
	return p, ok
}

// ByPriceID returns the plan matching a provider price ID.
func (c *Catalog) ByPriceID(priceID string) (Plan, bool) {
	p, ok := c.byPrice[priceID]
	return p, ok
}

// TierForPriceID resolves a provider price ID to a tier. Unrecognized price
// IDs resolve to Free so a webhook carrying a price this deployment does not
// know about can never grant a paid tier.
func (c *Catalog) TierForPriceID(priceID string) Tier {
	if p, ok := c.byPrice[priceID]; ok {
		return p.Tier
	}
	return Free
}
