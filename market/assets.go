package market

import (
	"fmt"
	"sort"
)

// AssetClass is the per-class trading configuration injected at run start.
type AssetClass struct {
	Name       string  `json:"name" yaml:"name"`
	Unit       string  `json:"unit" yaml:"unit"`
	MinQty     float64 `json:"min_qty" yaml:"min_qty"`
	DefaultQty float64 `json:"default_qty" yaml:"default_qty"`
	FeeTier    string  `json:"fee_tier" yaml:"fee_tier"`
}

// DefaultFeeTier is the tier every built-in class uses.
const DefaultFeeTier = "standard"

var AssetClasses = map[string]AssetClass{
	"Stock": {
		Name:       "Stock",
		Unit:       "shares",
		MinQty:     1,
		DefaultQty: 1000,
		FeeTier:    DefaultFeeTier,
	},
	"Forex": {
		Name:       "Forex",
		Unit:       "points",
		MinQty:     100,
		DefaultQty: 100,
		FeeTier:    DefaultFeeTier,
	},
	"Crypto": {
		Name:       "Crypto",
		Unit:       "coins",
		MinQty:     0.001,
		DefaultQty: 1,
		FeeTier:    DefaultFeeTier,
	},
}

// LookupAssetClass finds a class by name, preferring overrides.
func LookupAssetClass(name string, overrides map[string]AssetClass) (AssetClass, error) {
	if ac, ok := overrides[name]; ok {
		if ac.Name == "" {
			ac.Name = name
		}
		return ac, nil
	}
	if ac, ok := AssetClasses[name]; ok {
		return ac, nil
	}
	return AssetClass{}, fmt.Errorf("unknown asset class %q (known: %v)", name, AssetClassNames())
}

func AssetClassNames() []string {
	names := make([]string, 0, len(AssetClasses))
	for n := range AssetClasses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
