// Package shipping holds the static Algerian region catalog and resolves
// delivery fees for the storefront. The data is compiled in; lookups never
// touch the network and never fail.
package shipping

import (
	"sort"
	"strings"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
)

// Region identifies a wilaya by its administrative code and bilingual names.
type Region struct {
	Code       int
	Name       string
	ArabicName string
}

// Commune is a municipality belonging to a wilaya. Code is unique within the
// parent wilaya only; different wilayas reuse the same commune codes.
type Commune struct {
	Code       int
	Name       string
	ArabicName string
	RegionCode int
}

// Rate carries the delivery prices for one wilaya in Algerian dinars.
// A nil price means the mode is not offered there.
type Rate struct {
	Home     *int64
	Stopdesk *int64
}

// Regions returns every wilaya ordered by ascending code.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// RegionByCode resolves a wilaya by its administrative code.
func RegionByCode(code int) (Region, bool) {
	for _, region := range regions {
		if region.Code == code {
			return region, true
		}
	}
	return Region{}, false
}

// RegionByName resolves a wilaya by exact Latin or Arabic name. Both aliases
// address the same entry, so callers may use whichever the UI collected.
func RegionByName(name string) (Region, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Region{}, false
	}
	for _, region := range regions {
		if region.Name == trimmed || region.ArabicName == trimmed {
			return region, true
		}
	}
	return Region{}, false
}

// Communes lists the municipalities of a wilaya sorted by Latin name.
// Unknown codes yield an empty slice.
func Communes(regionCode int) []Commune {
	var out []Commune
	for _, commune := range communes {
		if commune.RegionCode == regionCode {
			out = append(out, commune)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RateFor returns the rate entry for the named wilaya.
func RateFor(regionName string) (Rate, bool) {
	region, ok := RegionByName(regionName)
	if !ok {
		return Rate{}, false
	}
	rate, ok := rates[region.Code]
	return rate, ok
}

// Fee resolves the delivery price for the wilaya and mode. Unknown regions,
// missing rate entries, and unoffered modes all price at zero so a stale
// client can still submit and the shop settles the fee by phone.
// Unrecognised modes fall back to home delivery pricing.
func Fee(regionName string, mode domain.DeliveryMode) int64 {
	rate, ok := RateFor(regionName)
	if !ok {
		return 0
	}

	price := rate.Home
	if mode == domain.DeliveryModeStopdesk {
		price = rate.Stopdesk
	}
	if price == nil {
		return 0
	}
	return *price
}

// PickupAvailable reports whether stopdesk delivery is offered in the wilaya.
func PickupAvailable(regionName string) bool {
	rate, ok := RateFor(regionName)
	if !ok {
		return false
	}
	return rate.Stopdesk != nil && *rate.Stopdesk > 0
}

// ParseDeliveryMode normalises a client-provided mode string. Anything that
// is not recognisably stopdesk resolves to home delivery.
func ParseDeliveryMode(raw string) domain.DeliveryMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(domain.DeliveryModeStopdesk), "desk", "pickup", "bureau":
		return domain.DeliveryModeStopdesk
	default:
		return domain.DeliveryModeHome
	}
}

func price(v int64) *int64 { return &v }
