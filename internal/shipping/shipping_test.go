package shipping

import (
	"testing"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
)

func TestRegionsAreCompleteAndOrdered(t *testing.T) {
	all := Regions()
	if len(all) != 58 {
		t.Fatalf("expected 58 wilayas, got %d", len(all))
	}

	seen := make(map[int]struct{}, len(all))
	for i, region := range all {
		if region.Code != i+1 {
			t.Fatalf("expected code %d at position %d, got %d", i+1, i, region.Code)
		}
		if _, dup := seen[region.Code]; dup {
			t.Fatalf("duplicate wilaya code %d", region.Code)
		}
		seen[region.Code] = struct{}{}
		if region.Name == "" || region.ArabicName == "" {
			t.Fatalf("wilaya %d is missing a name variant", region.Code)
		}
	}
}

func TestEveryRegionHasARateEntry(t *testing.T) {
	for _, region := range Regions() {
		rate, ok := rates[region.Code]
		if !ok {
			t.Fatalf("wilaya %d (%s) has no rate entry", region.Code, region.Name)
		}
		if rate.Home == nil && rate.Stopdesk == nil {
			t.Fatalf("wilaya %d (%s) offers no delivery mode at all", region.Code, region.Name)
		}
	}
}

func TestEveryCommuneResolvesToARegion(t *testing.T) {
	for _, commune := range communes {
		region, ok := RegionByCode(commune.RegionCode)
		if !ok {
			t.Fatalf("commune %s references unknown wilaya code %d", commune.Name, commune.RegionCode)
		}
		found := false
		for _, candidate := range Communes(region.Code) {
			if candidate.Name == commune.Name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("commune %s not returned for wilaya %d", commune.Name, region.Code)
		}
	}
}

func TestRegionByNameMatchesBothAliases(t *testing.T) {
	latin, ok := RegionByName("Alger")
	if !ok {
		t.Fatal("expected to resolve Alger by Latin name")
	}
	arabic, ok := RegionByName("الجزائر")
	if !ok {
		t.Fatal("expected to resolve Alger by Arabic name")
	}
	if latin.Code != arabic.Code {
		t.Fatalf("aliases resolved to different wilayas: %d vs %d", latin.Code, arabic.Code)
	}
	if got := Fee("Alger", domain.DeliveryModeHome); got != Fee("الجزائر", domain.DeliveryModeHome) {
		t.Fatalf("fee differs between aliases: %d", got)
	}
}

func TestFeeUnknownRegionIsZero(t *testing.T) {
	if got := Fee("Atlantis", domain.DeliveryModeHome); got != 0 {
		t.Fatalf("expected zero fee for unknown wilaya, got %d", got)
	}
	if PickupAvailable("Atlantis") {
		t.Fatal("expected pickup to be unavailable for unknown wilaya")
	}
}

func TestFeeMissingStopdeskIsZero(t *testing.T) {
	// Tindouf has no pickup desk.
	if got := Fee("Tindouf", domain.DeliveryModeStopdesk); got != 0 {
		t.Fatalf("expected zero stopdesk fee for Tindouf, got %d", got)
	}
	if PickupAvailable("Tindouf") {
		t.Fatal("expected pickup unavailable for Tindouf")
	}
	if got := Fee("Tindouf", domain.DeliveryModeHome); got != 1400 {
		t.Fatalf("expected home fee 1400 for Tindouf, got %d", got)
	}
}

func TestPickupAvailableWhereDeskExists(t *testing.T) {
	if !PickupAvailable("Oran") {
		t.Fatal("expected pickup available for Oran")
	}
	if got := Fee("Oran", domain.DeliveryModeStopdesk); got != 350 {
		t.Fatalf("expected stopdesk fee 350 for Oran, got %d", got)
	}
}

func TestUnrecognisedModeFallsBackToHome(t *testing.T) {
	home := Fee("Blida", domain.DeliveryModeHome)
	if got := Fee("Blida", domain.DeliveryMode("express")); got != home {
		t.Fatalf("expected fallback to home fee %d, got %d", home, got)
	}
	if mode := ParseDeliveryMode("express"); mode != domain.DeliveryModeHome {
		t.Fatalf("expected unrecognised mode to parse as home, got %s", mode)
	}
	if mode := ParseDeliveryMode("stopdesk"); mode != domain.DeliveryModeStopdesk {
		t.Fatalf("expected stopdesk to parse as stopdesk, got %s", mode)
	}
}

func TestCommuneCodesUniqueWithinWilaya(t *testing.T) {
	for _, region := range Regions() {
		seen := map[int]string{}
		for _, commune := range Communes(region.Code) {
			if commune.Code <= 0 {
				t.Fatalf("commune %s in wilaya %d has no code", commune.Name, region.Code)
			}
			if prev, dup := seen[commune.Code]; dup {
				t.Fatalf("wilaya %d reuses commune code %d for %s and %s", region.Code, commune.Code, prev, commune.Name)
			}
			seen[commune.Code] = commune.Name
		}
	}
}

func TestCommunesUnknownRegionIsEmpty(t *testing.T) {
	if got := Communes(99); len(got) != 0 {
		t.Fatalf("expected no communes for unknown wilaya, got %d", len(got))
	}
}

func TestCommunesSortedByName(t *testing.T) {
	list := Communes(16)
	if len(list) < 2 {
		t.Fatalf("expected several communes for Alger, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Fatalf("communes not sorted: %s before %s", list[i-1].Name, list[i].Name)
		}
	}
}
