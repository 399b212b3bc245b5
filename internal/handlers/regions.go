package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jacoubbakhouche/foufou-api/internal/platform/httpx"
	"github.com/jacoubbakhouche/foufou-api/internal/shipping"
)

// RegionHandlers serves the static wilaya catalog and delivery fee quotes.
// The data is compiled in, so these endpoints need no dependencies.
type RegionHandlers struct{}

// NewRegionHandlers constructs handlers over the shipping region catalog.
func NewRegionHandlers() *RegionHandlers {
	return &RegionHandlers{}
}

// Routes wires the region endpoints onto the provided router.
func (h *RegionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/regions", h.listRegions)
	r.Get("/regions/{regionCode}/communes", h.listCommunes)
	r.Get("/shipping/quote", h.quoteShipping)
}

type regionPayload struct {
	Code            int    `json:"code"`
	Name            string `json:"name"`
	ArabicName      string `json:"arabicName"`
	HomePrice       *int64 `json:"homePrice"`
	StopdeskPrice   *int64 `json:"stopdeskPrice"`
	PickupAvailable bool   `json:"pickupAvailable"`
}

type communePayload struct {
	Code       int    `json:"code"`
	Name       string `json:"name"`
	ArabicName string `json:"arabicName"`
}

type shippingQuotePayload struct {
	Wilaya          string `json:"wilaya"`
	Mode            string `json:"mode"`
	Fee             int64  `json:"fee"`
	PickupAvailable bool   `json:"pickupAvailable"`
}

func (h *RegionHandlers) listRegions(w http.ResponseWriter, r *http.Request) {
	regions := shipping.Regions()
	payload := make([]regionPayload, 0, len(regions))
	for _, region := range regions {
		entry := regionPayload{
			Code:            region.Code,
			Name:            region.Name,
			ArabicName:      region.ArabicName,
			PickupAvailable: shipping.PickupAvailable(region.Name),
		}
		if rate, ok := shipping.RateFor(region.Name); ok {
			entry.HomePrice = rate.Home
			entry.StopdeskPrice = rate.Stopdesk
		}
		payload = append(payload, entry)
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSONResponse(w, http.StatusOK, map[string]any{"regions": payload})
}

func (h *RegionHandlers) listCommunes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := strings.TrimSpace(chi.URLParam(r, "regionCode"))
	code, err := strconv.Atoi(raw)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "region code must be numeric", http.StatusBadRequest))
		return
	}

	region, ok := shipping.RegionByCode(code)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("region_not_found", "unknown region code", http.StatusNotFound))
		return
	}

	communes := shipping.Communes(region.Code)
	payload := make([]communePayload, 0, len(communes))
	for _, commune := range communes {
		payload = append(payload, communePayload{
			Code:       commune.Code,
			Name:       commune.Name,
			ArabicName: commune.ArabicName,
		})
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"region":   regionPayload{Code: region.Code, Name: region.Name, ArabicName: region.ArabicName, PickupAvailable: shipping.PickupAvailable(region.Name)},
		"communes": payload,
	})
}

func (h *RegionHandlers) quoteShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wilaya := strings.TrimSpace(r.URL.Query().Get("wilaya"))
	if wilaya == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "wilaya query parameter is required", http.StatusBadRequest))
		return
	}

	mode := shipping.ParseDeliveryMode(r.URL.Query().Get("mode"))
	payload := shippingQuotePayload{
		Wilaya:          wilaya,
		Mode:            string(mode),
		Fee:             shipping.Fee(wilaya, mode),
		PickupAvailable: shipping.PickupAvailable(wilaya),
	}
	writeJSONResponse(w, http.StatusOK, payload)
}
