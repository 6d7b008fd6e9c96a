package handler

import (
	"net/http"
	"strconv"

	"github.com/insurcert/backend/internal/domain"
	"github.com/insurcert/backend/internal/plans"
)

// PlansHandler serves the pricing-plan catalog and its flattened display
// projection.
type PlansHandler struct{}

// NewPlansHandler creates a new PlansHandler.
func NewPlansHandler() *PlansHandler {
	return &PlansHandler{}
}

// List handles GET /api/pricingplans. It returns the raw catalog tree for
// clients that run the transformation pipeline themselves.
func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, domain.PricingCatalog())
}

// Display handles GET /api/pricingplans/display. It runs the full
// pipeline server-side: flatten the catalog, filter by the query
// criteria, and sort by price descending.
//
// Query parameters: minPrice, maxPrice (defaulting to 0 and 200, the
// insurable price range), recommendedOnly (true/false).
func (h *PlansHandler) Display(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePlanFilter(r)
	if err != nil {
		Error(w, err)
		return
	}

	catalog := domain.PricingCatalog()
	rows := plans.Flatten(catalog)
	rows = plans.FilterByCriteria(rows, filter, catalog)
	rows = plans.SortByPriceDescending(rows)

	JSON(w, http.StatusOK, rows)
}

func parsePlanFilter(r *http.Request) (domain.PlanFilter, error) {
	q := r.URL.Query()

	filter := domain.PlanFilter{
		MinPrice: 0,
		MaxPrice: 200,
	}

	if raw := q.Get("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, domain.ErrBadRequest("minPrice must be a number")
		}
		filter.MinPrice = v
	}

	if raw := q.Get("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, domain.ErrBadRequest("maxPrice must be a number")
		}
		filter.MaxPrice = v
	}

	if raw := q.Get("recommendedOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.ErrBadRequest("recommendedOnly must be true or false")
		}
		filter.RecommendedOnly = v
	}

	return filter, nil
}
