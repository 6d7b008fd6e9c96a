// Package plans implements the pure pricing-plan transformation pipeline:
// flattening the catalog tree into display rows, filtering by price range
// and recommendation flag, and sorting for presentation. All functions
// allocate fresh output and never mutate their inputs.
package plans

import (
	"sort"

	"github.com/insurcert/backend/internal/domain"
)

// Flatten walks the plan tree in pre-order and returns one display row
// per priced node. A row's FullPath is the names of its ancestors and
// itself joined by " / ", root to leaf. Category nodes (no price)
// contribute to paths but produce no row; a priced node with children
// appears both as a row and as a prefix for its descendants.
func Flatten(plans []domain.PricingPlan) []domain.DisplayPricingPlan {
	return flatten(plans, "")
}

func flatten(plans []domain.PricingPlan, parentPath string) []domain.DisplayPricingPlan {
	result := []domain.DisplayPricingPlan{}

	for _, plan := range plans {
		currentPath := joinPath(parentPath, plan.Name)

		if plan.Price != nil {
			result = append(result, domain.DisplayPricingPlan{
				ID:       plan.ID,
				Name:     plan.Name,
				FullPath: currentPath,
				Price:    *plan.Price,
			})
		}

		if len(plan.Children) > 0 {
			result = append(result, flatten(plan.Children, currentPath)...)
		}
	}

	return result
}

// FilterRecommended traverses the tree like Flatten but emits a row only
// when the node is priced, explicitly marked recommended, and priced
// within [minPrice, maxPrice] inclusive. The recommendation flag is
// checked per node and never propagates from a parent to its children.
func FilterRecommended(plans []domain.PricingPlan, minPrice, maxPrice float64) []domain.DisplayPricingPlan {
	return filterRecommended(plans, minPrice, maxPrice, "")
}

func filterRecommended(plans []domain.PricingPlan, minPrice, maxPrice float64, parentPath string) []domain.DisplayPricingPlan {
	result := []domain.DisplayPricingPlan{}

	for _, plan := range plans {
		currentPath := joinPath(parentPath, plan.Name)

		if plan.Price != nil &&
			plan.IsRecommended != nil && *plan.IsRecommended &&
			*plan.Price >= minPrice && *plan.Price <= maxPrice {
			result = append(result, domain.DisplayPricingPlan{
				ID:       plan.ID,
				Name:     plan.Name,
				FullPath: currentPath,
				Price:    *plan.Price,
			})
		}

		if len(plan.Children) > 0 {
			result = append(result, filterRecommended(plan.Children, minPrice, maxPrice, currentPath)...)
		}
	}

	return result
}

// FilterByCriteria filters already-flattened rows by the inclusive price
// range in filter. When filter.RecommendedOnly is set, a row survives
// only if a node with the same ID is marked recommended somewhere in
// originalTree. A nil originalTree treats every row as recommended; the
// server always supplies the catalog tree, so the permissive fallback
// only applies to callers that opted out of the recommendation check.
func FilterByCriteria(rows []domain.DisplayPricingPlan, filter domain.PlanFilter, originalTree []domain.PricingPlan) []domain.DisplayPricingPlan {
	result := []domain.DisplayPricingPlan{}

	for _, row := range rows {
		if row.Price < filter.MinPrice || row.Price > filter.MaxPrice {
			continue
		}
		if filter.RecommendedOnly && !isRecommended(row.ID, originalTree, originalTree != nil) {
			continue
		}
		result = append(result, row)
	}

	return result
}

// SortByPriceDescending returns a new slice sorted by price, highest
// first. The input slice is left untouched; equal prices keep their
// relative order.
func SortByPriceDescending(rows []domain.DisplayPricingPlan) []domain.DisplayPricingPlan {
	sorted := make([]domain.DisplayPricingPlan, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price > sorted[j].Price
	})
	return sorted
}

func joinPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + " / " + name
}

// isRecommended searches the tree depth-first for the node with the
// given ID and reports whether it is explicitly marked recommended.
// strict is false when no tree was supplied, in which case every ID
// passes.
func isRecommended(id int, tree []domain.PricingPlan, strict bool) bool {
	if !strict {
		return true
	}
	for _, plan := range tree {
		if plan.ID == id {
			return plan.IsRecommended != nil && *plan.IsRecommended
		}
		if len(plan.Children) > 0 && isRecommended(id, plan.Children, true) {
			return true
		}
	}
	return false
}
