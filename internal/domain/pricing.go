package domain

// PricingPlan is a node in the hierarchical pricing catalog. Category
// nodes carry no price of their own and only group children; a node may
// carry both a price and children, in which case it is sold directly and
// also acts as a path prefix for its children.
type PricingPlan struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Price         *float64      `json:"price"`
	IsRecommended *bool         `json:"isRecommended"`
	Children      []PricingPlan `json:"children"`
}

// DisplayPricingPlan is the flattened, always-priced projection of a
// catalog node used for presentation.
type DisplayPricingPlan struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	FullPath string  `json:"fullPath"`
	Price    float64 `json:"price"`
}

// PlanFilter narrows a flattened plan list by price range and
// recommendation flag. Both price bounds are inclusive.
type PlanFilter struct {
	MinPrice        float64 `json:"minPrice"`
	MaxPrice        float64 `json:"maxPrice"`
	RecommendedOnly bool    `json:"recommendedOnly"`
}

// PricingCatalog returns the pricing-plan tree served by the read endpoint.
func PricingCatalog() []PricingPlan {
	return []PricingPlan{
		{
			ID:   1,
			Name: "Electronics",
			Children: []PricingPlan{
				{
					ID:   2,
					Name: "Smartphones",
					Children: []PricingPlan{
						{ID: 3, Name: "Apple Iphone 14 PRO", Price: price(75), IsRecommended: flag(true)},
						{ID: 4, Name: "Samsung Galaxy S23", Price: price(55)},
						{ID: 5, Name: "Google Pixel 8", Price: price(48), IsRecommended: flag(false)},
					},
				},
				{
					ID:   6,
					Name: "Laptops",
					Children: []PricingPlan{
						{ID: 7, Name: "MacBook Air", Price: price(180), IsRecommended: flag(true)},
						{ID: 8, Name: "ThinkPad X1", Price: price(150)},
					},
				},
				{
					// Priced and grouping at the same time.
					ID:            9,
					Name:          "Accessories",
					Price:         price(25),
					IsRecommended: flag(true),
					Children: []PricingPlan{
						{ID: 10, Name: "Noise Cancelling Headphones", Price: price(35), IsRecommended: flag(true)},
						{ID: 11, Name: "Smartwatch", Price: price(60)},
					},
				},
			},
		},
		{
			ID:   12,
			Name: "Home Appliances",
			Children: []PricingPlan{
				{ID: 13, Name: "Coffee Machine", Price: price(45), IsRecommended: flag(true)},
				{ID: 14, Name: "Vacuum Cleaner", Price: price(20)},
			},
		},
	}
}

func price(v float64) *float64 { return &v }

func flag(v bool) *bool { return &v }
