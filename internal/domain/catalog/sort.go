package catalog

// SortOption maps a URL sort slug to the platform sort key.
type SortOption struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	SortKey string `json:"sortKey"`
	Reverse bool   `json:"reverse"`
}

// DefaultSort is used when no or an unknown slug is requested.
var DefaultSort = SortOption{Title: "Relevance", Slug: "", SortKey: "RELEVANCE", Reverse: false}

// Sorting lists the supported sort options in display order.
var Sorting = []SortOption{
	DefaultSort,
	{Title: "Trending", Slug: "trending-desc", SortKey: "BEST_SELLING", Reverse: false},
	{Title: "Latest arrivals", Slug: "latest-desc", SortKey: "CREATED_AT", Reverse: true},
	{Title: "Price: Low to high", Slug: "price-asc", SortKey: "PRICE", Reverse: false},
	{Title: "Price: High to low", Slug: "price-desc", SortKey: "PRICE", Reverse: true},
}

// SortBySlug returns the option for slug, or DefaultSort.
func SortBySlug(slug string) SortOption {
	if slug == "" {
		return DefaultSort
	}
	for _, o := range Sorting {
		if o.Slug == slug {
			return o
		}
	}
	return DefaultSort
}

// collectionSortKey converts a product sort key to its collection counterpart.
// Collections name the creation-date key CREATED instead of CREATED_AT.
func collectionSortKey(key string) string {
	if key == "CREATED_AT" {
		return "CREATED"
	}
	return key
}
