package models

// CategoryAll is the synthetic filter value that matches every category.
const CategoryAll = "All"

type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	Color         string `json:"color"`
	ArticlesCount int    `json:"articlesCount"`
}

// Categories is the fixed catalogue.
var Categories = []Category{
	{ID: "1", Name: "Travel", Slug: "travel", Description: "Adventures and journeys", Color: "bg-emerald-100 text-emerald-800", ArticlesCount: 24},
	{ID: "2", Name: "Technology", Slug: "technology", Description: "Innovation and digital life", Color: "bg-blue-100 text-blue-800", ArticlesCount: 18},
	{ID: "3", Name: "Food", Slug: "food", Description: "Culinary experiences", Color: "bg-orange-100 text-orange-800", ArticlesCount: 31},
	{ID: "4", Name: "Lifestyle", Slug: "lifestyle", Description: "Living well and mindfully", Color: "bg-purple-100 text-purple-800", ArticlesCount: 27},
	{ID: "5", Name: "Art", Slug: "art", Description: "Creative expressions", Color: "bg-pink-100 text-pink-800", ArticlesCount: 15},
}

// IsCategory reports whether name is one of the catalogue names (case-sensitive).
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CategoryNames lists catalogue names in catalogue order.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = c.Name
	}
	return names
}
