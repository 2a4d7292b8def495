package models

// Category is one of the fixed expense/budget classification labels.
type Category string

const (
	CategoryGroceries      Category = "groceries"
	CategoryUtilities      Category = "utilities"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainment"
	CategoryHealthcare     Category = "healthcare"
	CategoryDining         Category = "dining"
	CategoryShopping       Category = "shopping"
	CategoryEducation      Category = "education"
	CategoryTravel         Category = "travel"
	CategoryHousing        Category = "housing"
	CategoryInsurance      Category = "insurance"
	CategorySavings        Category = "savings"
	CategoryOther          Category = "other"
)

// Categories returns the full label set in display order.
func Categories() []Category {
	return []Category{
		CategoryGroceries,
		CategoryUtilities,
		CategoryTransportation,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryDining,
		CategoryShopping,
		CategoryEducation,
		CategoryTravel,
		CategoryHousing,
		CategoryInsurance,
		CategorySavings,
		CategoryOther,
	}
}

// ValidCategory reports whether s is one of the known labels.
func ValidCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}
