package models

// Dietary tags a recipe may carry.
var DietaryTags = []string{
	"vegetarian", "vegan", "gluten-free", "dairy-free", "keto", "paleo",
	"low-carb", "mediterranean", "high-protein", "low-sodium", "nut-free",
	"egg-free", "soy-free", "pescatarian",
}

// Dietary preferences a user may declare.
var DietaryPreferences = []string{
	"vegetarian", "vegan", "gluten-free", "dairy-free", "keto", "paleo",
	"low-carb", "mediterranean", "high-protein", "low-sodium",
}

// Allergies a user may declare.
var Allergies = []string{
	"nuts", "dairy", "eggs", "soy", "shellfish", "fish", "wheat", "sesame",
}

// Units accepted on ingredient amounts.
var Units = []string{
	"cup", "tbsp", "tsp", "oz", "lb", "g", "kg", "ml", "l",
	"piece", "clove", "slice", "pinch", "dash",
}

// healthyTags each add to the health score.
var healthyTags = map[string]struct{}{
	"vegetarian":   {},
	"vegan":        {},
	"gluten-free":  {},
	"high-protein": {},
	"low-sodium":   {},
}

func IsDietaryTag(s string) bool        { return contains(DietaryTags, s) }
func IsDietaryPreference(s string) bool { return contains(DietaryPreferences, s) }
func IsAllergy(s string) bool           { return contains(Allergies, s) }
func IsUnit(s string) bool              { return contains(Units, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
