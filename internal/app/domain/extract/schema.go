package extract

// Recipe is the structured form produced from raw recipe text. It mirrors the
// recipe service's ingredient split: countable lines carry free-form units
// like "quả" or "bó", uncountable lines carry measured units like "g" or
// "muỗng canh"; both stay strings here because extraction output is matched
// to catalog ingredients in a later step.
type Recipe struct {
	RecipeName             string           `json:"recipe_name"`
	DefaultServings        *int             `json:"default_servings,omitempty"`
	Instructions           string           `json:"instructions"`
	CountableIngredients   []IngredientLine `json:"countable_ingredients"`
	UncountableIngredients []IngredientLine `json:"uncountable_ingredients"`
}

// IngredientLine is one extracted ingredient with its quantity as written.
type IngredientLine struct {
	IngredientName string   `json:"ingredient_name"`
	Quantity       *float64 `json:"quantity,omitempty"`
	Unit           string   `json:"unit,omitempty"`
}
