package recipe

// Recipe represents a stored recipe with its ingredient lines. Countable
// lines reference ingredients measured by count, uncountable lines carry a
// measurement unit.
type Recipe struct {
	ID              int64             `json:"recipe_id"`
	Name            string            `json:"recipe_name"`
	DefaultServings int               `json:"default_servings"`
	Instructions    string            `json:"instructions"`
	Countable       []CountableLine   `json:"countable_ingredients"`
	Uncountable     []UncountableLine `json:"uncountable_ingredients"`
}

// CountableLine is one countable ingredient entry of a recipe.
type CountableLine struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

// UncountableLine is one measured ingredient entry of a recipe.
type UncountableLine struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         Unit    `json:"unit"`
}

// View is a recipe with ingredient names resolved through the ingredient
// directory. Ingredients the directory does not know resolve to "Unknown".
type View struct {
	ID              int64                 `json:"recipe_id"`
	Name            string                `json:"recipe_name"`
	DefaultServings int                   `json:"default_servings"`
	Instructions    string                `json:"instructions"`
	Countable       []CountableLineView   `json:"countable_ingredients"`
	Uncountable     []UncountableLineView `json:"uncountable_ingredients"`
}

// CountableLineView is a countable line joined with its ingredient name.
type CountableLineView struct {
	IngredientID   int64   `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
}

// UncountableLineView is an uncountable line joined with its ingredient name.
type UncountableLineView struct {
	IngredientID   int64   `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
	Unit           Unit    `json:"unit"`
}
