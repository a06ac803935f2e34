package ingredient

// Countability classifies how an ingredient is measured in recipes: by count
// (eggs, lemons) or by amount (flour, milk).
type Countability string

const (
	Countable   Countability = "countable"
	Uncountable Countability = "uncountable"
)

// Valid reports whether the value is one of the known countability classes.
func (c Countability) Valid() bool {
	return c == Countable || c == Uncountable
}

// Ingredient represents a pantry ingredient shared by all recipes.
type Ingredient struct {
	ID                 int64        `json:"ingredient_id"`
	Name               string       `json:"ingredient_name"`
	EstimatedShelfLife *int         `json:"estimated_shelf_life"`
	Countability       Countability `json:"countability"`
	TagIDs             []int64      `json:"ingredienttag_ids"`
}

// Tag labels ingredients for grouping and search.
type Tag struct {
	ID   int64  `json:"ingredient_tag_id"`
	Name string `json:"ingredient_tag_name"`
}
