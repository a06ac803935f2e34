package recipe

import "fmt"

// Unit is a kitchen measurement unit for uncountable ingredients.
type Unit string

const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Teaspoon   Unit = "tsp"
	Tablespoon Unit = "tbsp"
	Cup        Unit = "cup"
)

// UnitType groups units that convert between each other.
type UnitType string

const (
	Weight UnitType = "weight"
	Volume UnitType = "volume"
)

// unitSpec fixes the type and base factor of a unit. Weight units convert
// through grams, volume units through milliliters.
type unitSpec struct {
	unitType UnitType
	factor   float64
}

var unitSpecs = map[Unit]unitSpec{
	Gram:       {Weight, 1},
	Kilogram:   {Weight, 1000},
	Milliliter: {Volume, 1},
	Liter:      {Volume, 1000},
	Teaspoon:   {Volume, 5},
	Tablespoon: {Volume, 15},
	Cup:        {Volume, 240},
}

// Valid reports whether the unit is one of the supported measurement units.
func (u Unit) Valid() bool {
	_, ok := unitSpecs[u]
	return ok
}

// Type returns the unit's conversion group.
func (u Unit) Type() UnitType {
	return unitSpecs[u].unitType
}

// ToBase converts an amount in this unit to the base unit of its type
// (grams for weight, milliliters for volume).
func (u Unit) ToBase(amount float64) float64 {
	return amount * unitSpecs[u].factor
}

// ConvertTo converts an amount from this unit to the target unit. Units of
// different types do not convert.
func (u Unit) ConvertTo(target Unit, amount float64) (float64, error) {
	if !u.Valid() {
		return 0, fmt.Errorf("unknown unit %q", string(u))
	}
	if !target.Valid() {
		return 0, fmt.Errorf("unknown unit %q", string(target))
	}
	if u.Type() != target.Type() {
		return 0, fmt.Errorf("cannot convert between different unit types: %s and %s", u.Type(), target.Type())
	}
	return u.ToBase(amount) / unitSpecs[target].factor, nil
}

// Units returns all supported units in a stable order.
func Units() []Unit {
	return []Unit{Gram, Kilogram, Milliliter, Liter, Teaspoon, Tablespoon, Cup}
}
