package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giovaniif/coffee-machine/domain/menu"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrInvalidLevels     = errors.New("invalid inventory levels")
)

// ShortageError names the first ingredient a recipe cannot be made with.
type ShortageError struct {
	Ingredient string
	Required   int
	Available  int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("Sorry, we don't have enough %s", strings.ToLower(e.Ingredient))
}

func (e *ShortageError) Unwrap() error {
	return ErrInsufficientStock
}

// Inventory maps a fixed set of ingredients to their remaining quantity.
// Values are never shared: every change returns a new Inventory.
type Inventory struct {
	ingredients []string
	levels      map[string]int
}

// New builds an inventory whose key set is exactly ingredients.
func New(ingredients []string, levels map[string]int) (Inventory, error) {
	if len(levels) != len(ingredients) {
		return Inventory{}, fmt.Errorf("%w: expected %d ingredients, got %d", ErrInvalidLevels, len(ingredients), len(levels))
	}
	inv := Inventory{
		ingredients: append([]string(nil), ingredients...),
		levels:      make(map[string]int, len(ingredients)),
	}
	for _, name := range ingredients {
		level, ok := levels[name]
		if !ok {
			return Inventory{}, fmt.Errorf("%w: missing %s", ErrInvalidLevels, name)
		}
		if level < 0 {
			return Inventory{}, fmt.Errorf("%w: %s is negative", ErrInvalidLevels, name)
		}
		inv.levels[name] = level
	}
	return inv, nil
}

// Defaults is the fully stocked inventory for a menu.
func Defaults(m *menu.Menu) Inventory {
	ingredients := m.Ingredients()
	inv := Inventory{
		ingredients: make([]string, 0, len(ingredients)),
		levels:      make(map[string]int, len(ingredients)),
	}
	for _, ingredient := range ingredients {
		inv.ingredients = append(inv.ingredients, ingredient.Name)
		inv.levels[ingredient.Name] = ingredient.DefaultLevel
	}
	return inv
}

func (i Inventory) Ingredients() []string {
	return append([]string(nil), i.ingredients...)
}

func (i Inventory) Level(ingredient string) int {
	return i.levels[ingredient]
}

func (i Inventory) Levels() map[string]int {
	levels := make(map[string]int, len(i.levels))
	for k, v := range i.levels {
		levels[k] = v
	}
	return levels
}

// Check returns a *ShortageError for the first requirement, in recipe order, that cannot be met.
func (i Inventory) Check(recipe menu.Recipe) error {
	for _, requirement := range recipe {
		available, ok := i.levels[requirement.Ingredient]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownIngredient, requirement.Ingredient)
		}
		if requirement.Quantity > available {
			return &ShortageError{
				Ingredient: requirement.Ingredient,
				Required:   requirement.Quantity,
				Available:  available,
			}
		}
	}
	return nil
}

func (i Inventory) CheckAvailability(recipe menu.Recipe) (bool, string) {
	if err := i.Check(recipe); err != nil {
		return false, err.Error()
	}
	return true, "Resources available"
}

// Dispense takes the item's recipe out of the inventory and returns the new inventory with
// the confirmation message. Availability must have been checked by the caller.
func Dispense(item menu.Item, inv Inventory) (Inventory, string) {
	next := Inventory{
		ingredients: inv.ingredients,
		levels:      inv.Levels(),
	}
	for _, requirement := range item.Recipe {
		next.levels[requirement.Ingredient] -= requirement.Quantity
	}
	return next, Confirmation(item)
}

func Confirmation(item menu.Item) string {
	if item.Emoji == "" {
		return fmt.Sprintf("Here is your %s! Enjoy!", item.Name)
	}
	return fmt.Sprintf("Here is your %s %s! Enjoy!", item.Name, item.Emoji)
}
