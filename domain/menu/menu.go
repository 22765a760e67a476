package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giovaniif/coffee-machine/domain/money"
)

var (
	ErrUnknownDrink = errors.New("unknown drink")
	ErrInvalidMenu  = errors.New("invalid menu")
)

type Ingredient struct {
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	DefaultLevel int    `json:"defaultLevel"`
}

type Requirement struct {
	Ingredient string `json:"ingredient"`
	Quantity   int    `json:"quantity"`
}

// Recipe keeps the menu-defined ingredient order, which decides which shortage is reported first.
type Recipe []Requirement

type Item struct {
	Name        string       `json:"name"`
	Recipe      Recipe       `json:"recipe"`
	Price       money.Amount `json:"price"`
	Emoji       string       `json:"emoji"`
	Description string       `json:"description"`
}

// Menu is immutable once built; accessors hand out copies.
type Menu struct {
	ingredients []Ingredient
	items       []Item
}

func New(ingredients []Ingredient, items []Item) (*Menu, error) {
	known := make(map[string]bool, len(ingredients))
	for _, ingredient := range ingredients {
		if ingredient.Name == "" {
			return nil, fmt.Errorf("%w: ingredient without name", ErrInvalidMenu)
		}
		if known[ingredient.Name] {
			return nil, fmt.Errorf("%w: duplicate ingredient %q", ErrInvalidMenu, ingredient.Name)
		}
		if ingredient.DefaultLevel < 0 {
			return nil, fmt.Errorf("%w: negative default level for %q", ErrInvalidMenu, ingredient.Name)
		}
		known[ingredient.Name] = true
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no drinks", ErrInvalidMenu)
	}
	names := make(map[string]bool, len(items))
	for _, item := range items {
		key := strings.ToLower(item.Name)
		if item.Name == "" || names[key] {
			return nil, fmt.Errorf("%w: missing or duplicate drink name %q", ErrInvalidMenu, item.Name)
		}
		names[key] = true
		if item.Price <= 0 {
			return nil, fmt.Errorf("%w: %s must have a positive price", ErrInvalidMenu, item.Name)
		}
		if len(item.Recipe) == 0 {
			return nil, fmt.Errorf("%w: %s has an empty recipe", ErrInvalidMenu, item.Name)
		}
		seen := make(map[string]bool, len(item.Recipe))
		for _, requirement := range item.Recipe {
			if !known[requirement.Ingredient] {
				return nil, fmt.Errorf("%w: %s uses unknown ingredient %q", ErrInvalidMenu, item.Name, requirement.Ingredient)
			}
			if seen[requirement.Ingredient] {
				return nil, fmt.Errorf("%w: %s lists %q twice", ErrInvalidMenu, item.Name, requirement.Ingredient)
			}
			if requirement.Quantity <= 0 {
				return nil, fmt.Errorf("%w: %s needs a positive amount of %q", ErrInvalidMenu, item.Name, requirement.Ingredient)
			}
			seen[requirement.Ingredient] = true
		}
	}

	m := &Menu{
		ingredients: append([]Ingredient(nil), ingredients...),
		items:       make([]Item, len(items)),
	}
	for i, item := range items {
		item.Recipe = append(Recipe(nil), item.Recipe...)
		m.items[i] = item
	}
	return m, nil
}

func (m *Menu) Lookup(name string) (Item, error) {
	for _, item := range m.items {
		if strings.EqualFold(item.Name, name) {
			return item.clone(), nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrUnknownDrink, name)
}

func (m *Menu) Items() []Item {
	items := make([]Item, len(m.items))
	for i, item := range m.items {
		items[i] = item.clone()
	}
	return items
}

func (m *Menu) Ingredients() []Ingredient {
	return append([]Ingredient(nil), m.ingredients...)
}

func (m *Menu) Ingredient(name string) (Ingredient, bool) {
	for _, ingredient := range m.ingredients {
		if ingredient.Name == name {
			return ingredient, true
		}
	}
	return Ingredient{}, false
}

// DefaultLevels is the stock a refill restores.
func (m *Menu) DefaultLevels() map[string]int {
	levels := make(map[string]int, len(m.ingredients))
	for _, ingredient := range m.ingredients {
		levels[ingredient.Name] = ingredient.DefaultLevel
	}
	return levels
}

// IngredientsText renders a recipe like "50ml water, 18g coffee".
func (m *Menu) IngredientsText(item Item) string {
	parts := make([]string, 0, len(item.Recipe))
	for _, requirement := range item.Recipe {
		unit := ""
		if ingredient, ok := m.Ingredient(requirement.Ingredient); ok {
			unit = ingredient.Unit
		}
		parts = append(parts, fmt.Sprintf("%d%s %s", requirement.Quantity, unit, requirement.Ingredient))
	}
	return strings.Join(parts, ", ")
}

func (i Item) clone() Item {
	i.Recipe = append(Recipe(nil), i.Recipe...)
	return i
}
