package menu

import "github.com/giovaniif/coffee-machine/domain/money"

const (
	Water  = "water"
	Milk   = "milk"
	Coffee = "coffee"
)

func DefaultIngredients() []Ingredient {
	return []Ingredient{
		{Name: Water, Unit: "ml", DefaultLevel: 300000},
		{Name: Milk, Unit: "ml", DefaultLevel: 200000},
		{Name: Coffee, Unit: "g", DefaultLevel: 100000},
	}
}

func DefaultItems() []Item {
	return []Item{
		{
			Name:        "Espresso",
			Recipe:      Recipe{{Ingredient: Water, Quantity: 50}, {Ingredient: Coffee, Quantity: 18}},
			Price:       money.Cents(150),
			Emoji:       "☕",
			Description: "A strong, concentrated coffee shot",
		},
		{
			Name:        "Latte",
			Recipe:      Recipe{{Ingredient: Water, Quantity: 200}, {Ingredient: Milk, Quantity: 150}, {Ingredient: Coffee, Quantity: 24}},
			Price:       money.Cents(250),
			Emoji:       "🥛",
			Description: "Smooth coffee with steamed milk",
		},
		{
			Name:        "Cappuccino",
			Recipe:      Recipe{{Ingredient: Water, Quantity: 250}, {Ingredient: Milk, Quantity: 100}, {Ingredient: Coffee, Quantity: 24}},
			Price:       money.Cents(300),
			Emoji:       "☕",
			Description: "Rich coffee with frothed milk",
		},
	}
}

// Default returns the built-in three-drink menu.
func Default() *Menu {
	m, err := New(DefaultIngredients(), DefaultItems())
	if err != nil {
		panic(err)
	}
	return m
}
