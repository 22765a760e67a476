package menu

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/giovaniif/coffee-machine/domain/money"
)

type fileMenu struct {
	Ingredients []struct {
		Name    string `yaml:"name"`
		Unit    string `yaml:"unit"`
		Default int    `yaml:"default"`
	} `yaml:"ingredients"`
	Items []struct {
		Name        string  `yaml:"name"`
		Price       float64 `yaml:"price"`
		Emoji       string  `yaml:"emoji"`
		Description string  `yaml:"description"`
		Recipe      []struct {
			Ingredient string `yaml:"ingredient"`
			Quantity   int    `yaml:"quantity"`
		} `yaml:"recipe"`
	} `yaml:"items"`
}

// Parse builds a menu from its YAML definition. Prices are dollars and are rounded to cents.
func Parse(data []byte) (*Menu, error) {
	var f fileMenu
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMenu, err)
	}

	ingredients := make([]Ingredient, 0, len(f.Ingredients))
	for _, ingredient := range f.Ingredients {
		ingredients = append(ingredients, Ingredient{
			Name:         ingredient.Name,
			Unit:         ingredient.Unit,
			DefaultLevel: ingredient.Default,
		})
	}

	items := make([]Item, 0, len(f.Items))
	for _, item := range f.Items {
		recipe := make(Recipe, 0, len(item.Recipe))
		for _, requirement := range item.Recipe {
			recipe = append(recipe, Requirement{Ingredient: requirement.Ingredient, Quantity: requirement.Quantity})
		}
		items = append(items, Item{
			Name:        item.Name,
			Recipe:      recipe,
			Price:       money.FromFloat(item.Price),
			Emoji:       item.Emoji,
			Description: item.Description,
		})
	}

	return New(ingredients, items)
}

func Load(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	return Parse(data)
}
