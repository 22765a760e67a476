package protocols

import "github.com/giovaniif/coffee-machine/domain/money"

type MachineMetrics interface {
	DrinkDispensed(drink string, price money.Amount)
	PaymentRejected(drink string)
	StockShortage(ingredient string)
	Levels(levels map[string]int, profit money.Amount)
}
