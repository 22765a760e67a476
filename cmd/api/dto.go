package api

import (
	"github.com/giovaniif/coffee-machine/domain/money"
	"github.com/giovaniif/coffee-machine/domain/order"
)

type SelectRequest struct {
	Drink string `json:"drink" binding:"required"`
}

type SelectResponse struct {
	OrderId      string       `json:"orderId"`
	Drink        string       `json:"drink"`
	Status       order.Status `json:"status"`
	AmountNeeded money.Amount `json:"amountNeeded"`
	Replaced     string       `json:"replaced,omitempty"`
}

type PaymentResponse struct {
	OrderId  string        `json:"orderId"`
	Drink    string        `json:"drink"`
	Message  string        `json:"message"`
	Price    money.Amount  `json:"price"`
	Tendered money.Amount  `json:"tendered"`
	Change   *money.Amount `json:"change,omitempty"`
	Replayed bool          `json:"replayed,omitempty"`
}

type CoinsTotalResponse struct {
	Total money.Amount `json:"total"`
}

type MenuItemResponse struct {
	Name        string       `json:"name"`
	Price       money.Amount `json:"price"`
	Emoji       string       `json:"emoji,omitempty"`
	Description string       `json:"description,omitempty"`
	Ingredients string       `json:"ingredients"`
	Available   bool         `json:"available"`
	Reason      string       `json:"reason"`
}

type LevelResponse struct {
	Ingredient string `json:"ingredient"`
	Unit       string `json:"unit"`
	Amount     int    `json:"amount"`
	Low        bool   `json:"low"`
}

type MachineResponse struct {
	Levels        []LevelResponse `json:"levels"`
	Profit        money.Amount    `json:"profit"`
	Phase         order.Status    `json:"phase"`
	Current       *order.Order    `json:"current,omitempty"`
	StatusMessage string          `json:"statusMessage,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type RejectedPaymentResponse struct {
	Error    string       `json:"error"`
	Tendered money.Amount `json:"tendered"`
	Price    money.Amount `json:"price"`
	Refunded money.Amount `json:"refunded"`
}
