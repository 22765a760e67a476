package gateways

import (
	"context"

	"go.uber.org/zap"

	protocols "github.com/giovaniif/coffee-machine/protocols"
)

// SalesPublisherLog stands in for a broker when none is configured.
type SalesPublisherLog struct {
	logger *zap.Logger
}

func NewSalesPublisherLog(logger *zap.Logger) *SalesPublisherLog {
	return &SalesPublisherLog{logger: logger}
}

func (p *SalesPublisherLog) Publish(ctx context.Context, sale protocols.Sale) error {
	p.logger.Info(SaleEventType,
		zap.String("order_id", sale.OrderId),
		zap.String("drink", sale.Drink),
		zap.String("price", sale.Price.Decimal()),
		zap.String("change", sale.Change.Decimal()),
	)
	return nil
}
