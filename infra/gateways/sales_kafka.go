package gateways

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/giovaniif/coffee-machine/infra"
	protocols "github.com/giovaniif/coffee-machine/protocols"
)

const SaleEventType = "drink.dispensed"

type saleEvent struct {
	Type string `json:"type"`
	protocols.Sale
}

type SalesPublisherKafka struct {
	writer *kafka.Writer
}

func NewSalesPublisherKafka(brokers []string, topic string) *SalesPublisherKafka {
	return &SalesPublisherKafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *SalesPublisherKafka) Publish(ctx context.Context, sale protocols.Sale) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	payload, err := json.Marshal(saleEvent{Type: SaleEventType, Sale: sale})
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sale.OrderId),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(SaleEventType)},
		},
	})
	return infra.Classify("kafka publish", err)
}

func (p *SalesPublisherKafka) Close() error {
	return p.writer.Close()
}
