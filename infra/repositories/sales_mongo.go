package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/giovaniif/coffee-machine/infra"
	protocols "github.com/giovaniif/coffee-machine/protocols"
)

const (
	salesDatabase   = "coffee_machine"
	salesCollection = "sales"
)

type SalesJournalMongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewSalesJournalMongo(ctx context.Context, uri string) (*SalesJournalMongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, infra.Classify("ping mongo", err)
	}
	return &SalesJournalMongo{
		client:     client,
		collection: client.Database(salesDatabase).Collection(salesCollection),
	}, nil
}

func (r *SalesJournalMongo) Record(ctx context.Context, sale protocols.Sale) error {
	_, err := r.collection.InsertOne(ctx, sale)
	return infra.Classify("insert sale", err)
}

func (r *SalesJournalMongo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
