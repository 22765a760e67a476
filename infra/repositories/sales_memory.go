package repositories

import (
	"context"
	"sync"

	protocols "github.com/giovaniif/coffee-machine/protocols"
)

type SalesJournalMemory struct {
	mutex sync.RWMutex
	sales []protocols.Sale
}

func NewSalesJournalMemory() *SalesJournalMemory {
	return &SalesJournalMemory{}
}

func (r *SalesJournalMemory) Record(ctx context.Context, sale protocols.Sale) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sales = append(r.sales, sale)
	return nil
}

func (r *SalesJournalMemory) Sales() []protocols.Sale {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]protocols.Sale(nil), r.sales...)
}
