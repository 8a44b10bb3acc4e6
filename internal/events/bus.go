// Package events é o canal in-process de notificação "vendas mudaram".
package events

import (
	"sync"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	ReasonLeadConverted = "lead_converted"
	ReasonSaleCreated   = "sale_created"
	ReasonSaleUpdated   = "sale_updated"
	ReasonSaleDeleted   = "sale_deleted"
)

type SalesChanged struct {
	Sale   *entity.Sale
	Reason string
}

type SalesChangedHandler func(SalesChanged)

// Bus entrega eventos de forma síncrona, na ordem de inscrição.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]SalesChangedHandler
	order    []int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]SalesChangedHandler)}
}

// OnSalesChanged inscreve um handler e devolve a função que cancela a inscrição.
func (b *Bus) OnSalesChanged(h SalesChangedHandler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// EmitSalesChanged chama todos os handlers. Handlers podem se inscrever ou
// cancelar durante a entrega sem deadlock.
func (b *Bus) EmitSalesChanged(evt SalesChanged) {
	b.mu.RLock()
	hs := make([]SalesChangedHandler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(evt)
	}
}
