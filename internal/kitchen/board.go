// Package kitchen keeps the live kitchen board: the set of pending, preparing
// and ready orders, fanned out to every watching terminal.
package kitchen

import (
	"sort"
	"sync"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/clock"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
)

type Snapshot struct {
	Pending   []domain.Order `json:"pending"`
	Preparing []domain.Order `json:"preparing"`
	Ready     []domain.Order `json:"ready"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Len is the number of orders on the board.
func (s Snapshot) Len() int {
	return len(s.Pending) + len(s.Preparing) + len(s.Ready)
}

type Board struct {
	mu        sync.Mutex
	clock     clock.Clock
	orders    map[string]domain.Order
	delivered map[string]time.Time
	subs      map[uint64]chan Snapshot
	nextID    uint64
	updatedAt time.Time
}

type Subscription struct {
	board *Board
	id    uint64
	ch    chan Snapshot
	once  sync.Once
}

func NewBoard(clk clock.Clock) *Board {
	return &Board{
		clock:     clk,
		orders:    make(map[string]domain.Order),
		delivered: make(map[string]time.Time),
		subs:      make(map[uint64]chan Snapshot),
	}
}

// Reset replaces the board with an authoritative list of active orders.
func (b *Board) Reset(orders []domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orders = make(map[string]domain.Order, len(orders))
	for _, o := range orders {
		if !o.Status.IsActive() {
			continue
		}
		b.orders[o.ID.Hex()] = cloneOrder(o)
	}

	// keep tombstones only for a day
	cutoff := b.clock.Now().Add(-24 * time.Hour)
	for id, at := range b.delivered {
		if at.Before(cutoff) {
			delete(b.delivered, id)
		}
	}
	b.publishLocked()
}

// Apply merges one order change and reports whether the board moved. An
// update ranking behind the known status, or touching a delivered order, is
// stale and ignored.
func (b *Board) Apply(o domain.Order) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := o.ID.Hex()
	if _, gone := b.delivered[id]; gone {
		return false
	}
	if o.Status.Rank() < 0 {
		return false
	}
	if cur, ok := b.orders[id]; ok && o.Status.Rank() <= cur.Status.Rank() {
		return false
	}

	if o.Status == domain.StatusDelivered {
		delete(b.orders, id)
		b.delivered[id] = b.clock.Now()
	} else {
		b.orders[id] = cloneOrder(o)
	}
	b.publishLocked()
	return true
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Subscribe delivers the current snapshot immediately and every later one.
// A slow reader only ever sees the latest snapshot.
func (b *Board) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Snapshot, 1)
	ch <- b.snapshotLocked()
	b.subs[id] = ch

	return &Subscription{board: b, id: id, ch: ch}
}

// Subscribers is the number of open subscriptions.
func (b *Board) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// CloseSubscribers ends every open subscription; their update channels are
// closed. The board itself stays usable.
func (b *Board) CloseSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *Board) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *Board) publishLocked() {
	b.updatedAt = b.clock.Now()
	snap := b.snapshotLocked()
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (b *Board) snapshotLocked() Snapshot {
	snap := Snapshot{
		Pending:   []domain.Order{},
		Preparing: []domain.Order{},
		Ready:     []domain.Order{},
		UpdatedAt: b.updatedAt,
	}
	for _, o := range b.orders {
		o := cloneOrder(o)
		switch o.Status {
		case domain.StatusPending:
			snap.Pending = append(snap.Pending, o)
		case domain.StatusPreparing:
			snap.Preparing = append(snap.Preparing, o)
		case domain.StatusReady:
			snap.Ready = append(snap.Ready, o)
		}
	}
	sortByCreation(snap.Pending)
	sortByCreation(snap.Preparing)
	sortByCreation(snap.Ready)
	return snap
}

func sortByCreation(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].OrderNumber < orders[j].OrderNumber
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

func cloneOrder(o domain.Order) domain.Order {
	out := o
	if o.Items != nil {
		out.Items = make([]domain.OrderItem, len(o.Items))
		for i, it := range o.Items {
			out.Items[i] = it.Clone()
		}
	}
	if o.Customer != nil {
		c := *o.Customer
		out.Customer = &c
	}
	return out
}

func (s *Subscription) Updates() <-chan Snapshot {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.board == nil {
		return
	}
	s.once.Do(func() {
		s.board.unsubscribe(s.id)
	})
}
