package kitchen

import (
	"testing"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/clock"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func order(number string, status domain.OrderStatus, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:          primitive.NewObjectID(),
		OrderNumber: number,
		Status:      status,
		CreatedAt:   createdAt,
		Items:       []domain.OrderItem{{ProductName: "Pizza", Quantity: 1, UnitPrice: 10, TotalPrice: 10}},
	}
}

func numbers(orders []domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.OrderNumber)
	}
	return out
}

func TestResetBucketsByStatusOrderedByCreation(t *testing.T) {
	b := NewBoard(clock.NewFake(t0))
	b.Reset([]domain.Order{
		order("20260314-0003", domain.StatusPending, t0.Add(3*time.Minute)),
		order("20260314-0001", domain.StatusPending, t0.Add(1*time.Minute)),
		order("20260314-0002", domain.StatusReady, t0.Add(2*time.Minute)),
		order("20260314-0004", domain.StatusDelivered, t0.Add(4*time.Minute)),
	})

	snap := b.Snapshot()
	assert.Equal(t, []string{"20260314-0001", "20260314-0003"}, numbers(snap.Pending))
	assert.Empty(t, snap.Preparing)
	assert.Equal(t, []string{"20260314-0002"}, numbers(snap.Ready))
	assert.Equal(t, 3, snap.Len())
}

func TestApplyIsMonotonic(t *testing.T) {
	b := NewBoard(clock.NewFake(t0))
	o := order("20260314-0001", domain.StatusPending, t0)
	require.True(t, b.Apply(o))

	o.Status = domain.StatusReady
	require.True(t, b.Apply(o))

	o.Status = domain.StatusPreparing
	assert.False(t, b.Apply(o), "an older status never overwrites a newer one")
	assert.Len(t, b.Snapshot().Ready, 1)

	o.Status = domain.StatusDelivered
	require.True(t, b.Apply(o))
	assert.Equal(t, 0, b.Snapshot().Len())

	o.Status = domain.StatusReady
	assert.False(t, b.Apply(o), "delivered is terminal")
	assert.Equal(t, 0, b.Snapshot().Len())
}

func TestSnapshotIsIsolated(t *testing.T) {
	b := NewBoard(clock.NewFake(t0))
	o := order("20260314-0001", domain.StatusPending, t0)
	b.Apply(o)

	o.Items[0].ProductName = "changed"
	snap := b.Snapshot()
	snap.Pending[0].Items[0].Quantity = 99

	again := b.Snapshot()
	assert.Equal(t, "Pizza", again.Pending[0].Items[0].ProductName)
	assert.Equal(t, 1, again.Pending[0].Items[0].Quantity)
}

func TestSubscribeReceivesInitialAndLatest(t *testing.T) {
	clk := clock.NewFake(t0)
	b := NewBoard(clk)
	b.Apply(order("20260314-0001", domain.StatusPending, t0))

	sub := b.Subscribe()
	defer sub.Close()

	first := <-sub.Updates()
	assert.Equal(t, 1, first.Len())

	// nobody reads between these, only the last one is kept
	clk.Advance(time.Second)
	b.Apply(order("20260314-0002", domain.StatusPending, t0.Add(time.Minute)))
	clk.Advance(time.Second)
	b.Apply(order("20260314-0003", domain.StatusPending, t0.Add(2*time.Minute)))

	latest := <-sub.Updates()
	assert.Equal(t, 3, latest.Len())
	assert.Equal(t, t0.Add(2*time.Second), latest.UpdatedAt)

	select {
	case <-sub.Updates():
		t.Fatal("expected no further snapshot")
	default:
	}
}

func TestMultipleSubscribersConverge(t *testing.T) {
	b := NewBoard(clock.NewFake(t0))
	a := b.Subscribe()
	c := b.Subscribe()
	defer a.Close()
	defer c.Close()
	<-a.Updates()
	<-c.Updates()

	o := order("20260314-0001", domain.StatusPending, t0)
	b.Apply(o)
	o.Status = domain.StatusPreparing
	b.Apply(o)

	sa := <-a.Updates()
	sc := <-c.Updates()
	assert.Equal(t, sa, sc)
	assert.Equal(t, []string{"20260314-0001"}, numbers(sa.Preparing))
}

func TestCloseUnsubscribes(t *testing.T) {
	b := NewBoard(clock.NewFake(t0))
	sub := b.Subscribe()
	require.Equal(t, 1, b.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, b.Subscribers())

	<-sub.Updates()
	_, open := <-sub.Updates()
	assert.False(t, open)

	b.Apply(order("20260314-0001", domain.StatusPending, t0))
}

func TestCloseSubscribersEndsStreams(t *testing.T) {
	b := NewBoard(clock.NewFake(t0))
	a, c := b.Subscribe(), b.Subscribe()

	b.CloseSubscribers()
	assert.Equal(t, 0, b.Subscribers())

	for _, sub := range []*Subscription{a, c} {
		<-sub.Updates()
		_, open := <-sub.Updates()
		assert.False(t, open)
		sub.Close()
	}

	assert.True(t, b.Apply(order("20260314-0001", domain.StatusPending, t0)))
	assert.Equal(t, 1, b.Snapshot().Len())
}
