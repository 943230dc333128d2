package domain

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
)

// ActiveStatuses are the statuses shown on the kitchen board.
var ActiveStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady}

var nextStatus = map[OrderStatus]OrderStatus{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusDelivered,
}

// Next returns the single legal successor. Delivered and unknown statuses
// have none.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

func (s OrderStatus) IsActive() bool {
	return s == StatusPending || s == StatusPreparing || s == StatusReady
}

// Rank orders statuses along the pipeline; unknown statuses rank -1.
func (s OrderStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusPreparing:
		return 1
	case StatusReady:
		return 2
	case StatusDelivered:
		return 3
	}
	return -1
}
