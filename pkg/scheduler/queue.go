package scheduler

import "github.com/dskvich/trigger-telegram-bot/pkg/domain"

type item struct {
	delivery domain.ScheduledDelivery
	seq      uint64
	index    int
}

// deliveryQueue is a container/heap min-heap on FireAt, ties broken by insertion order.
type deliveryQueue []*item

func (q deliveryQueue) Len() int { return len(q) }

func (q deliveryQueue) Less(i, j int) bool {
	if q[i].delivery.FireAt.Equal(q[j].delivery.FireAt) {
		return q[i].seq < q[j].seq
	}
	return q[i].delivery.FireAt.Before(q[j].delivery.FireAt)
}

func (q deliveryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *deliveryQueue) Push(x any) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *deliveryQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}
