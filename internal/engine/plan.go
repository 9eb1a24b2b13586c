package engine

import (
	"container/heap"
	"context"
)

// Plan is work scheduled for a simulation time.
type Plan func(ctx context.Context) error

type plan struct {
	time float64
	seq  int64
	name string
	fn   Plan
}

// planHeap orders plans by time, then by seq.
type planHeap []plan

func (h planHeap) Len() int { return len(h) }

func (h planHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h planHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *planHeap) Push(x any) { *h = append(*h, x.(plan)) }

func (h *planHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	old[n-1] = plan{}
	*h = old[:n-1]
	return p
}

func (h *planHeap) push(p plan) { heap.Push(h, p) }

func (h *planHeap) pop() plan { return heap.Pop(h).(plan) }

// peek returns the earliest plan. The heap must not be empty.
func (h planHeap) peek() plan { return h[0] }
