// Copyright (c) 2025 BVK Chaitanya

package ledger

import (
	"container/heap"
)

// Ledger is the priority collection of unsold purchases. The purchase
// bought at the lowest exchange rate is always at the front, because
// it is the first one to become profitable when the rate moves up.
//
// Purchases with an equal rate are returned in insertion order, so the
// pop order is deterministic even though purchase identity is the id
// and not the rate.
//
// A Ledger is exclusively owned by one seller and is not safe for
// concurrent use.
type Ledger struct {
	entries entryHeap
	seq     uint64
}

type entry struct {
	purchase *Purchase
	seq      uint64
}

// Add inserts a purchase into the ledger. The ledger performs no
// uniqueness check; callers must supply purchases with distinct ids.
func (v *Ledger) Add(p *Purchase) {
	v.seq++
	heap.Push(&v.entries, entry{purchase: p, seq: v.seq})
}

// PeekBest returns the purchase with the lowest buy rate without
// removing it. Returns nil when the ledger is empty.
func (v *Ledger) PeekBest() *Purchase {
	if len(v.entries) == 0 {
		return nil
	}
	return v.entries[0].purchase
}

// PopBest removes and returns the purchase PeekBest would have
// returned. Returns nil when the ledger is empty.
func (v *Ledger) PopBest() *Purchase {
	if len(v.entries) == 0 {
		return nil
	}
	e := heap.Pop(&v.entries).(entry)
	return e.purchase
}

// Len returns the number of unsold purchases in the ledger.
func (v *Ledger) Len() int {
	return len(v.entries)
}

// entryHeap implements heap.Interface as a min-heap on the purchase
// rate, with the insertion sequence number breaking ties.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if cmp := h[i].purchase.Rate.Cmp(h[j].purchase.Rate); cmp != 0 {
		return cmp < 0
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = entry{}
	*h = old[:n-1]
	return e
}
