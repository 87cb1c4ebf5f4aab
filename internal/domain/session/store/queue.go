// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import "github.com/ManuGH/scenecue/internal/domain/session/model"

// compactThreshold bounds the dead prefix kept in front of the live window.
const compactThreshold = 64

// Queue is an unbounded FIFO of commands. It is not safe for concurrent use;
// Session serialises access to it.
type Queue struct {
	items []model.Command
	head  int
}

// Enqueue appends c to the tail.
func (q *Queue) Enqueue(c model.Command) {
	q.items = append(q.items, c)
}

// Dequeue removes and returns the head. ok is false when the queue is empty,
// which is distinct from a command with an empty payload.
func (q *Queue) Dequeue() (c model.Command, ok bool) {
	if q.head >= len(q.items) {
		return model.Command{}, false
	}
	c = q.items[q.head]
	q.items[q.head] = model.Command{}
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return c, true
}

// Clear drops every pending command and returns how many were dropped.
func (q *Queue) Clear() int {
	n := q.Len()
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return n
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}
