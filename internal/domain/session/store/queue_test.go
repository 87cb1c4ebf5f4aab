// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"fmt"
	"testing"

	"github.com/ManuGH/scenecue/internal/domain/session/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DequeueEmpty(t *testing.T) {
	var q Queue
	_, ok := q.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_FIFOAcrossCompaction(t *testing.T) {
	var q Queue
	const total = 1000

	// Interleave pushes and pops so the head index crosses the compaction
	// threshold several times while the queue is non-empty.
	var got []string
	for i := 0; i < total; i++ {
		q.Enqueue(model.NewApplyProfile(fmt.Sprintf("p%04d", i)))
		if i%3 == 2 {
			c, ok := q.Dequeue()
			require.True(t, ok)
			got = append(got, c.Label())
		}
	}
	for {
		c, ok := q.Dequeue()
		if !ok {
			break
		}
		got = append(got, c.Label())
	}

	require.Len(t, got, total)
	for i, label := range got {
		assert.Equal(t, fmt.Sprintf("p%04d", i), label)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Clear(t *testing.T) {
	var q Queue
	q.Enqueue(model.NewApplyProfile("a"))
	q.Enqueue(model.NewApplyProfile("b"))
	_, _ = q.Dequeue()
	q.Enqueue(model.NewApplyProfile("c"))

	assert.Equal(t, 2, q.Clear())
	assert.Equal(t, 0, q.Len())
	_, ok := q.Dequeue()
	assert.False(t, ok)

	q.Enqueue(model.NewApplyProfile("d"))
	c, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "d", c.Label())
}
