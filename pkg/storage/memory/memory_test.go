package memory_test

import (
	"context"
	"linkfixer/pkg/domain"
	"linkfixer/pkg/storage/memory"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_PostedComments(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	c, err := m.PostedComment(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, c)

	stored, err := m.StorePostedComment(ctx, domain.PostedComment{SubmissionID: "abc", Slug: "first"})
	require.NoError(t, err)
	require.True(t, stored)

	stored, err = m.StorePostedComment(ctx, domain.PostedComment{SubmissionID: "abc", Slug: "second"})
	require.NoError(t, err)
	require.False(t, stored)

	c, err = m.PostedComment(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, "first", c.Slug)
	require.False(t, c.PostedAt.IsZero())

	require.NoError(t, m.Close())
}

func TestMemory_ConcurrentStoreRecordsOnce(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, _ := m.StorePostedComment(ctx, domain.PostedComment{SubmissionID: "race"})
			if stored {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, winners)
}
