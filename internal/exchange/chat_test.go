package exchange

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/reclaim/internal/model"
	"github.com/erazemk/reclaim/internal/store"
)

func TestAppend_Grid(t *testing.T) {
	c, database := newTestCoordinator(t)
	ctx := context.Background()

	requestStatuses := []model.RequestStatus{model.RequestStatusPending, model.RequestStatusAccepted, model.RequestStatusRejected}
	itemStatuses := []model.ItemStatus{model.ItemStatusActive, model.ItemStatusReturned}
	senders := []struct {
		name string
		id   int64
	}{
		{"claimant", claimantID},
		{"owner", ownerID},
		{"other", otherID},
	}

	for _, rs := range requestStatuses {
		for _, is := range itemStatuses {
			for _, sender := range senders {
				t.Run(fmt.Sprintf("%s/%s/%s", rs, is, sender.name), func(t *testing.T) {
					item := reportLost(t, c)
					req := submit(t, c, claimantID, item.ID)

					switch rs {
					case model.RequestStatusAccepted:
						_, err := c.Accept(ctx, ownerID, req.ID)
						require.NoError(t, err)
					case model.RequestStatusRejected:
						_, err := c.Reject(ctx, ownerID, req.ID)
						require.NoError(t, err)
					}

					if is == model.ItemStatusReturned {
						if rs == model.RequestStatusAccepted {
							_, err := c.MarkReturned(ctx, ownerID, item.ID)
							require.NoError(t, err)
						} else {
							_, err := store.MarkItemReturned(ctx, database, item.ID, req.ID)
							require.NoError(t, err)
						}
					}

					msg, err := c.SendMessage(ctx, sender.id, req.ID, "hello")

					switch {
					case sender.id == otherID:
						require.ErrorIs(t, err, model.ErrForbidden)
					case rs == model.RequestStatusAccepted && is == model.ItemStatusActive:
						require.NoError(t, err)
						assert.Equal(t, sender.id, msg.SenderID)
						assert.Equal(t, "hello", msg.Body)
					default:
						require.ErrorIs(t, err, model.ErrClosed)
					}
				})
			}
		}
	}
}

func TestAppend_Validation(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.SendMessage(ctx, claimantID, 999, "hello")
	require.ErrorIs(t, err, model.ErrNotFound)

	item := reportLost(t, c)
	req := submit(t, c, claimantID, item.ID)
	_, err = c.Accept(ctx, ownerID, req.ID)
	require.NoError(t, err)

	_, err = c.SendMessage(ctx, claimantID, req.ID, " \n\t ")
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = c.SendMessage(ctx, claimantID, req.ID, strings.Repeat("x", MaxTextLength+1))
	require.ErrorIs(t, err, model.ErrValidation)

	msg, err := c.SendMessage(ctx, claimantID, req.ID, "  padded  ")
	require.NoError(t, err)
	assert.Equal(t, "padded", msg.Body)
}

func TestHistory_PartiesOnly(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	item := reportLost(t, c)
	req := submit(t, c, claimantID, item.ID)
	_, err := c.Accept(ctx, ownerID, req.ID)
	require.NoError(t, err)

	_, err = c.ChatHistory(ctx, otherID, req.ID)
	require.ErrorIs(t, err, model.ErrForbidden)

	_, err = c.ChatHistory(ctx, ownerID, 999)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestHistory_OrderedUnderConcurrentSenders(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	item := reportLost(t, c)
	req := submit(t, c, claimantID, item.ID)
	_, err := c.Accept(ctx, ownerID, req.ID)
	require.NoError(t, err)

	const perSender = 10
	var g errgroup.Group
	for _, sender := range []int64{ownerID, claimantID} {
		g.Go(func() error {
			for i := 0; i < perSender; i++ {
				if _, err := c.SendMessage(ctx, sender, req.ID, fmt.Sprintf("msg %d", i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	chat, err := c.ChatHistory(ctx, ownerID, req.ID)
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2*perSender)

	for i := 1; i < len(chat.Messages); i++ {
		prev, cur := chat.Messages[i-1], chat.Messages[i]
		assert.Less(t, prev.ID, cur.ID)
		assert.False(t, cur.SentAt.Before(prev.SentAt), "message %d sent before message %d", cur.ID, prev.ID)
	}
}

func TestAccept_ConcurrentExactlyOnce(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	item := reportLost(t, c)
	req := submit(t, c, claimantID, item.ID)

	const callers = 4
	errs := make([]error, callers)
	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			_, errs[i] = c.Accept(ctx, ownerID, req.ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrInvalidTransition)
	}
	assert.Equal(t, 1, succeeded)

	chat, err := c.ChatHistory(ctx, claimantID, req.ID)
	require.NoError(t, err)
	assert.Empty(t, chat.Messages)
}

func TestAccept_ConcurrentSiblingsOneWins(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	item := reportLost(t, c)
	a := submit(t, c, claimantID, item.ID)
	b := submit(t, c, otherID, item.ID)

	ids := []int64{a.ID, b.ID}
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			_, errs[i] = c.Accept(ctx, ownerID, id)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrInvalidTransition)
	}
	assert.Equal(t, 1, succeeded)

	reqs, err := c.ItemRequests(ctx, ownerID, item.ID)
	require.NoError(t, err)
	accepted := 0
	for _, r := range reqs {
		if r.Status == model.RequestStatusAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestClock_NeverGoesBackwards(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	readings := []time.Time{
		base,
		base.Add(-time.Second),
		base.Add(time.Millisecond),
	}
	i := 0
	clock := NewClock(func() time.Time {
		t := readings[i%len(readings)]
		i++
		return t
	})

	first := clock.Next(time.Time{})
	second := clock.Next(time.Time{})
	third := clock.Next(time.Time{})

	assert.Equal(t, base, first)
	assert.Equal(t, base, second, "wall clock went back")
	assert.Equal(t, base.Add(time.Millisecond), third)

	floor := base.Add(time.Hour)
	assert.Equal(t, floor, clock.Next(floor))
	assert.Equal(t, floor, clock.Next(time.Time{}), "floor carries over")
}

func TestClock_TruncatesToMillis(t *testing.T) {
	clock := NewClock(func() time.Time {
		return time.Date(2026, 10, 1, 12, 0, 0, 1_500_000, time.UTC)
	})
	assert.Equal(t, time.Date(2026, 10, 1, 12, 0, 0, 1_000_000, time.UTC), clock.Next(time.Time{}))
}
