package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DropsWhenFull(t *testing.T) {
	b := NewBus(2)
	b.Notify(Notice{Level: LevelInfo, Message: "one"})
	b.Notify(Notice{Level: LevelInfo, Message: "two"})
	b.Notify(Notice{Level: LevelInfo, Message: "three"})

	got := b.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Message)
	assert.Equal(t, "two", got[1].Message)
	assert.False(t, got[0].At.IsZero(), "timestamp is filled in")
	assert.Equal(t, 1, b.Dropped())
}

func TestBus_CloseIsSafe(t *testing.T) {
	b := NewBus(1)
	b.Close()
	b.Close()
	b.Notify(Notice{Message: "after close"})
	assert.Empty(t, b.Drain())
}

func TestMulti(t *testing.T) {
	var a, c []string
	m := Multi{
		Func(func(n Notice) { a = append(a, n.Message) }),
		Func(func(n Notice) { c = append(c, n.Message) }),
	}
	Success(m, "saved")
	Failure(m, "nope")
	Info(m, "fyi")

	assert.Equal(t, []string{"saved", "nope", "fyi"}, a)
	assert.Equal(t, a, c)
}

func TestConfirmers(t *testing.T) {
	ok, err := AlwaysConfirm.Confirm(context.Background(), "delete?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NeverConfirm.Confirm(context.Background(), "delete?")
	require.NoError(t, err)
	assert.False(t, ok)
}
