package cache

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	urlClient, err := New(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = urlClient.Close()
}

func TestNewErrors(t *testing.T) {
	_, err := New(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoAddress)

	_, err = New(context.Background(), "redis://%zz")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = New(context.Background(), addr)
	assert.ErrorContains(t, err, "ping")
}
