package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

type countingGen struct {
	calls int
	out   string
	err   error
}

func (g *countingGen) Generate(_ domain.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.out, nil
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestReplyCache_HitSkipsGateway(t *testing.T) {
	t.Parallel()
	gen := &countingGen{out: "cached reply"}
	cached := ai.NewReplyCache(gen, newTestRedis(t), time.Hour)

	out, err := cached.Generate(context.Background(), "same prompt")
	require.NoError(t, err)
	assert.Equal(t, "cached reply", out)

	out, err = cached.Generate(context.Background(), "same prompt")
	require.NoError(t, err)
	assert.Equal(t, "cached reply", out)
	assert.Equal(t, 1, gen.calls)

	// Leading and trailing whitespace does not change the key.
	_, err = cached.Generate(context.Background(), "  same prompt  ")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	_, err = cached.Generate(context.Background(), "different prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestReplyCache_ErrorNotCached(t *testing.T) {
	t.Parallel()
	gen := &countingGen{err: errors.New("down")}
	cached := ai.NewReplyCache(gen, newTestRedis(t), time.Hour)

	_, err := cached.Generate(context.Background(), "p")
	require.Error(t, err)

	gen.err = nil
	gen.out = "recovered"
	out, err := cached.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 2, gen.calls)
}

func TestNewReplyCache_PassThroughWhenDisabled(t *testing.T) {
	t.Parallel()
	gen := &countingGen{out: "x"}
	assert.Equal(t, domain.TextGenerator(gen), ai.NewReplyCache(gen, nil, time.Hour))
	assert.Equal(t, domain.TextGenerator(gen), ai.NewReplyCache(gen, newTestRedis(t), 0))
}
