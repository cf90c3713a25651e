package concurrency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/strategy"
)

// TestFanOut_SharedMatcherAndHandler runs many concurrent Strategy instances
// that all register the exact same matcher.Matcher and handler.Handler
// values, built once outside the per-chunk closure, per spec.md §5.
func TestFanOut_SharedMatcherAndHandler(t *testing.T) {
	t.Parallel()

	m, err := matcher.ParseSimple(`{"id"}`)
	require.NoError(t, err)
	h := handler.NewReplace([]byte(`"REDACTED"`))

	chunks := make([][]byte, 32)
	for i := range chunks {
		chunks[i] = []byte(`{"id":1,"ok":true}`)
	}

	build := func() strategy.Strategy {
		s := strategy.NewConvert(strategy.PolicyAbort)
		s.AddMatcher(m, h)
		return s
	}

	results, err := FanOut(context.Background(), 8, build, chunks)
	require.NoError(t, err)
	require.Len(t, results, len(chunks))

	for i, r := range results {
		require.NoError(t, r.Err, "chunk %d", i)
		assert.Equal(t, `{"id":"REDACTED","ok":true}`, string(r.Output))
	}
}

// TestFanOut_PerChunkErrorIsolated verifies one chunk's error does not
// prevent the others from completing and being reported.
func TestFanOut_PerChunkErrorIsolated(t *testing.T) {
	t.Parallel()

	build := func() strategy.Strategy { return strategy.NewTrigger(strategy.PolicyAbort) }

	chunks := [][]byte{
		[]byte(`{"a":1}`),
		[]byte(`not json`),
		[]byte(`{"b":2}`),
	}

	results, err := FanOut(context.Background(), 2, build, chunks)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}
