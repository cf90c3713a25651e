package streamer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/streamson/streamsonerr"
)

// feedAll feeds every byte of input one at a time and returns the structural
// token stream in order (every token except Pending), failing the test on any
// error.
func feedAll(t *testing.T, s *Streamer, input string) []Token {
	t.Helper()
	var all []Token
	for i := 0; i < len(input); i++ {
		toks, err := s.Feed(input[i])
		require.NoError(t, err, "byte %d (%q)", i, input[i])
		for _, tok := range toks {
			if tok.Kind != Pending {
				all = append(all, tok)
			}
		}
	}
	return all
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScalarTopLevel(t *testing.T) {
	s := New()
	toks := feedAll(t, s, `42`)
	rest, err := s.Terminate()
	require.NoError(t, err)
	toks = append(toks, rest...)

	require.Len(t, toks, 2)
	assert.Equal(t, Start, toks[0].Kind)
	assert.Equal(t, Number, toks[0].MatchedKind)
	assert.Equal(t, End, toks[1].Kind)
	assert.Equal(t, uint64(1), toks[1].ByteIndex)
}

func TestNumberTerminatedWithinArray(t *testing.T) {
	s := New()
	toks := feedAll(t, s, `[1,2]`)
	_, err := s.Terminate()
	require.NoError(t, err)

	// [ 1 , 2 ]
	require.Len(t, toks, 7)
	assert.Equal(t, []TokenKind{Start, Start, End, Separator, Start, End, End}, kinds(toks))
	assert.Equal(t, Array, toks[0].MatchedKind)
	assert.Equal(t, Number, toks[1].MatchedKind)
	// the comma-terminated number's End token points at the digit, not the comma
	assert.Equal(t, uint64(1), toks[2].ByteIndex)
	assert.Equal(t, uint64(2), toks[3].ByteIndex)
}

func TestObjectKeyValue(t *testing.T) {
	s := New()
	toks := feedAll(t, s, `{"a":true}`)
	_, err := s.Terminate()
	require.NoError(t, err)

	require.Len(t, toks, 5)
	assert.Equal(t, Start, toks[0].Kind)
	assert.Equal(t, Object, toks[0].MatchedKind)
	assert.Equal(t, Separator, toks[1].Kind) // colon
	assert.Equal(t, Start, toks[2].Kind)
	assert.Equal(t, Boolean, toks[2].MatchedKind)
	assert.Equal(t, "a", string(lastKey(t, toks[2])))
	assert.Equal(t, End, toks[3].Kind)
}

func TestArrayIndexIncrementsInPlace(t *testing.T) {
	s := New()
	var paths []string
	for i := 0; i < len(`[1,2,3]`); i++ {
		toks, err := s.Feed(`[1,2,3]`[i])
		require.NoError(t, err)
		for _, tok := range toks {
			if tok.Kind == Start && tok.MatchedKind == Number {
				paths = append(paths, tok.Path.Render())
			}
		}
	}
	assert.Equal(t, []string{"[0]", "[1]", "[2]"}, paths)
}

func TestNestedPath(t *testing.T) {
	s := New()
	var startPaths []string
	input := `{"users":[{"name":"a"}]}`
	for i := 0; i < len(input); i++ {
		toks, err := s.Feed(input[i])
		require.NoError(t, err)
		for _, tok := range toks {
			if tok.Kind == Start && tok.MatchedKind == String {
				startPaths = append(startPaths, tok.Path.Render())
			}
		}
	}
	assert.Equal(t, []string{`{"users"}[0]{"name"}`}, startPaths)
}

func TestKeyEscapes(t *testing.T) {
	s := New()
	toks := feedAll(t, s, `{"a\"b":1}`)
	_, err := s.Terminate()
	require.NoError(t, err)

	key := lastKey(t, toks[2])
	assert.Equal(t, `a\"b`, string(key))
}

func TestConcatenatedTopLevelDocuments(t *testing.T) {
	s := New()
	toks := feedAll(t, s, "1 2")
	rest, err := s.Terminate()
	require.NoError(t, err)
	toks = append(toks, rest...)

	assert.Equal(t, []TokenKind{Start, End, Idle, Start, End}, kinds(toks))
}

func TestUnbalancedBracket(t *testing.T) {
	s := New()
	_, err := s.Feed('[')
	require.NoError(t, err)
	_, err = s.Feed('}')
	require.Error(t, err)

	var se *streamsonerr.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, streamsonerr.KindInput, se.Kind)
}

func TestPoisonedAfterError(t *testing.T) {
	s := New()
	_, err := s.Feed('}')
	require.Error(t, err)

	_, err2 := s.Feed('1')
	assert.Same(t, err, err2)
}

func TestIncompleteOnUnterminatedContainer(t *testing.T) {
	s := New()
	_, err := s.Feed('[')
	require.NoError(t, err)

	_, err = s.Terminate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, streamsonerr.Incomplete("", nil)))
}

func TestIncompleteOnUnterminatedString(t *testing.T) {
	s := New()
	feedAll(t, s, `"abc`)
	_, err := s.Terminate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, streamsonerr.Incomplete("", nil)))
}

func TestChunkingInvariance(t *testing.T) {
	input := `{"a":[1,2,{"b":"c"}],"d":null}`
	splits := [][]int{
		{len(input)},
		{1, len(input) - 1},
		{5, 5, 5, len(input) - 15},
	}

	var reference []Token
	for i, cuts := range splits {
		s := New()
		var got []Token
		pos := 0
		for _, n := range cuts {
			for j := 0; j < n; j++ {
				toks, err := s.Feed(input[pos])
				require.NoError(t, err)
				got = append(got, toks...)
				pos++
			}
		}
		_, err := s.Terminate()
		require.NoError(t, err)
		if i == 0 {
			reference = got
			continue
		}
		require.Equal(t, len(reference), len(got), "split %v", cuts)
		for k := range reference {
			assert.Equal(t, reference[k].Kind, got[k].Kind, "split %v token %d", cuts, k)
			assert.Equal(t, reference[k].MatchedKind, got[k].MatchedKind, "split %v token %d", cuts, k)
			assert.True(t, reference[k].Path.Equal(got[k].Path), "split %v token %d", cuts, k)
		}
	}
}

func lastKey(t *testing.T, tok Token) []byte {
	t.Helper()
	last, ok := tok.Path.Last()
	require.True(t, ok)
	return last.Key
}
