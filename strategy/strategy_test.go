package strategy

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/internal/testutil"
	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/streamer"
)

func mustSimple(t *testing.T, pattern string) matcher.Simple {
	t.Helper()
	m, err := matcher.ParseSimple(pattern)
	require.NoError(t, err)
	return m
}

func processAll(t *testing.T, s Strategy, input []byte) []byte {
	t.Helper()
	out, err := s.Process(input)
	require.NoError(t, err)
	tail, err := s.Terminate()
	require.NoError(t, err)
	return append(out, tail...)
}

// S1 Extract, simple:{"users"}[] on {"users":[{"id":1},{"id":2}]} →
// {"id":1}{"id":2}.
func TestS1_Extract(t *testing.T) {
	t.Parallel()

	e := NewExtract(PolicyAbort)
	e.AddMatcher(mustSimple(t, `{"users"}[]`), handler.NewRecorder())

	out := processAll(t, e, []byte(`{"users":[{"id":1},{"id":2}]}`))
	testutil.Golden(t, "s1_extract", out)
}

// S2 Filter, simple:{"groups"} on {"users":[1],"groups":[9]} →
// {"users":[1]}.
func TestS2_Filter(t *testing.T) {
	t.Parallel()

	f := NewFilter(PolicyAbort)
	f.AddMatcher(mustSimple(t, `{"groups"}`), handler.NewRecorder())

	out := processAll(t, f, []byte(`{"users":[1],"groups":[9]}`))
	testutil.Golden(t, "s2_filter", out)
}

// S2 variant: filtering the first member instead of the last exercises the
// suppressNextComma path rather than the leading-comma-retraction path.
func TestS2_Filter_FirstMember(t *testing.T) {
	t.Parallel()

	f := NewFilter(PolicyAbort)
	f.AddMatcher(mustSimple(t, `{"users"}`), handler.NewRecorder())

	out := processAll(t, f, []byte(`{"users":[1],"groups":[9]}`))
	assert.Equal(t, `{"groups":[9]}`, string(out))
}

// S3 Convert, simple:{"users"}[]{"password"} with a replace handler emitting
// "***" on a two-user document → both passwords replaced, names untouched.
func TestS3_Convert(t *testing.T) {
	t.Parallel()

	c := NewConvert(PolicyAbort)
	c.AddMatcher(mustSimple(t, `{"users"}[]{"password"}`), handler.NewReplace([]byte(`"***"`)))

	in := `{"users":[{"name":"a","password":"x"},{"name":"b","password":"y"}]}`
	out := processAll(t, c, []byte(in))
	testutil.Golden(t, "s3_convert", out)
}

// jsonIndenter is a buffering, converting test handler that re-indents the
// bytes of its matched span with encoding/json.Indent, standing in for the
// "indenter" handler the CLI collaborator would otherwise supply (spec.md
// §6 lists indenter as an external surface-syntax handler, not one this
// module ships).
type jsonIndenter struct {
	buf    bytes.Buffer
	prefix string
	indent string
}

func (j *jsonIndenter) Start(jsonpath.Path, handler.MatchID, streamer.MatchedKind) ([]byte, error) {
	return nil, nil
}

func (j *jsonIndenter) Feed(chunk []byte, _ handler.MatchID) ([]byte, error) {
	j.buf.Write(chunk)
	return []byte{}, nil
}

func (j *jsonIndenter) End(_ jsonpath.Path, _ handler.MatchID, _ streamer.MatchedKind) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, j.buf.Bytes(), j.prefix, j.indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (j *jsonIndenter) IsConverter() bool { return true }
func (j *jsonIndenter) Buffering() bool   { return true }

// S4 All + indenter=2 on {"a":1,"b":[2,3]} → two-space pretty-printed form.
func TestS4_All_Indenter(t *testing.T) {
	t.Parallel()

	a := NewAll(PolicyAbort)
	a.AddMatcher(matcher.All{}, &jsonIndenter{indent: "  "})

	in := `{"a":1,"b":[2,3]}`
	out := processAll(t, a, []byte(in))
	testutil.Golden(t, "s4_all_indenter", out)
}

// S5 Trigger nested: two matchers, one over {"users"}[] and one over
// {"users"}[]{"name"}, both fire over a single user object; both Starts
// happen before either End, and Ends happen in nested (innermost-first)
// order.
func TestS5_Trigger_Nested(t *testing.T) {
	t.Parallel()

	recA := handler.NewRecorder()
	recB := handler.NewRecorder()

	tr := NewTrigger(PolicyAbort)
	tr.AddMatcher(mustSimple(t, `{"users"}[]`), recA)
	tr.AddMatcher(mustSimple(t, `{"users"}[]{"name"}`), recB)

	_, err := tr.Process([]byte(`{"users":[{"name":"c"}]}`))
	require.NoError(t, err)
	_, err = tr.Terminate()
	require.NoError(t, err)

	eventsA := recA.Events()
	eventsB := recB.Events()
	require.NotEmpty(t, eventsA)
	require.NotEmpty(t, eventsB)

	require.Equal(t, "start", eventsA[0].Kind)
	require.Equal(t, "start", eventsB[0].Kind)
	assert.Equal(t, "{\"users\"}[0]", eventsA[0].Path.Render())
	assert.Equal(t, "{\"users\"}[0]{\"name\"}", eventsB[0].Path.Render())

	endA := eventsA[len(eventsA)-1]
	endB := eventsB[len(eventsB)-1]
	require.Equal(t, "end", endA.Kind)
	require.Equal(t, "end", endB.Kind)
}

// TestS5_Trigger_Nested_InterleavedOrder records both matchers' Start/End
// calls into one shared log through a stampingHandler per registration,
// confirming both Starts precede either End and the nested match's End
// precedes the outer match's End.
func TestS5_Trigger_Nested_InterleavedOrder(t *testing.T) {
	t.Parallel()

	type stamp = struct {
		who  string
		kind string
	}
	var log []stamp

	outer := &stampingHandler{log: &log, who: "A"}
	inner := &stampingHandler{log: &log, who: "B"}

	tr := NewTrigger(PolicyAbort)
	tr.AddMatcher(mustSimple(t, `{"users"}[]`), outer)
	tr.AddMatcher(mustSimple(t, `{"users"}[]{"name"}`), inner)

	_, err := tr.Process([]byte(`{"users":[{"name":"c"}]}`))
	require.NoError(t, err)
	_, err = tr.Terminate()
	require.NoError(t, err)

	require.Len(t, log, 4)
	assert.Equal(t, stamp{"A", "start"}, log[0])
	assert.Equal(t, stamp{"B", "start"}, log[1])
	assert.Equal(t, stamp{"B", "end"}, log[2])
	assert.Equal(t, stamp{"A", "end"}, log[3])
}

type stampingHandler struct {
	log *[]struct {
		who  string
		kind string
	}
	who string
}

func (s *stampingHandler) Start(jsonpath.Path, handler.MatchID, streamer.MatchedKind) ([]byte, error) {
	*s.log = append(*s.log, struct {
		who  string
		kind string
	}{s.who, "start"})
	return nil, nil
}

func (s *stampingHandler) Feed(chunk []byte, _ handler.MatchID) ([]byte, error) { return nil, nil }

func (s *stampingHandler) End(jsonpath.Path, handler.MatchID, streamer.MatchedKind) ([]byte, error) {
	*s.log = append(*s.log, struct {
		who  string
		kind string
	}{s.who, "end"})
	return nil, nil
}

func (s *stampingHandler) IsConverter() bool { return false }
func (s *stampingHandler) Buffering() bool   { return false }

// S6 Chunking invariance: feeding S1's input one byte at a time must yield
// the same output as feeding it whole.
func TestS6_ChunkingInvariance(t *testing.T) {
	t.Parallel()

	in := []byte(`{"users":[{"id":1},{"id":2}]}`)

	whole := NewExtract(PolicyAbort)
	whole.AddMatcher(mustSimple(t, `{"users"}[]`), handler.NewRecorder())
	wholeOut := processAll(t, whole, in)

	perByte := NewExtract(PolicyAbort)
	perByte.AddMatcher(mustSimple(t, `{"users"}[]`), handler.NewRecorder())
	var byteOut []byte
	for _, b := range in {
		chunkOut, err := perByte.Process([]byte{b})
		require.NoError(t, err)
		byteOut = append(byteOut, chunkOut...)
	}
	tail, err := perByte.Terminate()
	require.NoError(t, err)
	byteOut = append(byteOut, tail...)

	assert.Equal(t, string(wholeOut), string(byteOut))
}

// Invariant 3: Trigger is byte-pure — zero bytes emitted without
// Passthrough.
func TestInvariant_TriggerBytePure(t *testing.T) {
	t.Parallel()

	tr := NewTrigger(PolicyAbort)
	tr.AddMatcher(matcher.All{}, handler.NewRecorder())

	out := processAll(t, tr, []byte(`{"a":1}`))
	assert.Empty(t, out)
}

func TestInvariant_TriggerPassthroughEchoesInput(t *testing.T) {
	t.Parallel()

	in := []byte(`{"a":1,"b":[true,null]}`)
	tr := NewTrigger(PolicyAbort)
	tr.Passthrough = true
	tr.AddMatcher(matcher.All{}, handler.NewRecorder())

	out := processAll(t, tr, in)
	assert.Equal(t, string(in), string(out))
}

// Invariant 4: Filter idempotence — filtering the already-filtered output
// again changes nothing further.
func TestInvariant_FilterIdempotence(t *testing.T) {
	t.Parallel()

	in := []byte(`{"users":[1],"groups":[9]}`)

	f1 := NewFilter(PolicyAbort)
	f1.AddMatcher(mustSimple(t, `{"groups"}`), handler.NewRecorder())
	once := processAll(t, f1, in)

	f2 := NewFilter(PolicyAbort)
	f2.AddMatcher(mustSimple(t, `{"groups"}`), handler.NewRecorder())
	twice := processAll(t, f2, once)

	assert.Equal(t, string(once), string(twice))
}

// Invariant 5: Convert identity — a handler whose Feed/Start/End always
// return nil (no conversion) yields output equal to input.
type noopHandler struct{}

func (noopHandler) Start(jsonpath.Path, handler.MatchID, streamer.MatchedKind) ([]byte, error) {
	return nil, nil
}
func (noopHandler) Feed(chunk []byte, _ handler.MatchID) ([]byte, error) { return nil, nil }
func (noopHandler) End(jsonpath.Path, handler.MatchID, streamer.MatchedKind) ([]byte, error) {
	return nil, nil
}
func (noopHandler) IsConverter() bool { return false }
func (noopHandler) Buffering() bool   { return false }

func TestInvariant_ConvertIdentity(t *testing.T) {
	t.Parallel()

	in := []byte(`{"users":[{"name":"a","password":"x"}]}`)
	c := NewConvert(PolicyAbort)
	c.AddMatcher(mustSimple(t, `{"users"}[]{"password"}`), noopHandler{})

	out := processAll(t, c, in)
	assert.Equal(t, string(in), string(out))
}

// Invariant 6: Extract completeness — the concatenation of extracted values
// equals the raw bytes Trigger would have seen fed to it for the same span.
func TestInvariant_ExtractCompleteness(t *testing.T) {
	t.Parallel()

	in := []byte(`{"users":[{"id":1},{"id":2}]}`)

	rec := handler.NewRecorder()
	e := NewExtract(PolicyAbort)
	e.AddMatcher(mustSimple(t, `{"users"}[]`), rec)
	_ = processAll(t, e, in)

	var fed []byte
	for _, ev := range rec.Events() {
		if ev.Kind == "feed" {
			fed = append(fed, ev.Data...)
		}
	}
	assert.Equal(t, `{"id":1}{"id":2}`, string(fed))
}

// Policy: isolate drops only the failing match and keeps streaming.
type alwaysErrHandler struct{}

func (alwaysErrHandler) Start(jsonpath.Path, handler.MatchID, streamer.MatchedKind) ([]byte, error) {
	return nil, assertErr
}
func (alwaysErrHandler) Feed(chunk []byte, _ handler.MatchID) ([]byte, error) { return nil, nil }
func (alwaysErrHandler) End(jsonpath.Path, handler.MatchID, streamer.MatchedKind) ([]byte, error) {
	return nil, nil
}
func (alwaysErrHandler) IsConverter() bool { return false }
func (alwaysErrHandler) Buffering() bool   { return false }

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }

func TestPolicy_AbortPoisonsStrategy(t *testing.T) {
	t.Parallel()

	tr := NewTrigger(PolicyAbort)
	tr.AddMatcher(mustSimple(t, `{"a"}`), alwaysErrHandler{})

	_, err := tr.Process([]byte(`{"a":1}`))
	require.Error(t, err)

	_, err = tr.Process([]byte(`{"a":2}`))
	require.Error(t, err, "strategy must stay poisoned after the first handler error")
}

func TestPolicy_IsolateContinuesStreaming(t *testing.T) {
	t.Parallel()

	tr := NewTrigger(PolicyIsolate)
	tr.AddMatcher(mustSimple(t, `{"a"}`), alwaysErrHandler{})

	_, err := tr.Process([]byte(`{"a":1,"b":2}`))
	require.NoError(t, err)
	_, err = tr.Terminate()
	require.NoError(t, err)
}
