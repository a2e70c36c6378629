package store

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Title  string
	Counts [3]int
	Values []float64
}

func sample() record {
	r := record{Title: strings.Repeat("torus ", 20), Counts: [3]int{1, 2, 1}}
	for i := 0; i < 200; i++ {
		r.Values = append(r.Values, float64(i%7)*0.5)
	}
	return r
}

func TestCodecs(t *testing.T) {
	data := bytes.Repeat([]byte("persistence diagram "), 50)
	for _, c := range []Codec{CodecNone, CodecLZ4, CodecZSTD} {
		rec, err := encode(data, c)
		require.NoError(t, err, c.String())
		assert.Equal(t, byte(c), rec[0], c.String())
		if c != CodecNone {
			assert.Less(t, len(rec), len(data), c.String())
		}
		out, err := decode(rec)
		require.NoError(t, err, c.String())
		assert.Equal(t, data, out, c.String())
	}
	// incompressible input is stored raw
	rec, err := encode([]byte("ab"), CodecZSTD)
	require.NoError(t, err)
	assert.Equal(t, byte(CodecNone), rec[0])

	for _, bad := range [][]byte{nil, {0, 9, 0, 0, 0}, {7, 0, 0, 0, 0}, {2, 10, 0, 0, 0, 1, 2, 3}} {
		_, err = decode(bad)
		assert.ErrorIs(t, err, ErrCorrupt, "%v", bad)
	}
	// declared sizes far beyond what the payload can hold
	for _, bad := range [][]byte{
		{0, 0xff, 0xff, 0xff, 0xff, 1, 2, 3},
		{1, 0xff, 0xff, 0xff, 0x3f, 1, 2, 3},
		{1, 0, 0, 0x10, 0, 1, 2, 3},
		{2, 0, 0, 0, 0x20, 1, 2, 3},
	} {
		var out []byte
		assert.NotPanics(t, func() { out, err = decode(bad) }, "%v", bad)
		assert.ErrorIs(t, err, ErrCorrupt, "%v", bad)
		assert.Nil(t, out)
	}
}

func TestParseCodec(t *testing.T) {
	for s, want := range map[string]Codec{"": CodecNone, "none": CodecNone, "LZ4": CodecLZ4, "zstd": CodecZSTD} {
		c, err := ParseCodec(s)
		require.NoError(t, err)
		assert.Equal(t, want, c)
	}
	_, err := ParseCodec("gzip")
	assert.Error(t, err)
}

func TestInMemoryStore(t *testing.T) {
	for _, c := range []Codec{CodecNone, CodecLZ4, CodecZSTD} {
		s, err := Open(Options{Codec: c})
		require.NoError(t, err)
		want := sample()
		require.NoError(t, s.Put("run/a", want))
		require.NoError(t, s.Put("run/b", record{Title: "b"}))
		require.NoError(t, s.Put("other", record{}))

		var got record
		require.NoError(t, s.Get("run/a", &got))
		assert.Equal(t, want, got, c.String())

		keys, err := s.Keys("run/")
		require.NoError(t, err)
		assert.Equal(t, []string{"run/a", "run/b"}, keys)

		require.NoError(t, s.Delete("run/a"))
		assert.ErrorIs(t, s.Get("run/a", &got), ErrNotFound)
		require.NoError(t, s.Close())

		keys, err = s.Keys("run/")
		assert.ErrorIs(t, err, badger.ErrDBClosed)
		assert.Contains(t, err.Error(), `listing "run/"`)
		assert.Nil(t, keys)
	}
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Dir: dir, Codec: CodecZSTD})
	require.NoError(t, err)
	require.NoError(t, s.Put("k", sample()))
	require.NoError(t, s.Close())

	// a store opened with a different codec still reads older records
	s, err = Open(Options{Dir: dir, Codec: CodecLZ4})
	require.NoError(t, err)
	defer s.Close()
	var got record
	require.NoError(t, s.Get("k", &got))
	assert.Equal(t, sample(), got)
	keys, err := s.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	_, err = Open(Options{ReadOnly: true})
	assert.Error(t, err)
}
