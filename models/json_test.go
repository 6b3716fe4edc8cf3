package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilSlicesPersistAsEmptyArrays(t *testing.T) {
	v, err := StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = Transcript(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = CategoryScores(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestScanJSONSources(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringSlice{"a", "b"}, s)

	var tr Transcript
	require.NoError(t, tr.Scan(`[{"role":"user","content":"hi"}]`))
	require.Len(t, tr, 1)
	assert.Equal(t, "user", tr[0].Role)

	var c CategoryScores
	require.NoError(t, c.Scan(nil))
	assert.Nil(t, c)

	assert.Error(t, s.Scan(42))
}
