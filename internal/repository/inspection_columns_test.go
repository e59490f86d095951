package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBatches(t *testing.T) {
	t.Parallel()

	keys := []string{"1", "2", "3", "4", "5"}

	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}, {"5"}}, keyBatches(keys, 2))
	assert.Equal(t, [][]string{keys}, keyBatches(keys, 0))
	assert.Empty(t, keyBatches(nil, 10))
}

func TestPlainValues(t *testing.T) {
	t.Parallel()

	var nilString *string
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("BRT", -3*3600))

	out := plainValues([]interface{}{"owner", nilString, ptr("x"), ptr(7), ptr(1.5), &ts, (*time.Time)(nil)})

	require.Len(t, out, 7)
	assert.Equal(t, "owner", out[0])
	assert.Nil(t, out[1])
	assert.Equal(t, "x", out[2])
	assert.Equal(t, int64(7), out[3])
	assert.Equal(t, 1.5, out[4])
	assert.Equal(t, ts.UTC(), out[5])
	assert.Nil(t, out[6])
}

func TestRecordValues_MatchesInsertColumns(t *testing.T) {
	t.Parallel()

	values := recordValues(ownerA, sampleRecord("1"))
	require.Len(t, values, len(insertColumns))
	assert.Equal(t, string(ownerA), values[0])
	assert.Equal(t, "1", values[1])
	assert.Len(t, selectColumns, len(insertColumns)+2)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := withTimeout(context.Background(), 0)
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)

	ctx2, cancel2 := withTimeout(context.Background(), time.Second)
	defer cancel2()
	_, hasDeadline = ctx2.Deadline()
	assert.True(t, hasDeadline)
}
