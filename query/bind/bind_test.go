package bind

import (
	"database/sql"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
		kind Kind
	}{
		{"int64 in range", int64(42), int32(42), BindInt32},
		{"int", 7, int32(7), BindInt32},
		{"negative int", -3, int32(-3), BindInt32},
		{"int64 above int32", int64(math.MaxInt32) + 1, int64(math.MaxInt32) + 1, BindInt64},
		{"json integer", json.Number("18"), int32(18), BindInt32},
		{"json float", json.Number("1.5"), 1.5, BindFloat64},
		{"float64", 2.25, 2.25, BindFloat64},
		{"integral float stays float", 3.0, 3.0, BindFloat64},
		{"rfc3339 string", "2024-01-01T00:00:00Z", ts, BindTimestamp},
		{"rfc3339 with offset", "2024-01-01T02:00:00+02:00", ts, BindTimestamp},
		{"plain text", "plain text", "plain text", BindText},
		{"date only is text", "2024-01-01", "2024-01-01", BindText},
		{"pattern", "%test%", "%test%", BindText},
		{"bool", true, true, BindBool},
		{"nil", nil, sql.NullString{}, BindNull},
		{"unsupported type", []int{1}, sql.NullString{}, BindNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Value(tt.in)
			if want, ok := tt.want.(time.Time); ok {
				gotTime, ok := got.(time.Time)
				require.True(t, ok, "expected time.Time, got %T", got)
				assert.True(t, want.Equal(gotTime))
				assert.Equal(t, time.UTC, gotTime.Location())
			} else {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.kind, KindOf(tt.in))
		})
	}
}

func TestArgsPreservesOrderAndLength(t *testing.T) {
	params := []any{int64(1), nil, "Test", 2.5, "2024-01-01T00:00:00Z", false}

	got := Args(params)

	require.Len(t, got, len(params))
	assert.Equal(t, int32(1), got[0])
	assert.Equal(t, sql.NullString{}, got[1])
	assert.Equal(t, "Test", got[2])
	assert.Equal(t, 2.5, got[3])
	assert.IsType(t, time.Time{}, got[4])
	assert.Equal(t, false, got[5])

	// the input is left untouched
	assert.Equal(t, int64(1), params[0])
	assert.Equal(t, "2024-01-01T00:00:00Z", params[4])
}

func TestKinds(t *testing.T) {
	got := Kinds([]any{int64(18), "x", nil})
	assert.Equal(t, []Kind{BindInt32, BindText, BindNull}, got)
	assert.Equal(t, "int4", got[0].String())
	assert.Equal(t, "text", got[1].String())
	assert.Equal(t, "null", got[2].String())
}

func TestArgsEmpty(t *testing.T) {
	assert.Empty(t, Args(nil))
}
