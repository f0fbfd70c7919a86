package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/pgql/query/executor"
)

func TestRecord(t *testing.T) {
	c := NewCollector()
	c.Record("findMany", "users", 10*time.Millisecond, nil)
	c.Record("findMany", "users", 30*time.Millisecond, errors.New("boom"))
	c.Record("count", "users", 5*time.Millisecond, nil)
	c.Record("delete", "posts", time.Millisecond, nil)

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 3)

	assert.Equal(t, "posts", snap.Operations[0].Table)
	assert.Equal(t, "count", snap.Operations[1].Operation)

	find := snap.Operations[2]
	assert.Equal(t, "findMany", find.Operation)
	assert.EqualValues(t, 2, find.Count)
	assert.EqualValues(t, 1, find.Errors)
	assert.Equal(t, 30*time.Millisecond, find.Max)
	assert.Equal(t, 20*time.Millisecond, find.Mean())
	assert.Equal(t, "boom", find.LastError)

	c.Reset()
	assert.Empty(t, c.Snapshot().Operations)
}

func TestMiddleware(t *testing.T) {
	c := NewCollector()
	mw := c.Middleware()

	event := &executor.QueryEvent{Operation: "insert", Table: "posts", Duration: 2 * time.Millisecond}
	err := mw(context.Background(), event, func() error { return nil })
	require.NoError(t, err)

	want := errors.New("unique violation")
	err = mw(context.Background(), event, func() error { return want })
	assert.ErrorIs(t, err, want)

	ops := c.Snapshot().Operations
	require.Len(t, ops, 1)
	assert.EqualValues(t, 2, ops[0].Count)
	assert.EqualValues(t, 1, ops[0].Errors)
}

func TestServeHTTP(t *testing.T) {
	c := NewCollector()
	c.Record("count", "users", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Operations, 1)
	assert.Equal(t, "users", snap.Operations[0].Table)

	rec = httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/stats", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
