package dataprocessing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetio/pkg/contracts/domain"
)

func pushAll(t *testing.T, r *Reconciler, rows ...[]domain.Value) domain.RecordSet {
	t.Helper()
	out := domain.RecordSet{}
	for _, row := range rows {
		record, ok, err := r.Push(row)
		require.NoError(t, err)
		if ok {
			out = append(out, record)
		}
	}
	return out
}

func TestReconcilerPadsAndTruncates(t *testing.T) {
	r := NewReconciler(true, nil)
	assert.Equal(t, AwaitingHeader, r.State())

	got := pushAll(t, r,
		[]domain.Value{"a", "b", "c"},
		[]domain.Value{"v1", "v2"},
		[]domain.Value{"w1", "w2", "w3", "w4"},
		[]domain.Value{"x1", "x2", "x3"},
	)

	assert.Equal(t, Streaming, r.State())
	assert.Equal(t, []string{"a", "b", "c"}, r.Header())
	assert.Equal(t, domain.RecordSet{
		domain.NewRecord("a", "v1", "b", "v2", "c", nil),
		domain.NewRecord("a", "w1", "b", "w2", "c", "w3"),
		domain.NewRecord("a", "x1", "b", "x2", "c", "x3"),
	}, got)

	padded, truncated := r.Adjusted()
	assert.Equal(t, 1, padded)
	assert.Equal(t, 1, truncated)
}

func TestReconcilerHeaderStringification(t *testing.T) {
	r := NewReconciler(true, nil)
	when := time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)

	pushAll(t, r, []domain.Value{when, 7, 1.5, nil, "name"})
	assert.Equal(t, []string{"2023-12-31 23:59:00", "7", "1.5", "", "name"}, r.Header())
}

func TestReconcilerDuplicateHeaderKeepsLastValue(t *testing.T) {
	r := NewReconciler(true, nil)
	got := pushAll(t, r,
		[]domain.Value{"k", "k", "z"},
		[]domain.Value{1, 2, 3},
	)
	assert.Equal(t, domain.RecordSet{domain.NewRecord("k", 2, "z", 3)}, got)
}

func TestReconcilerHeaderless(t *testing.T) {
	r := NewReconciler(false, nil)
	assert.Equal(t, Streaming, r.State())

	got := pushAll(t, r,
		[]domain.Value{"a", "b"},
		[]domain.Value{"c"},
	)
	assert.Nil(t, r.Header())
	assert.Equal(t, domain.RecordSet{
		domain.Positional("a", "b"),
		domain.Positional("c"),
	}, got)
}

func TestReconcilerProjection(t *testing.T) {
	project := func(r domain.Record) (domain.Outcome, error) {
		v, _ := r.Get("col1")
		return domain.Keep(domain.NewRecord("test", v)), nil
	}

	r := NewReconciler(true, project)
	got := pushAll(t, r,
		[]domain.Value{"col1", "col2"},
		[]domain.Value{"a", "1"},
		[]domain.Value{"b", "2"},
		[]domain.Value{"c", "3"},
	)

	assert.Equal(t, domain.RecordSet{
		domain.NewRecord("test", "a"),
		domain.NewRecord("test", "b"),
		domain.NewRecord("test", "c"),
	}, got)
}

func TestReconcilerFilterDropsAndKeepsEmpty(t *testing.T) {
	filter := func(r domain.Record) (domain.Outcome, error) {
		v, _ := r.Get("keep")
		switch v {
		case "no":
			return domain.Drop(), nil
		case "empty":
			return domain.Keep(domain.Record{}), nil
		}
		return domain.Keep(r), nil
	}

	r := NewReconciler(true, filter)
	got := pushAll(t, r,
		[]domain.Value{"keep"},
		[]domain.Value{"yes"},
		[]domain.Value{"no"},
		[]domain.Value{"empty"},
	)

	assert.Equal(t, domain.RecordSet{
		domain.NewRecord("keep", "yes"),
		{},
	}, got)
}

func TestReconcilerFilterError(t *testing.T) {
	boom := errors.New("boom")
	r := NewReconciler(false, func(domain.Record) (domain.Outcome, error) {
		return domain.Outcome{}, boom
	})

	_, ok, err := r.Push([]domain.Value{"x"})
	assert.False(t, ok)
	assert.Same(t, boom, err)
}
