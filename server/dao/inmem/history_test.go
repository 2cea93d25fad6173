package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/google/uuid"

	"github.com/dekarrin/rpal/server/dao"
)

func Test_HistoryRepository_Create(t *testing.T) {
	repo := NewHistoryRepository()

	rec, err := repo.Create(context.Background(), dao.EvalRecord{
		RequestID: uuid.New(),
		Source:    "1 + 1",
		Result:    "2",
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.NotEqual(t, uuid.UUID{}, rec.ID)
	assert.False(t, rec.Created.IsZero())
}

func Test_HistoryRepository_GetAll_filtersByTimeRange(t *testing.T) {
	repo := NewHistoryRepository()

	old := dao.EvalRecord{RequestID: uuid.New(), Source: "old", Result: "1"}
	repo.recs[uuid.New()] = func() dao.EvalRecord {
		old.ID = uuid.New()
		old.Created = time.Now().Add(-time.Hour)
		return old
	}()

	recent, err := repo.Create(context.Background(), dao.EvalRecord{
		RequestID: uuid.New(),
		Source:    "recent",
		Result:    "2",
	})
	if !assert.NoError(t, err) {
		return
	}

	cutoff := time.Now().Add(-time.Minute)
	all, err := repo.GetAll(context.Background(), &cutoff, nil)
	if !assert.NoError(t, err) {
		return
	}
	if !assert.Len(t, all, 1) {
		return
	}
	assert.Equal(t, recent.ID, all[0].ID)
}

func Test_HistoryRepository_GetAll_sortedByCreated(t *testing.T) {
	repo := NewHistoryRepository()

	first, err := repo.Create(context.Background(), dao.EvalRecord{RequestID: uuid.New(), Source: "a"})
	if !assert.NoError(t, err) {
		return
	}
	second, err := repo.Create(context.Background(), dao.EvalRecord{RequestID: uuid.New(), Source: "b"})
	if !assert.NoError(t, err) {
		return
	}

	all, err := repo.GetAll(context.Background(), nil, nil)
	if !assert.NoError(t, err) {
		return
	}
	if !assert.Len(t, all, 2) {
		return
	}
	assert.True(t, all[0].Created.Before(all[1].Created) || all[0].Created.Equal(all[1].Created))
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}
