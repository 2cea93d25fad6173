package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/google/uuid"
)

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{
		recs: make(map[uuid.UUID]dao.EvalRecord),
	}
}

type HistoryRepository struct {
	recs map[uuid.UUID]dao.EvalRecord
}

func (r *HistoryRepository) Close() error {
	return nil
}

func (r *HistoryRepository) Create(ctx context.Context, rec dao.EvalRecord) (dao.EvalRecord, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.EvalRecord{}, fmt.Errorf("could not generate ID: %w", err)
	}

	rec.ID = newUUID
	rec.Created = time.Now()
	r.recs[rec.ID] = rec

	return rec, nil
}

func (r *HistoryRepository) GetAll(ctx context.Context, notBefore, notAfter *time.Time) ([]dao.EvalRecord, error) {
	all := make([]dao.EvalRecord, 0, len(r.recs))
	for k := range r.recs {
		rec := r.recs[k]
		if notBefore != nil && rec.Created.Before(*notBefore) {
			continue
		}
		if notAfter != nil && rec.Created.After(*notAfter) {
			continue
		}
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Created.Before(all[j].Created)
	})
	return all, nil
}
