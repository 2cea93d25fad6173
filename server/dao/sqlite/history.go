package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/google/uuid"
)

type HistoryDB struct {
	db *sql.DB
}

func (repo *HistoryDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS eval_history (
		id TEXT NOT NULL PRIMARY KEY,
		request_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		source TEXT NOT NULL,
		result TEXT NOT NULL,
		err TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *HistoryDB) Create(ctx context.Context, rec dao.EvalRecord) (dao.EvalRecord, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.EvalRecord{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO eval_history (id, request_id, user_id, source, result, err, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newUUID.String(), rec.RequestID.String(), rec.UserID.String(), rec.Source, rec.Result, rec.Err, now.Unix(),
	)
	if err != nil {
		return dao.EvalRecord{}, wrapDBError(err)
	}

	rec.ID = newUUID
	rec.Created = now
	return rec, nil
}

func (repo *HistoryDB) GetAll(ctx context.Context, notBefore, notAfter *time.Time) ([]dao.EvalRecord, error) {
	query := `SELECT id, request_id, user_id, source, result, err, created FROM eval_history WHERE 1=1`
	var args []interface{}
	if notBefore != nil {
		query += ` AND created >= ?`
		args = append(args, notBefore.Unix())
	}
	if notAfter != nil {
		query += ` AND created <= ?`
		args = append(args, notAfter.Unix())
	}
	query += ` ORDER BY created ASC;`

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.EvalRecord
	for rows.Next() {
		var rec dao.EvalRecord
		var id, reqID, userID string
		var created int64

		err := rows.Scan(&id, &reqID, &userID, &rec.Source, &rec.Result, &rec.Err, &created)
		if err != nil {
			return all, wrapDBError(err)
		}

		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", id)
		}
		rec.RequestID, err = uuid.Parse(reqID)
		if err != nil {
			return all, fmt.Errorf("stored request UUID %q is invalid", reqID)
		}
		rec.UserID, err = uuid.Parse(userID)
		if err != nil {
			return all, fmt.Errorf("stored user UUID %q is invalid", userID)
		}
		rec.Created = time.Unix(created, 0)

		all = append(all, rec)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *HistoryDB) Close() error {
	return nil
}
