// Package sqlite provides a dao.Store backed by a single SQLite database
// file, via modernc.org/sqlite (a pure-Go driver, no cgo toolchain needed).
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dekarrin/rpal/server/dao"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename string
	db         *sql.DB

	users *UsersDB
	hist  *HistoryDB
}

// NewDatastore opens (creating if needed) a SQLite database under
// storageDir and returns a dao.Store backed by it.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{dbFilename: "rpalserver.db"}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		return nil, err
	}

	st.hist = &HistoryDB{db: st.db}
	if err := st.hist.init(); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) History() dao.HistoryRepository {
	return s.hist
}

func (s *store) Close() error {
	return s.db.Close()
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
