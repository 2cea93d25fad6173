// Package inmem provides an in-memory implementation of dao.Store, useful
// for tests and for running the eval server without a configured storage
// directory.
package inmem

import (
	"fmt"

	"github.com/dekarrin/rpal/server/dao"
)

type store struct {
	users *UsersRepository
	hist  *HistoryRepository
}

// NewDatastore returns a dao.Store backed entirely by in-process maps. State
// does not survive process restart.
func NewDatastore() dao.Store {
	return &store{
		users: NewUsersRepository(),
		hist:  NewHistoryRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) History() dao.HistoryRepository {
	return s.hist
}

func (s *store) Close() error {
	var err error

	if uErr := s.users.Close(); uErr != nil {
		err = uErr
	}
	if hErr := s.hist.Close(); hErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, hErr)
		} else {
			err = hErr
		}
	}

	return err
}
