package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/google/uuid"
)

type UsersDB struct {
	db *sql.DB
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		created INTEGER NOT NULL,
		last_login_time INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *UsersDB) Create(ctx context.Context, user dao.User) (dao.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password, role, created, last_login_time, last_logout_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newUUID.String(), user.Username, user.Password, user.Role.String(), now.Unix(), now.Unix(), now.Unix(),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *UsersDB) GetAll(ctx context.Context) ([]dao.User, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, username, password, role, created, last_login_time, last_logout_time FROM users;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return all, err
		}
		all = append(all, user)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *UsersDB) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users SET username=?, password=?, role=?, last_login_time=?, last_logout_time=? WHERE id=?;`,
		user.Username, user.Password, user.Role.String(), user.LastLoginTime.Unix(), user.LastLogoutTime.Unix(), id.String(),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.User{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, id)
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, username, password, role, created, last_login_time, last_logout_time FROM users WHERE username = ?;`,
		username,
	)
	return scanUser(row)
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, username, password, role, created, last_login_time, last_logout_time FROM users WHERE id = ?;`,
		id.String(),
	)
	return scanUser(row)
}

func (repo *UsersDB) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *UsersDB) Close() error {
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (dao.User, error) {
	var user dao.User
	var id, role string
	var created, lastLogin, lastLogout int64

	err := row.Scan(&id, &user.Username, &user.Password, &role, &created, &lastLogin, &lastLogout)
	if err != nil {
		return user, wrapDBError(err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return user, fmt.Errorf("stored UUID %q is invalid", id)
	}
	user.Role, err = dao.ParseRole(role)
	if err != nil {
		return user, fmt.Errorf("stored role %q is invalid: %w", role, err)
	}
	user.Created = time.Unix(created, 0)
	user.LastLoginTime = time.Unix(lastLogin, 0)
	user.LastLogoutTime = time.Unix(lastLogout, 0)

	return user, nil
}
