package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/dekarrin/rpal/server/dao/inmem"
	"github.com/dekarrin/rpal/server/serr"
)

func newTestService() Service {
	return Service{DB: inmem.NewDatastore()}
}

func Test_Service_CreateUser(t *testing.T) {
	svc := newTestService()

	u, err := svc.CreateUser(context.Background(), "alice", "hunter2", dao.Normal)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "hunter2", u.Password, "password must not be stored in plaintext")
}

func Test_Service_CreateUser_duplicateUsername(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateUser(context.Background(), "alice", "hunter2", dao.Normal)
	if !assert.NoError(t, err) {
		return
	}

	_, err = svc.CreateUser(context.Background(), "alice", "different", dao.Normal)
	assert.ErrorIs(t, err, serr.ErrAlreadyExists)
}

func Test_Service_CreateUser_blankFields(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateUser(context.Background(), "", "hunter2", dao.Normal)
	assert.ErrorIs(t, err, serr.ErrBadArgument)

	_, err = svc.CreateUser(context.Background(), "alice", "", dao.Normal)
	assert.ErrorIs(t, err, serr.ErrBadArgument)
}

func Test_Service_GetUser(t *testing.T) {
	svc := newTestService()
	created, err := svc.CreateUser(context.Background(), "bob", "hunter2", dao.Admin)
	if !assert.NoError(t, err) {
		return
	}

	fetched, err := svc.GetUser(context.Background(), created.ID.String())
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, created.ID, fetched.ID)

	_, err = svc.GetUser(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, serr.ErrBadArgument)
}

func Test_Service_GetAllUsers(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateUser(context.Background(), "carol", "hunter2", dao.Normal)
	if !assert.NoError(t, err) {
		return
	}
	_, err = svc.CreateUser(context.Background(), "dave", "hunter2", dao.Normal)
	if !assert.NoError(t, err) {
		return
	}

	all, err := svc.GetAllUsers(context.Background())
	if !assert.NoError(t, err) {
		return
	}
	assert.Len(t, all, 2)
}
