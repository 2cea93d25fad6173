package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rpal/server/dao"
	"github.com/dekarrin/rpal/server/serr"
)

func Test_Service_Login(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateUser(context.Background(), "alice", "hunter2", dao.Normal)
	if !assert.NoError(t, err) {
		return
	}

	u, err := svc.Login(context.Background(), "alice", "hunter2")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.LastLoginTime.IsZero())
}

func Test_Service_Login_wrongPassword(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateUser(context.Background(), "alice", "hunter2", dao.Normal)
	if !assert.NoError(t, err) {
		return
	}

	_, err = svc.Login(context.Background(), "alice", "wrongpass")
	assert.ErrorIs(t, err, serr.ErrBadCredentials)
}

func Test_Service_Login_noSuchUser(t *testing.T) {
	svc := newTestService()

	_, err := svc.Login(context.Background(), "nobody", "hunter2")
	assert.ErrorIs(t, err, serr.ErrBadCredentials)
}

func Test_Service_Logout(t *testing.T) {
	svc := newTestService()
	created, err := svc.CreateUser(context.Background(), "alice", "hunter2", dao.Normal)
	if !assert.NoError(t, err) {
		return
	}

	updated, err := svc.Logout(context.Background(), created.ID)
	if !assert.NoError(t, err) {
		return
	}
	assert.False(t, updated.LastLogoutTime.IsZero())
}
