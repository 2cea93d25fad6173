package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/google/uuid"

	"github.com/dekarrin/rpal/server/dao"
)

type stubUserRepo struct {
	users map[uuid.UUID]dao.User
}

func (s stubUserRepo) Create(ctx context.Context, u dao.User) (dao.User, error) { return u, nil }
func (s stubUserRepo) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	return dao.User{}, dao.ErrNotFound
}
func (s stubUserRepo) GetAll(ctx context.Context) ([]dao.User, error) { return nil, nil }
func (s stubUserRepo) Update(ctx context.Context, id uuid.UUID, u dao.User) (dao.User, error) {
	return u, nil
}
func (s stubUserRepo) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	return dao.User{}, nil
}
func (s stubUserRepo) Close() error { return nil }
func (s stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, ok := s.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return u, nil
}

func TestGenerateAndValidate(t *testing.T) {
	secret := []byte("super-secret-value")
	user := dao.User{ID: uuid.New(), Username: "alice", Password: "hash1"}
	db := stubUserRepo{users: map[uuid.UUID]dao.User{user.ID: user}}

	tok, err := Generate(secret, user)
	if !assert.NoError(t, err) {
		return
	}
	assert.NotEmpty(t, tok)

	validated, err := Validate(context.Background(), tok, secret, db)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, user.ID, validated.ID)
}

func TestValidate_rejectsTokenAfterLogout(t *testing.T) {
	secret := []byte("super-secret-value")
	user := dao.User{ID: uuid.New(), Username: "bob", Password: "hash2"}
	db := stubUserRepo{users: map[uuid.UUID]dao.User{user.ID: user}}

	tok, err := Generate(secret, user)
	if !assert.NoError(t, err) {
		return
	}

	loggedOut := user
	loggedOut.LastLogoutTime = time.Now()
	db.users[user.ID] = loggedOut

	_, err = Validate(context.Background(), tok, secret, db)
	assert.Error(t, err)
}

func TestValidate_rejectsWrongSecret(t *testing.T) {
	user := dao.User{ID: uuid.New(), Username: "carol", Password: "hash3"}
	db := stubUserRepo{users: map[uuid.UUID]dao.User{user.ID: user}}

	tok, err := Generate([]byte("secret-one"), user)
	if !assert.NoError(t, err) {
		return
	}

	_, err = Validate(context.Background(), tok, []byte("secret-two"), db)
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name      string
		header    string
		expectTok string
		expectErr bool
	}{
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"missing header", "", "", true},
		{"wrong scheme", "Basic abc123", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			tok, err := Get(req)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tc.expectTok, tok)
		})
	}
}
