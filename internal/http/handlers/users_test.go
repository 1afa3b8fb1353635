package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/http/handlers"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// Keep Gin quiet during tests.

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.UserService interface.

type fakeUserService struct {
	createFn func(ctx context.Context, username, password string, scope []string) (int64, error)
	readFn   func(ctx context.Context, id int64) (users.View, error)
	updateFn func(ctx context.Context, id int64, input users.UpdateInput) (users.View, error)
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context, page, limit int) (users.Page, error)
}

func (f *fakeUserService) Create(ctx context.Context, username, password string, scope []string) (int64, error) {
	if f.createFn != nil {
		return f.createFn(ctx, username, password, scope)
	}
	return 1, nil
}

func (f *fakeUserService) Read(ctx context.Context, id int64) (users.View, error) {
	if f.readFn != nil {
		return f.readFn(ctx, id)
	}
	return users.View{}, nil
}

func (f *fakeUserService) Update(ctx context.Context, id int64, input users.UpdateInput) (users.View, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, input)
	}
	return users.View{}, nil
}

func (f *fakeUserService) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeUserService) List(ctx context.Context, page, limit int) (users.Page, error) {
	if f.listFn != nil {
		return f.listFn(ctx, page, limit)
	}
	return users.Page{}, nil
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestCreateUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*fakeUserService)
		wantStatus int
		wantInBody string
	}{
		{
			name: "success",
			body: `{"username": "new-user", "password": "some-passsss", "scope": ["user"]}`,
			setup: func(f *fakeUserService) {
				f.createFn = func(ctx context.Context, username, password string, scope []string) (int64, error) {
					return 12, nil
				}
			},
			wantStatus: http.StatusCreated,
			wantInBody: "Created user with id 12",
		},
		{
			name: "scope defaults to user when omitted",
			body: `{"username": "new-user", "password": "some-passsss"}`,
			setup: func(f *fakeUserService) {
				f.createFn = func(ctx context.Context, username, password string, scope []string) (int64, error) {
					if len(scope) != 1 || scope[0] != users.ScopeUser {
						return 0, errors.New("expected defaulted scope")
					}
					return 13, nil
				}
			},
			wantStatus: http.StatusCreated,
			wantInBody: "Created user with id 13",
		},
		{
			name:       "username too short",
			body:       `{"username": "ab", "password": "some-passsss"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown scope value",
			body:       `{"username": "new-user", "password": "some-passsss", "scope": ["root"]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			body: `{"username": "taken", "password": "some-passsss"}`,
			setup: func(f *fakeUserService) {
				f.createFn = func(ctx context.Context, username, password string, scope []string) (int64, error) {
					return 0, users.ErrUsernameTaken
				}
			},
			wantStatus: http.StatusBadRequest,
			wantInBody: "Username already taken",
		},
		{
			name: "storage fault",
			body: `{"username": "new-user", "password": "some-passsss"}`,
			setup: func(f *fakeUserService) {
				f.createFn = func(ctx context.Context, username, password string, scope []string) (int64, error) {
					return 0, errors.New("db down")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUserService{}

			if tt.setup != nil {
				tt.setup(svc)
			}

			h := handlers.NewUsersHandler(svc)
			r := setupRouter(http.MethodPost, "/api/users", h.CreateUser)

			w := doJSON(t, r, http.MethodPost, "/api/users", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, "body=%s", w.Body.String())

			if tt.wantInBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestReadUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(*fakeUserService)
		wantStatus int
		wantInBody string
	}{
		{
			name: "found",
			path: "/api/users/3",
			setup: func(f *fakeUserService) {
				f.readFn = func(ctx context.Context, id int64) (users.View, error) {
					return users.View{ID: id, Username: "alice", Scope: []string{"user"}}, nil
				}
			},
			wantStatus: http.StatusOK,
			wantInBody: `"username":"alice"`,
		},
		{
			name: "missing",
			path: "/api/users/404",
			setup: func(f *fakeUserService) {
				f.readFn = func(ctx context.Context, id int64) (users.View, error) {
					return users.View{}, users.ErrNotFound
				}
			},
			wantStatus: http.StatusNotFound,
			wantInBody: "User not found",
		},
		{
			name:       "non numeric id",
			path:       "/api/users/abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUserService{}

			if tt.setup != nil {
				tt.setup(svc)
			}

			h := handlers.NewUsersHandler(svc)
			r := setupRouter(http.MethodGet, "/api/users/:id", h.ReadUser)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, "body=%s", w.Body.String())

			if tt.wantInBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestReadUserNeverExposesHash(t *testing.T) {
	svc := &fakeUserService{
		readFn: func(ctx context.Context, id int64) (users.View, error) {
			return users.View{ID: id, Username: "alice", Scope: []string{"user"}}, nil
		},
	}

	h := handlers.NewUsersHandler(svc)
	r := setupRouter(http.MethodGet, "/api/users/:id", h.ReadUser)

	req := httptest.NewRequest(http.MethodGet, "/api/users/3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUpdateUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*fakeUserService)
		wantStatus int
		wantInBody string
	}{
		{
			name: "scope only",
			body: `{"scope": ["admin"]}`,
			setup: func(f *fakeUserService) {
				f.updateFn = func(ctx context.Context, id int64, input users.UpdateInput) (users.View, error) {
					if input.Password != nil {
						return users.View{}, errors.New("password should be absent")
					}
					return users.View{ID: id, Username: "alice", Scope: input.Scope}, nil
				}
			},
			wantStatus: http.StatusOK,
			wantInBody: "Updated user 3",
		},
		{
			name: "password present",
			body: `{"password": "brand-new-pass"}`,
			setup: func(f *fakeUserService) {
				f.updateFn = func(ctx context.Context, id int64, input users.UpdateInput) (users.View, error) {
					if input.Password == nil {
						return users.View{}, errors.New("password should be present")
					}
					return users.View{ID: id, Username: "alice", Scope: []string{"user"}}, nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "password too short",
			body:       `{"password": "ab"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing user",
			body: `{"scope": ["admin"]}`,
			setup: func(f *fakeUserService) {
				f.updateFn = func(ctx context.Context, id int64, input users.UpdateInput) (users.View, error) {
					return users.View{}, users.ErrNotFound
				}
			},
			wantStatus: http.StatusNotFound,
			wantInBody: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUserService{}

			if tt.setup != nil {
				tt.setup(svc)
			}

			h := handlers.NewUsersHandler(svc)
			r := setupRouter(http.MethodPut, "/api/users/:id", h.UpdateUser)

			w := doJSON(t, r, http.MethodPut, "/api/users/3", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, "body=%s", w.Body.String())

			if tt.wantInBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestDeleteUserHandler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &fakeUserService{}
		h := handlers.NewUsersHandler(svc)
		r := setupRouter(http.MethodDelete, "/api/users/:id", h.DeleteUser)

		req := httptest.NewRequest(http.MethodDelete, "/api/users/3", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("missing", func(t *testing.T) {
		svc := &fakeUserService{
			deleteFn: func(ctx context.Context, id int64) error {
				return users.ErrNotFound
			},
		}
		h := handlers.NewUsersHandler(svc)
		r := setupRouter(http.MethodDelete, "/api/users/:id", h.DeleteUser)

		req := httptest.NewRequest(http.MethodDelete, "/api/users/3", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListUsersHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantPage   int
		wantLimit  int
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK, wantPage: 1, wantLimit: 10},
		{name: "explicit", query: "?page=3&limit=25", wantStatus: http.StatusOK, wantPage: 3, wantLimit: 25},
		{name: "page below one", query: "?page=0", wantStatus: http.StatusBadRequest},
		{name: "limit above cap", query: "?limit=101", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPage, gotLimit int

			svc := &fakeUserService{
				listFn: func(ctx context.Context, page, limit int) (users.Page, error) {
					gotPage, gotLimit = page, limit
					return users.Page{
						Pagination: users.Pagination{TotalItems: 0, Page: page, Limit: limit},
						Data:       []users.View{},
					}, nil
				},
			}

			h := handlers.NewUsersHandler(svc)
			r := setupRouter(http.MethodGet, "/api/users", h.ListUsers)

			req := httptest.NewRequest(http.MethodGet, "/api/users"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, "body=%s", w.Body.String())

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantPage, gotPage)
				assert.Equal(t, tt.wantLimit, gotLimit)

				var page users.Page
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
				assert.Equal(t, tt.wantPage, page.Pagination.Page)
			}
		})
	}
}
