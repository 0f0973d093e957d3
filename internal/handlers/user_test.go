package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "user-profile-api/internal/errors"
	"user-profile-api/internal/middleware"
	"user-profile-api/internal/models"
	"user-profile-api/internal/repositories"
	"user-profile-api/internal/services"
	"user-profile-api/internal/transformers"
	"user-profile-api/internal/validators"
	"user-profile-api/pkg/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "users.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	svc := services.NewUserService(
		repositories.NewUserRepository(db),
		repositories.NewUserCache(nil),
		transformers.NewProfileTransformer(nil),
		validators.NewUserValidator(),
		0,
	)
	h := NewUserHandler(svc)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/health", NewHealthHandler(svc).Health)
	users := r.Group("/api/users")
	users.POST("", h.CreateOrUpdateUser)
	users.GET("", h.GetUser)
	users.PUT("", h.UpdateUser)
	users.DELETE("", h.DeleteUser)

	return &testServer{router: r, db: db}
}

type envelope struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Details *string      `json:"details"`
}

func (s *testServer) do(t *testing.T, method, rawBody string, query url.Values) (int, envelope) {
	t.Helper()
	target := "/api/users"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(method, target, strings.NewReader(rawBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *testServer) send(t *testing.T, method string, body map[string]interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	return s.do(t, method, buf.String(), nil)
}

func (s *testServer) get(t *testing.T, method string, query url.Values) (int, envelope) {
	t.Helper()
	return s.do(t, method, "", query)
}

func (s *testServer) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func addressList(cities ...string) []interface{} {
	out := make([]interface{}, 0, len(cities))
	for _, c := range cities {
		out = append(out, map[string]interface{}{"city": c, "type": "home"})
	}
	return out
}

func TestCreateOrUpdateUser(t *testing.T) {
	s := newTestServer(t)

	status, first := s.send(t, http.MethodPost, map[string]interface{}{
		"supabaseUid": "u1",
		"email":       "a@x.io",
		"name":        "Ann",
		"height":      "abc",
		"birthDate":   "1990-05-01",
		"allergies":   "pollen",
		"demographicData": map[string]interface{}{
			"gender": "F",
		},
		"medicalData": map[string]interface{}{
			"bloodGroup":      "O+",
			"chronicDiseases": []interface{}{"asthma"},
		},
		"addresses": []interface{}{
			map[string]interface{}{"city": "Pune", "latitude": "18.52", "isDefault": true},
			map[string]interface{}{"city": "Goa"},
		},
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, first.Success)
	require.NotNil(t, first.User)

	u := first.User
	assert.Equal(t, "u1", u.SupabaseUID)
	assert.Nil(t, u.Height, "unparseable height is stored as null")
	require.NotNil(t, u.BirthDate)
	assert.Equal(t, "1990-05-01", u.BirthDate.Format("2006-01-02"))
	assert.Equal(t, "F", *u.Gender)
	assert.Equal(t, "O+", *u.BloodGroup)
	assert.Equal(t, models.StringList{}, u.Allergies)
	assert.Equal(t, models.StringList{"asthma"}, u.ChronicDiseases)
	require.Len(t, u.Addresses, 2)
	defaults := 0
	for _, a := range u.Addresses {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	t.Run("same uid updates the same user", func(t *testing.T) {
		status, second := s.send(t, http.MethodPost, map[string]interface{}{
			"supabaseUid": "u1",
			"email":       "a@x.io",
			"occupation":  "pilot",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, first.User.ID, second.User.ID)
		assert.Equal(t, "pilot", *second.User.Occupation)
		assert.Len(t, second.User.Addresses, 2, "omitted addresses are left unchanged")
		assert.EqualValues(t, 1, s.count(t, &models.User{}))
	})

	t.Run("empty addresses clear them", func(t *testing.T) {
		status, env := s.send(t, http.MethodPost, map[string]interface{}{
			"supabaseUid": "u1",
			"email":       "a@x.io",
			"addresses":   []interface{}{},
		})
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, env.User.Addresses)
		assert.Zero(t, s.count(t, &models.Address{}))
	})

	t.Run("email conflict", func(t *testing.T) {
		status, env := s.send(t, http.MethodPost, map[string]interface{}{
			"supabaseUid": "u2",
			"email":       "a@x.io",
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, apperrors.MsgConflict, env.Error)
		assert.Nil(t, env.Details)
	})
}

func TestCreateOrUpdateUser_BlankGroupEmail(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, `{"supabaseUid":"u1","email":"a@x.io","demographicData":{"email":null}}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a@x.io", env.User.Email)

	var stored models.User
	require.NoError(t, s.db.Where("supabase_uid = ?", "u1").First(&stored).Error)
	assert.Equal(t, "a@x.io", stored.Email)

	status, env = s.do(t, http.MethodPost, `{"supabaseUid":"u2","email":"b@x.io","lifestyleData":{"email":""}}`, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "b@x.io", env.User.Email)
	assert.EqualValues(t, 2, s.count(t, &models.User{}))
}

func TestCreateOrUpdateUser_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"email":`, apperrors.MsgInvalidBody},
		{"empty body", ``, apperrors.MsgInvalidBody},
		{"array body", `[1,2]`, apperrors.MsgInvalidBody},
		{"missing email", `{"supabaseUid":"u1"}`, apperrors.MsgEmailRequired},
		{"missing uid", `{"email":"a@x.io"}`, apperrors.MsgUIDRequired},
		{"bad addresses", `{"email":"a@x.io","supabaseUid":"u1","addresses":"home"}`, apperrors.MsgAddressesInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, http.MethodPost, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.want, env.Error)
			assert.False(t, env.Success)
		})
	}
	assert.Zero(t, s.count(t, &models.User{}), "validation failures never write")
}

func TestGetUser(t *testing.T) {
	s := newTestServer(t)
	status, created := s.send(t, http.MethodPost, map[string]interface{}{
		"supabaseUid": "u1",
		"email":       "a@x.io",
		"addresses":   addressList("Pune"),
	})
	require.Equal(t, http.StatusOK, status)

	status, env := s.get(t, http.MethodGet, url.Values{"uid": {"u1"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.User.ID, env.User.ID)
	assert.Len(t, env.User.Addresses, 1)

	status, env = s.get(t, http.MethodGet, url.Values{"email": {"a@x.io"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.User.ID, env.User.ID)

	status, env = s.get(t, http.MethodGet, url.Values{"uid": {"u1"}, "email": {"nobody@x.io"}})
	require.Equal(t, http.StatusOK, status, "uid is preferred over email")
	assert.Equal(t, created.User.ID, env.User.ID)

	status, env = s.get(t, http.MethodGet, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.MsgIdentifierGet, env.Error)

	status, env = s.get(t, http.MethodGet, url.Values{"uid": {"missing"}})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.MsgUserNotFound, env.Error)
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)
	status, created := s.send(t, http.MethodPost, map[string]interface{}{
		"supabaseUid": "u1",
		"email":       "a@x.io",
		"name":        "Ann",
		"weight":      "60",
		"addresses":   addressList("Pune", "Goa"),
	})
	require.Equal(t, http.StatusOK, status)

	status, env := s.send(t, http.MethodPut, map[string]interface{}{
		"email":         "a@x.io",
		"lifestyleData": map[string]interface{}{"dietHabit": "vegan"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.User.ID, env.User.ID)
	assert.Equal(t, "vegan", *env.User.DietHabit)
	assert.Equal(t, "Ann", *env.User.Name, "sparse update keeps absent fields")
	assert.Equal(t, 60, *env.User.Weight)
	assert.Len(t, env.User.Addresses, 2)
	assert.True(t, created.User.CreatedAt.Equal(env.User.CreatedAt))

	status, env = s.send(t, http.MethodPut, map[string]interface{}{
		"supabaseUid": "u1",
		"email":       "changed@x.io",
		"addresses":   addressList("Delhi"),
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a@x.io", env.User.Email, "identifiers are never mutated")
	require.Len(t, env.User.Addresses, 1)
	assert.Equal(t, "Delhi", env.User.Addresses[0].City)

	status, env = s.send(t, http.MethodPut, map[string]interface{}{"supabaseUid": "u1", "addresses": []interface{}{}})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, env.User.Addresses)

	status, env = s.send(t, http.MethodPut, map[string]interface{}{"supabaseUid": "missing", "name": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.MsgUserNotFoundPut, env.Error)

	status, env = s.send(t, http.MethodPut, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.MsgIdentifierPut, env.Error)

	status, env = s.do(t, http.MethodPut, "{", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.MsgInvalidBodyPut, env.Error)
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.send(t, http.MethodPost, map[string]interface{}{
		"supabaseUid": "u1",
		"email":       "a@x.io",
		"addresses":   addressList("Pune", "Goa"),
	})
	require.Equal(t, http.StatusOK, status)

	status, env := s.get(t, http.MethodDelete, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.MsgIdentifierDelete, env.Error)

	status, env = s.get(t, http.MethodDelete, url.Values{"email": {"a@x.io"}})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, apperrors.MsgUserDeleted, env.Message)
	assert.Zero(t, s.count(t, &models.User{}))
	assert.Zero(t, s.count(t, &models.Address{}))

	status, env = s.get(t, http.MethodGet, url.Values{"uid": {"u1"}})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = s.get(t, http.MethodDelete, url.Values{"uid": {"u1"}})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.MsgUserNotFoundDelete, env.Error)
}

func TestInternalErrorCarriesDetails(t *testing.T) {
	s := newTestServer(t)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, env := s.get(t, http.MethodGet, url.Values{"uid": {"u1"}})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.MsgInternalGet, env.Error)
	require.NotNil(t, env.Details)
	assert.NotEmpty(t, *env.Details)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
