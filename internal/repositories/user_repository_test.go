package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "user-profile-api/internal/errors"
	"user-profile-api/internal/models"
	"user-profile-api/internal/transformers"
)

func profile(t *testing.T, body map[string]interface{}) *models.ProfileUpdate {
	t.Helper()
	update, err := transformers.NewProfileTransformer(nil).ForUpsert(body)
	require.NoError(t, err)
	return update
}

func sparse(t *testing.T, body map[string]interface{}) *models.ProfileUpdate {
	t.Helper()
	update, err := transformers.NewProfileTransformer(nil).ForUpdate(body)
	require.NoError(t, err)
	return update
}

func addresses(cities ...string) []interface{} {
	out := make([]interface{}, 0, len(cities))
	for _, c := range cities {
		out = append(out, map[string]interface{}{"city": c})
	}
	return out
}

func cities(u *models.User) []string {
	out := make([]string, 0, len(u.Addresses))
	for _, a := range u.Addresses {
		out = append(out, a.City)
	}
	return out
}

func TestUserRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	created, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{
		"email":     "a@x.io",
		"name":      "Ann",
		"height":    "180",
		"allergies": []interface{}{"nuts"},
		"addresses": addresses("Pune", "Goa"),
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.SupabaseUID)
	assert.Equal(t, "Ann", *created.Name)
	assert.Equal(t, 180, *created.Height)
	assert.Equal(t, models.StringList{"nuts"}, created.Allergies)
	assert.Equal(t, models.StringList{}, created.Medications)
	assert.ElementsMatch(t, []string{"Pune", "Goa"}, cities(created))
	for _, a := range created.Addresses {
		assert.Equal(t, created.ID, a.UserID)
		assert.False(t, a.IsDefault)
	}

	t.Run("second post keeps identity and merges", func(t *testing.T) {
		again, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{
			"email": "a@x.io",
			"phone": "555",
		}))
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
		assert.True(t, created.CreatedAt.Equal(again.CreatedAt))
		assert.False(t, again.UpdatedAt.Before(created.UpdatedAt))
		assert.Equal(t, "555", *again.Phone)
		assert.Equal(t, "Ann", *again.Name)
		assert.ElementsMatch(t, []string{"Pune", "Goa"}, cities(again), "omitted addresses stay untouched")
	})

	t.Run("addresses are replaced wholesale", func(t *testing.T) {
		again, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{
			"email":     "a@x.io",
			"addresses": addresses("Delhi"),
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Delhi"}, cities(again))
	})

	t.Run("empty addresses clear the set", func(t *testing.T) {
		again, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{
			"email":     "a@x.io",
			"addresses": []interface{}{},
		}))
		require.NoError(t, err)
		assert.Empty(t, again.Addresses)
	})

	t.Run("email taken by another uid", func(t *testing.T) {
		_, err := repo.Upsert(ctx, "u2", profile(t, map[string]interface{}{"email": "a@x.io"}))
		assert.True(t, errors.Is(err, apperrors.ErrDuplicateUser), "got %v", err)

		_, err = repo.Find(ctx, models.Lookup{UID: "u2"})
		assert.True(t, errors.Is(err, apperrors.ErrUserNotFound), "failed create must not leave a row")
	})
}

func TestUserRepository_UpsertRequiresEmailOnCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{"name": "Ann"}))
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "got %v", err)
	assert.Equal(t, apperrors.MsgEmailRequired, appErr.UserMessage)

	_, err = repo.Find(ctx, models.Lookup{UID: "u1"})
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestUserRepository_UpsertRetriesLostInsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	// another writer creates the same uid after our lookup and before our insert
	competing := 0
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:competing_insert", func(tx *gorm.DB) {
		if tx.Statement.Table != "users" || competing > 0 {
			return
		}
		competing++
		now := time.Now().UTC()
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO users (id, supabase_uid, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			"competing-id", "u1", "other@x.io", now, now)
		require.NoError(t, err)
	}))

	user, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{"email": "a@x.io", "name": "Ann"}))
	require.NoError(t, err)
	assert.Equal(t, 1, competing)
	assert.Equal(t, "u1", user.SupabaseUID)
	assert.Equal(t, "a@x.io", user.Email)
	assert.Equal(t, "Ann", *user.Name)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("supabase_uid = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	t.Run("email conflicts still fail after the retry", func(t *testing.T) {
		_, err := repo.Upsert(ctx, "u2", profile(t, map[string]interface{}{"email": "a@x.io"}))
		assert.True(t, errors.Is(err, apperrors.ErrDuplicateUser), "got %v", err)
	})
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	created, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{
		"email":     "a@x.io",
		"name":      "Ann",
		"weight":    60,
		"addresses": addresses("Pune"),
	}))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, models.Lookup{Email: "a@x.io"}, sparse(t, map[string]interface{}{
		"email":  "a@x.io",
		"weight": "65",
	}))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 65, *updated.Weight)
	assert.Equal(t, "Ann", *updated.Name, "absent fields are left unchanged")
	assert.Equal(t, []string{"Pune"}, cities(updated))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	updated, err = repo.Update(ctx, models.Lookup{UID: "u1"}, sparse(t, map[string]interface{}{
		"name":      nil,
		"addresses": addresses("Goa", "Delhi"),
	}))
	require.NoError(t, err)
	assert.Nil(t, updated.Name)
	assert.ElementsMatch(t, []string{"Goa", "Delhi"}, cities(updated))

	_, err = repo.Update(ctx, models.Lookup{UID: "missing"}, sparse(t, map[string]interface{}{"name": "x"}))
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestUserRepository_FindAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	created, err := repo.Upsert(ctx, "u1", profile(t, map[string]interface{}{
		"email":     "a@x.io",
		"addresses": addresses("Pune", "Goa"),
	}))
	require.NoError(t, err)

	byEmail, err := repo.Find(ctx, models.Lookup{Email: "a@x.io"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Len(t, byEmail.Addresses, 2)

	byUID, err := repo.Find(ctx, models.Lookup{UID: "u1", Email: "other@x.io"})
	require.NoError(t, err, "uid wins over email")
	assert.Equal(t, created.ID, byUID.ID)

	deleted, err := repo.Delete(ctx, models.Lookup{UID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", deleted.SupabaseUID)

	var remaining int64
	require.NoError(t, db.Model(&models.Address{}).Where("user_id = ?", created.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err = repo.Find(ctx, models.Lookup{UID: "u1"})
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))

	_, err = repo.Delete(ctx, models.Lookup{UID: "u1"})
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))

	assert.NoError(t, repo.Ping(ctx))
}
