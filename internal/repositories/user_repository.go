package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "user-profile-api/internal/errors"
	"user-profile-api/internal/models"
	"user-profile-api/pkg/database"
	"user-profile-api/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const usersTable = "users"

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, uid string, update *models.ProfileUpdate) (*models.User, error) {
	start := time.Now()
	result, inserted, err := r.upsert(ctx, uid, update)
	// a concurrent first write for the same uid can win the insert; the
	// second pass finds its row and merges into it
	if inserted && database.IsDuplicateKey(err) {
		result, _, err = r.upsert(ctx, uid, update)
	}
	metrics.ObserveDB("upsert", usersTable, start, err)
	if err != nil {
		return nil, r.translate(err, "upsert user "+uid)
	}
	return result, nil
}

// upsert runs one locked find-then-write pass. inserted reports whether the
// row was absent at lock time.
func (r *userRepository) upsert(ctx context.Context, uid string, update *models.ProfileUpdate) (result *models.User, inserted bool, err error) {
	err = r.transaction(ctx, func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var user models.User
		err := r.lockedFind(tx, "supabase_uid", uid, &user)
		switch {
		case database.IsNotFound(err):
			inserted = true
			user = models.User{SupabaseUID: uid, CreatedAt: now, UpdatedAt: now}
			update.ApplyTo(&user)
			if user.Email == "" {
				return apperrors.NewValidationError(apperrors.MsgEmailRequired)
			}
			if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := r.updateColumns(tx, &user, update, now); err != nil {
				return err
			}
		}

		if err := r.replaceAddresses(tx, user.ID, update); err != nil {
			return err
		}

		result, err = r.readBack(tx, user.ID)
		return err
	})
	return result, inserted, err
}

func (r *userRepository) Update(ctx context.Context, lookup models.Lookup, update *models.ProfileUpdate) (*models.User, error) {
	start := time.Now()
	var result *models.User
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		column, value := lookup.Column()

		var user models.User
		if err := r.lockedFind(tx, column, value, &user); err != nil {
			return err
		}
		if err := r.updateColumns(tx, &user, update, time.Now().UTC()); err != nil {
			return err
		}
		if err := r.replaceAddresses(tx, user.ID, update); err != nil {
			return err
		}

		var err error
		result, err = r.readBack(tx, user.ID)
		return err
	})
	metrics.ObserveDB("update", usersTable, start, err)
	if err != nil {
		return nil, r.translate(err, "update user by "+lookup.String())
	}
	return result, nil
}

func (r *userRepository) Find(ctx context.Context, lookup models.Lookup) (*models.User, error) {
	column, value := lookup.Column()

	start := time.Now()
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Addresses", orderAddresses).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		First(&user).Error
	metrics.ObserveDB("find", usersTable, start, err)
	if err != nil {
		return nil, r.translate(err, "find user by "+lookup.String())
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, lookup models.Lookup) (*models.User, error) {
	start := time.Now()
	var user models.User
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		column, value := lookup.Column()
		if err := r.lockedFind(tx, column, value, &user); err != nil {
			return err
		}
		// Foreign key cascades are not enabled on every connection; clear children explicitly.
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Address{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
	metrics.ObserveDB("delete", usersTable, start, err)
	if err != nil {
		return nil, r.translate(err, "delete user by "+lookup.String())
	}
	return &user, nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return database.Ping(ctx, r.db)
}

func (r *userRepository) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := r.db.WithContext(ctx)
	return db.Transaction(fn, database.TxOptions(db))
}

// lockedFind loads the target row with SELECT ... FOR UPDATE so concurrent
// writers to the same user serialize on it.
func (r *userRepository) lockedFind(tx *gorm.DB, column, value string, user *models.User) error {
	q := tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q.First(user).Error
}

func (r *userRepository) updateColumns(tx *gorm.DB, user *models.User, update *models.ProfileUpdate, now time.Time) error {
	cols := update.Columns()
	cols["updated_at"] = now
	return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(cols).Error
}

// replaceAddresses swaps the stored address set for the supplied one when
// the payload carried addresses.
func (r *userRepository) replaceAddresses(tx *gorm.DB, userID string, update *models.ProfileUpdate) error {
	if !update.ReplaceAddresses {
		return nil
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.Address{}).Error; err != nil {
		return err
	}
	if len(update.Addresses) == 0 {
		return nil
	}

	addresses := make([]models.Address, len(update.Addresses))
	for i, a := range update.Addresses {
		a.ID = ""
		a.UserID = userID
		addresses[i] = a
	}
	return tx.Create(&addresses).Error
}

func (r *userRepository) readBack(tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := tx.Preload("Addresses", orderAddresses).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) translate(err error, op string) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case database.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrUserNotFound)
	case database.IsDuplicateKey(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrDuplicateUser)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func orderAddresses(db *gorm.DB) *gorm.DB {
	return db.Order("created_at, id")
}
