package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByConfirmationToken(ctx context.Context, token string) (*User, error)
	UpdateProfile(ctx context.Context, u *User) error
	UpdateClasses(ctx context.Context, id int, classes []Class) (*User, error)
	ConfirmEmail(ctx context.Context, id int) error
	FindClassmates(ctx context.Context, excludeID int, courseID string, gender string) ([]User, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(u).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*User, error) {
	start := time.Now()
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("email = ?", email).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByConfirmationToken(ctx context.Context, token string) (*User, error) {
	start := time.Now()
	u := new(User)
	err := r.db.NewSelect().
		Model(u).
		Where("email_confirmation_token = ?", token).
		Where("email_confirmation_expires > ?", time.Now()).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) UpdateProfile(ctx context.Context, u *User) error {
	start := time.Now()
	u.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(u).
		Column("name", "phone_number", "major", "year", "gender_preference", "updated_at").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateClasses(ctx context.Context, id int, classes []Class) (*User, error) {
	start := time.Now()
	u := &User{ID: id, Classes: classes, UpdatedAt: time.Now()}
	result, err := r.db.NewUpdate().
		Model(u).
		Column("classes", "updated_at").
		WherePK().
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *repository) ConfirmEmail(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_email_confirmed = TRUE").
		Set("email_confirmation_token = NULL").
		Set("email_confirmation_expires = NULL").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindClassmates returns confirmed users other than excludeID enrolled in
// the given canonical course identifier. When gender is non-empty the result
// is restricted to that gender (the requester-side preference pre-filter);
// the candidate-side preference filter is applied by the caller.
func (r *repository) FindClassmates(ctx context.Context, excludeID int, courseID string, gender string) ([]User, error) {
	filter, err := json.Marshal([]map[string]string{{"courseId": courseID}})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var users []User
	q := r.db.NewSelect().
		Model(&users).
		Where("id != ?", excludeID).
		Where("is_email_confirmed = TRUE").
		Where("classes @> ?", string(filter))
	if gender != "" {
		q = q.Where("gender = ?", gender)
	}
	err = q.Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return users, nil
}
