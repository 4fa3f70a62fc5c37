package repository

import (
	"context"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "points", "is_active", "created_at"}

func (r *repository) getUser(ctx context.Context, where sq.Sqlizer) (model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.User{}, mapTxErr(err)
	}
	defer rows.Close()

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	query, args, err := qb.Insert(usersTableName).
		Columns("name", "email", "password_hash", "role").
		Values(user.Name, user.Email, user.PasswordHash, user.Role).
		Suffix("returning id, points, is_active, created_at").
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.Points, &user.IsActive, &user.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return model.User{}, errs.ErrEmailTaken
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"id": id})
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"email": email})
}

func (r *repository) AddPoints(ctx context.Context, id uuid.UUID, points int) error {
	q := `
update users
set points = points + @points
where id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "points": points})
	if err != nil {
		return mapTxErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

func (r *repository) CountActiveUsers(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(usersTableName).Where(sq.Eq{"is_active": true}))
}
