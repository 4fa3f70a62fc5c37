package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store is the set of queries that can run either on the pool or inside a transaction.
type Store interface {
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	LockBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	SetSummary(ctx context.Context, id uuid.UUID, summary string) error
	DeactivateBook(ctx context.Context, id uuid.UUID) error
	TakeCopy(ctx context.Context, bookID uuid.UUID) (model.Book, error)
	PutCopy(ctx context.Context, bookID uuid.UUID) (model.Book, error)

	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	AddPoints(ctx context.Context, id uuid.UUID, points int) error

	CreateIssue(ctx context.Context, issue model.Issue) (model.Issue, error)
	HasOpenIssue(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	GetIssue(ctx context.Context, id uuid.UUID, forUpdate bool) (model.Issue, error)
	UpdateIssue(ctx context.Context, issue model.Issue) (model.Issue, error)
	ListIssues(ctx context.Context, filter model.IssueFilter) ([]model.IssueView, error)
	ClaimPointsAward(ctx context.Context, issueID uuid.UUID) (bool, error)

	CountActiveBooks(ctx context.Context) (int, error)
	CountActiveUsers(ctx context.Context) (int, error)
	CountOpenIssues(ctx context.Context, userID *uuid.UUID) (int, error)
}

type Repository interface {
	Store
	// WithTx runs fn in one transaction; any error from fn rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
	log  *zap.Logger
}

func NewRepository(pool *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	if pool == nil {
		return nil, errors.New("nil pool")
	}
	return &repository{
		pool: pool,
		db:   pool,
		log:  log.Named("repo"),
	}, nil
}

const (
	booksTableName  = `books`
	usersTableName  = `users`
	issuesTableName = `issues`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if r.inTx {
		return fn(r)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapTxErr(errors.Wrap(err, "begin tx"))
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Warn("tx rollback", zap.Error(rbErr))
		}
	}()

	if err = fn(&repository{pool: r.pool, db: tx, inTx: true, log: r.log}); err != nil {
		return mapTxErr(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return mapTxErr(errors.Wrap(err, "commit"))
	}
	return nil
}

// mapTxErr marks errors after which the whole transaction may be retried.
func mapTxErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return fmt.Errorf("%w: %s", errs.ErrTxConflict, pgErr.Message)
		}
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		(constraint == "" || pgErr.ConstraintName == constraint)
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *repository) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapTxErr(err)
	}
	return n, nil
}
