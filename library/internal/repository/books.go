package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/smart-library/library/internal/errs"
	"github.com/Astemirdum/smart-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var bookColumns = []string{
	"id", "title", "author", "category", "description", "ai_summary", "cover_image",
	"total_copies", "available_copies", "is_active", "created_at", "updated_at",
}

var returningBook = "returning " + strings.Join(bookColumns, ", ")

func (r *repository) collectBook(ctx context.Context, query string, args ...any) (model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, mapTxErr(err)
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrBookNotFound
		}
		if isCheckViolation(err) {
			return model.Book{}, errs.ErrCopies
		}
		return model.Book{}, mapTxErr(err)
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "category", "description", "ai_summary", "cover_image", "total_copies", "available_copies").
		Values(book.Title, book.Author, book.Category, book.Description, book.AISummary, book.CoverImage, book.TotalCopies, book.AvailableCopies).
		Suffix(returningBook).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	created, err := r.collectBook(ctx, query, args...)
	if err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, err
	}
	return created, nil
}

// GetBook returns the book whether or not it is active.
func (r *repository) GetBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.collectBook(ctx, query, args...)
}

// LockBook reads the book and holds its row lock until the transaction ends.
func (r *repository) LockBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.collectBook(ctx, query, args...)
}

func (r *repository) ListBooks(ctx context.Context, f model.BookFilter) (model.ListBooks, error) {
	q := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"is_active": true})

	if f.Search != "" {
		pattern := containsPattern(f.Search)
		q = q.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"author": pattern},
			sq.ILike{"category": pattern},
		})
	}
	if f.Category != "" {
		q = q.Where(sq.Eq{"category": f.Category})
	}
	if f.Available {
		q = q.Where(sq.Gt{"available_copies": 0})
	}
	q = q.OrderBy("created_at desc")
	if f.Page > 0 && f.Size > 0 {
		q = q.Limit(uint64(f.Size)).Offset(uint64((f.Page - 1) * f.Size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListBooks{}, err
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return model.ListBooks{}, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return model.ListBooks{
		Paging: model.Paging{
			Page:          f.Page,
			PageSize:      f.Size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		SetMap(map[string]any{
			"title":            book.Title,
			"author":           book.Author,
			"category":         book.Category,
			"description":      book.Description,
			"ai_summary":       book.AISummary,
			"cover_image":      book.CoverImage,
			"total_copies":     book.TotalCopies,
			"available_copies": book.AvailableCopies,
			"updated_at":       sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": book.ID, "is_active": true}).
		Suffix(returningBook).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.collectBook(ctx, query, args...)
}

func (r *repository) SetSummary(ctx context.Context, id uuid.UUID, summary string) error {
	q := `update books set ai_summary = @summary, updated_at = now() where id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "summary": summary})
	if err != nil {
		return mapTxErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}

func (r *repository) DeactivateBook(ctx context.Context, id uuid.UUID) error {
	q := `update books set is_active = false, updated_at = now() where id = @id and is_active`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return mapTxErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}

// TakeCopy decrements available_copies only while it is positive, in one statement.
func (r *repository) TakeCopy(ctx context.Context, bookID uuid.UUID) (model.Book, error) {
	q := `
update books
    set available_copies = available_copies - 1, updated_at = now()
where id = @id and is_active and available_copies > 0
` + returningBook
	book, err := r.collectBook(ctx, q, pgx.NamedArgs{"id": bookID})
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, errs.ErrBookNotFound) {
		return model.Book{}, err
	}

	current, err := r.GetBook(ctx, bookID)
	if err != nil {
		return model.Book{}, err
	}
	if !current.IsActive {
		return model.Book{}, errs.ErrBookNotFound
	}
	return model.Book{}, errs.ErrNoCopies
}

// PutCopy increments available_copies, never past total_copies.
func (r *repository) PutCopy(ctx context.Context, bookID uuid.UUID) (model.Book, error) {
	q := `
update books
    set available_copies = least(available_copies + 1, total_copies), updated_at = now()
where id = @id
` + returningBook
	return r.collectBook(ctx, q, pgx.NamedArgs{"id": bookID})
}

func (r *repository) CountActiveBooks(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(booksTableName).Where(sq.Eq{"is_active": true}))
}
