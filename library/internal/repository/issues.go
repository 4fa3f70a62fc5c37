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

const openIssueConstraint = "issues_open_uniq"

var issueColumns = []string{
	"id", "user_id", "book_id", "issue_date", "due_date", "return_date", "status",
	"fine_amount", "penalty_amount", "penalty_paid", "created_at", "updated_at",
}

var openStatuses = []model.Status{model.StatusIssued, model.StatusOverdue}

func (r *repository) collectIssue(ctx context.Context, query string, args ...any) (model.Issue, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Issue{}, mapTxErr(err)
	}
	defer rows.Close()

	issue, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Issue])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Issue{}, errs.ErrIssueNotFound
		}
		if isUniqueViolation(err, openIssueConstraint) {
			return model.Issue{}, errs.ErrAlreadyIssued
		}
		return model.Issue{}, mapTxErr(err)
	}
	return issue, nil
}

func (r *repository) CreateIssue(ctx context.Context, issue model.Issue) (model.Issue, error) {
	query, args, err := qb.Insert(issuesTableName).
		Columns("user_id", "book_id", "issue_date", "due_date", "status").
		Values(issue.UserID, issue.BookID, issue.IssueDate, issue.DueDate, issue.Status).
		Suffix("returning " + strings.Join(issueColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Issue{}, err
	}
	created, err := r.collectIssue(ctx, query, args...)
	if err != nil && !errors.Is(err, errs.ErrAlreadyIssued) {
		r.log.Error("CreateIssue", zap.String("q", query), zap.Any("args", args), zap.Error(err))
	}
	return created, err
}

func (r *repository) HasOpenIssue(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	n, err := r.count(ctx, qb.Select("count(*)").
		From(issuesTableName).
		Where(sq.Eq{"user_id": userID, "book_id": bookID, "status": openStatuses}))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) GetIssue(ctx context.Context, id uuid.UUID, forUpdate bool) (model.Issue, error) {
	q := qb.Select(issueColumns...).
		From(issuesTableName).
		Where(sq.Eq{"id": id}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("for update")
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.Issue{}, err
	}
	return r.collectIssue(ctx, query, args...)
}

// UpdateIssue writes the mutable part of an issue: return data and penalty state.
func (r *repository) UpdateIssue(ctx context.Context, issue model.Issue) (model.Issue, error) {
	query, args, err := qb.Update(issuesTableName).
		SetMap(map[string]any{
			"return_date":    issue.ReturnDate,
			"status":         issue.Status,
			"penalty_amount": issue.PenaltyAmount,
			"penalty_paid":   issue.PenaltyPaid,
			"updated_at":     sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": issue.ID}).
		Suffix("returning " + strings.Join(issueColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Issue{}, err
	}
	return r.collectIssue(ctx, query, args...)
}

type issueViewRow struct {
	model.Issue
	BookTitle      string `db:"book_title"`
	BookAuthor     string `db:"book_author"`
	BookCategory   string `db:"book_category"`
	BookCoverImage string `db:"book_cover_image"`
	UserName       string `db:"user_name"`
	UserEmail      string `db:"user_email"`
}

func (row issueViewRow) view() model.IssueView {
	return model.IssueView{
		Issue: row.Issue,
		Book: model.BookRef{
			ID:         row.BookID,
			Title:      row.BookTitle,
			Author:     row.BookAuthor,
			Category:   row.BookCategory,
			CoverImage: row.BookCoverImage,
		},
		User: model.UserRef{
			ID:    row.UserID,
			Name:  row.UserName,
			Email: row.UserEmail,
		},
	}
}

func (r *repository) ListIssues(ctx context.Context, f model.IssueFilter) ([]model.IssueView, error) {
	cols := make([]string, 0, len(issueColumns)+6)
	for _, c := range issueColumns {
		cols = append(cols, "i."+c)
	}
	cols = append(cols,
		"b.title as book_title", "b.author as book_author", "b.category as book_category",
		"b.cover_image as book_cover_image", "u.name as user_name", "u.email as user_email")

	q := qb.Select(cols...).
		From(issuesTableName + " i").
		Join(fmt.Sprintf("%s b on b.id = i.book_id", booksTableName)).
		Join(fmt.Sprintf("%s u on u.id = i.user_id", usersTableName))

	if f.UserID != nil {
		q = q.Where(sq.Eq{"i.user_id": *f.UserID})
	}
	if f.OpenOnly {
		q = q.Where(sq.Eq{"i.status": openStatuses})
	}
	if f.DueBefore != nil {
		q = q.Where(sq.Lt{"i.due_date": *f.DueBefore})
	}
	if f.OrderDue {
		q = q.OrderBy("i.due_date asc")
	} else {
		q = q.OrderBy("i.created_at desc")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[issueViewRow])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	views := make([]model.IssueView, 0, len(items))
	for _, item := range items {
		views = append(views, item.view())
	}
	return views, nil
}

// ClaimPointsAward flags a returned issue as rewarded. It reports false when
// the issue is unknown, still open or was already rewarded.
func (r *repository) ClaimPointsAward(ctx context.Context, issueID uuid.UUID) (bool, error) {
	q := `
update issues
set points_awarded = true
where id = @id
  and status = @status
  and not points_awarded`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": issueID, "status": model.StatusReturned})
	if err != nil {
		return false, mapTxErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repository) CountOpenIssues(ctx context.Context, userID *uuid.UUID) (int, error) {
	q := qb.Select("count(*)").
		From(issuesTableName).
		Where(sq.Eq{"status": openStatuses})
	if userID != nil {
		q = q.Where(sq.Eq{"user_id": *userID})
	}
	return r.count(ctx, q)
}
