package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

// IssueRepo stores maintenance issues reported by cleaners.
type IssueRepo struct{ DB *sql.DB }

func NewIssueRepo(db *sql.DB) *IssueRepo { return &IssueRepo{DB: db} }

const issueColumns = `id, booking_id, reported_by, issue_type, description,
COALESCE(photo_url,''), status, COALESCE(assigned_staff,''), created_at, updated_at`

// Create inserts an OPEN issue and populates the generated ID and
// timestamps on i.
func (r *IssueRepo) Create(ctx context.Context, i *model.Issue) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO issues (booking_id, reported_by, issue_type, description, photo_url, status) VALUES (?,?,?,?,?,?)",
		i.BookingID, i.ReportedBy, i.IssueType, i.Description, nullable(i.PhotoURL), model.IssueOpen)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	full, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*i = full
	return nil
}

// GetByID fetches one issue.
func (r *IssueRepo) GetByID(ctx context.Context, id uint64) (model.Issue, error) {
	i, err := scanIssue(r.DB.QueryRowContext(ctx,
		"SELECT "+issueColumns+" FROM issues WHERE id=?", id))
	if err == sql.ErrNoRows {
		return i, service.ErrNotFound
	}
	return i, err
}

// ListByReporter returns issues reported by one cleaner, newest first.
func (r *IssueRepo) ListByReporter(ctx context.Context, reportedBy uint64) ([]model.Issue, error) {
	return r.list(ctx,
		"SELECT "+issueColumns+" FROM issues WHERE reported_by=? ORDER BY created_at DESC", reportedBy)
}

// ListAll returns every issue for the admin view, open ones first.
func (r *IssueRepo) ListAll(ctx context.Context) ([]model.Issue, error) {
	return r.list(ctx,
		"SELECT "+issueColumns+" FROM issues ORDER BY status='OPEN' DESC, created_at DESC")
}

// UpdateStatus moves the issue and optionally records which staff was
// dispatched.
func (r *IssueRepo) UpdateStatus(ctx context.Context, id uint64, status model.IssueStatus, assignedStaff string) (model.Issue, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE issues SET status=?, assigned_staff=COALESCE(?, assigned_staff) WHERE id=?",
		status, nullable(assignedStaff), id)
	if err != nil {
		return model.Issue{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Issue{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *IssueRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Issue, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Issue, 0)
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanIssue(row rowScanner) (model.Issue, error) {
	var i model.Issue
	err := row.Scan(&i.ID, &i.BookingID, &i.ReportedBy, &i.IssueType, &i.Description,
		&i.PhotoURL, &i.Status, &i.AssignedStaff, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}
