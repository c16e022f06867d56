package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
	"github.com/iliyamo/hostel-cleaning-service/internal/utils"
)

// UserRepo provides access to users and their role profiles.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,name,role,COALESCE(phone,''),is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, service.ErrNotFound
	}
	return u, err
}

// CreateStudent inserts a user row with role STUDENT plus its student
// profile in one transaction.
func (r *UserRepo) CreateStudent(ctx context.Context, email, password, name string, cost int, p model.StudentProfile) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, role, phone) VALUES (?,?,?,?,?)",
		email, hash, name, model.RoleStudent, nullable(p.Phone))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO student_profiles (user_id, student_id, block, room_number, phone) VALUES (?,?,?,?,?)",
		id, p.StudentID, p.Block, p.RoomNumber, nullable(p.Phone))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrStudentIDExists
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// CreateCleaner inserts a user row with role CLEANER plus its cleaner
// profile in one transaction.
func (r *UserRepo) CreateCleaner(ctx context.Context, email, password, name string, cost int, p model.CleanerProfile) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, role, phone) VALUES (?,?,?,?,?)",
		email, hash, name, model.RoleCleaner, nullable(p.Phone))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO cleaner_profiles (user_id, staff_id, phone, assigned_blocks) VALUES (?,?,?,?)",
		id, p.StaffID, nullable(p.Phone), nullable(p.AssignedBlocks))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrStaffIDExists
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetStudentProfile returns the student profile for a user.
func (r *UserRepo) GetStudentProfile(ctx context.Context, userID uint64) (model.StudentProfile, error) {
	var p model.StudentProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, student_id, block, room_number, COALESCE(phone,'') FROM student_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &p.StudentID, &p.Block, &p.RoomNumber, &p.Phone)
	if err == sql.ErrNoRows {
		return p, service.ErrNotFound
	}
	return p, err
}

// GetCleanerProfile returns the cleaner profile for a user.
func (r *UserRepo) GetCleanerProfile(ctx context.Context, userID uint64) (model.CleanerProfile, error) {
	var p model.CleanerProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, staff_id, COALESCE(phone,''), COALESCE(assigned_blocks,'') FROM cleaner_profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.UserID, &p.StaffID, &p.Phone, &p.AssignedBlocks)
	if err == sql.ErrNoRows {
		return p, service.ErrNotFound
	}
	return p, err
}

// ListActiveCleanerIDs returns the user ids of every active cleaner.
// Used for the claim-ticket fan-out at booking creation.
func (r *UserRepo) ListActiveCleanerIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id FROM users WHERE role=? AND is_active=1", model.RoleCleaner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CleanerSummary pairs a cleaner account with profile details and the
// number of not-yet-finished tasks assigned to them.
type CleanerSummary struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	StaffID        string `json:"staff_id"`
	Phone          string `json:"phone,omitempty"`
	AssignedBlocks string `json:"assigned_blocks,omitempty"`
	IsActive       bool   `json:"is_active"`
	ActiveTasks    int    `json:"active_tasks"`
}

const cleanerSummaryQuery = `
SELECT u.id, u.name, u.email, cp.staff_id, COALESCE(cp.phone,''), COALESCE(cp.assigned_blocks,''), u.is_active,
       (SELECT COUNT(*) FROM bookings b
         WHERE b.assigned_cleaner_id = u.id AND b.status IN ('ASSIGNED','IN_PROGRESS')) AS active_tasks
  FROM users u
  JOIN cleaner_profiles cp ON cp.user_id = u.id
 WHERE u.role = 'CLEANER'`

// ListCleaners returns every cleaner account with task counts, active or
// not.
func (r *UserRepo) ListCleaners(ctx context.Context) ([]CleanerSummary, error) {
	return r.queryCleaners(ctx, cleanerSummaryQuery+" ORDER BY u.name")
}

// ListAvailableCleaners returns active cleaners ordered least busy
// first, for the admin assignment picker.
func (r *UserRepo) ListAvailableCleaners(ctx context.Context) ([]CleanerSummary, error) {
	return r.queryCleaners(ctx, cleanerSummaryQuery+" AND u.is_active=1 ORDER BY active_tasks ASC, u.name")
}

func (r *UserRepo) queryCleaners(ctx context.Context, query string) ([]CleanerSummary, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CleanerSummary, 0)
	for rows.Next() {
		var c CleanerSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.StaffID, &c.Phone, &c.AssignedBlocks, &c.IsActive, &c.ActiveTasks); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCleanerActive toggles a cleaner account on or off. Inactive
// cleaners keep their assignments but receive no new claim tickets and
// cannot be force-assigned.
func (r *UserRepo) SetCleanerActive(ctx context.Context, userID uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=? AND role=?", active, userID, model.RoleCleaner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no such cleaner" from "already in that state".
		var exists int
		err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE id=? AND role=?", userID, model.RoleCleaner).Scan(&exists)
		if err == sql.ErrNoRows {
			return service.ErrNotFound
		}
		return err
	}
	return nil
}

// EnsureAdmin creates the bootstrap ADMIN account when no user with the
// given email exists. Existing accounts are left untouched.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, password string, cost int) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var exists int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, role) VALUES (?,?,?,?)",
		email, hash, "Administrator", model.RoleAdmin)
	if isDuplicate(err) {
		return nil
	}
	return err
}

// nullable maps empty strings to NULL for optional columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
