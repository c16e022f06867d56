package model

import "time"

// Role names the three account types.  Role strings are stored on the
// users row and carried in the JWT "role" claim.
const (
	RoleAdmin   = "ADMIN"
	RoleCleaner = "CLEANER"
	RoleStudent = "STUDENT"
)

// User represents an application user record as stored in the `users`
// table.  Handlers define separate response types where a different JSON
// shape is needed.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name.
//  Role         – ADMIN, CLEANER or STUDENT.
//  Phone        – phone number in E.164 format, may be empty.
//  IsActive     – whether the account is active; inactive cleaners are
//                 excluded from booking fan-out and force-assignment.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone_number,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentProfile holds the student-specific columns from
// `student_profiles`.  The student ID and room location are captured at
// registration and used to prefill bookings.
type StudentProfile struct {
	UserID     uint64 `json:"-"`
	StudentID  string `json:"student_id"` // AIU followed by 8 digits
	Block      string `json:"block"`
	RoomNumber string `json:"room_number"`
	Phone      string `json:"phone,omitempty"`
}

// CleanerProfile holds the cleaner-specific columns from
// `cleaner_profiles`.  AssignedBlocks is a comma-separated list of block
// codes the cleaner usually covers; it is informational and does not
// restrict which bookings the cleaner may claim.
type CleanerProfile struct {
	UserID         uint64 `json:"-"`
	StaffID        string `json:"staff_id"`
	Phone          string `json:"phone"`
	AssignedBlocks string `json:"assigned_blocks,omitempty"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
