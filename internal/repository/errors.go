// Package repository implements raw-SQL data access against MySQL.
// Sentinel errors defined here let handlers distinguish failure modes
// without inspecting driver error strings themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when registration hits the unique email
// constraint. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrStudentIDExists is returned when a student registers with a matric
// number that is already taken.
var ErrStudentIDExists = errors.New("student id already exists")

// ErrStaffIDExists is returned when a cleaner registers with a staff id
// that is already taken.
var ErrStaffIDExists = errors.New("staff id already exists")

// isDuplicate reports whether the driver error is a MySQL duplicate-key
// violation (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isLockTimeout reports whether the driver error is a MySQL lock wait
// timeout (error 1205).
func isLockTimeout(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1205")
}
