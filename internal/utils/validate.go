package utils

import (
	"errors"
	"regexp"
	"time"
)

// Validation rules for hostel identifiers and booking slots.  The formats
// follow campus conventions: blocks are two digits plus one uppercase
// letter (25E), rooms are block-floor-room (25E-04-10), student IDs are
// AIU followed by eight digits, and phone numbers use E.164.
var (
	blockRe     = regexp.MustCompile(`^\d{2}[A-Z]$`)
	roomRe      = regexp.MustCompile(`^\d{2}[A-Z]-\d{2}-\d{2}$`)
	studentIDRe = regexp.MustCompile(`^AIU\d{8}$`)
	phoneRe     = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

var (
	ErrBadBlock     = errors.New("block must be 2 digits followed by 1 uppercase letter (e.g. 25E)")
	ErrBadRoom      = errors.New("room number must be like 25E-04-10")
	ErrBadStudentID = errors.New("student ID must be AIU followed by 8 digits (e.g. AIU23102325)")
	ErrBadPhone     = errors.New("phone number must be in E.164 format (e.g. +60123456789)")
	ErrBadTimeSlot  = errors.New("time must be on a 30-minute slot between 08:00 and 23:00")
	ErrSlotInPast   = errors.New("the selected date and time cannot be in the past")
)

// ValidBlock reports whether s is a well-formed block code.
func ValidBlock(s string) bool { return blockRe.MatchString(s) }

// ValidRoom reports whether s is a well-formed room number.
func ValidRoom(s string) bool { return roomRe.MatchString(s) }

// ValidStudentID reports whether s is a well-formed student ID.
func ValidStudentID(s string) bool { return studentIDRe.MatchString(s) }

// ValidPhone reports whether s is a plausible E.164 phone number.
func ValidPhone(s string) bool { return phoneRe.MatchString(s) }

// ParseSlotTime parses an "HH:MM" time-of-day and enforces the booking
// grid: 30-minute increments from 08:00 through 23:00 inclusive.  It
// returns the hour and minute on success.
func ParseSlotTime(s string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", s)
	if perr != nil {
		return 0, 0, ErrBadTimeSlot
	}
	hour, minute = t.Hour(), t.Minute()
	if minute != 0 && minute != 30 {
		return 0, 0, ErrBadTimeSlot
	}
	if hour < 8 || hour > 23 || (hour == 23 && minute == 30) {
		return 0, 0, ErrBadTimeSlot
	}
	return hour, minute, nil
}

// ValidateSlot checks a full booking slot: the time must sit on the grid
// and the combined date+time instant must not be before now.  The date
// is interpreted in UTC, matching how slots are stored.
func ValidateSlot(date time.Time, timeOfDay string, now time.Time) error {
	hour, minute, err := ParseSlotTime(timeOfDay)
	if err != nil {
		return err
	}
	slot := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	if slot.Before(now.UTC()) {
		return ErrSlotInPast
	}
	return nil
}
