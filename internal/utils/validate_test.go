package utils

import (
	"errors"
	"testing"
	"time"
)

func TestValidBlock(t *testing.T) {
	for _, ok := range []string{"25E", "01A", "99Z"} {
		if !ValidBlock(ok) {
			t.Errorf("ValidBlock(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", "25e", "2E", "255E", "25EE", "E25", "25-E"} {
		if ValidBlock(bad) {
			t.Errorf("ValidBlock(%q) = true, want false", bad)
		}
	}
}

func TestValidRoom(t *testing.T) {
	for _, ok := range []string{"25E-04-10", "01A-00-01"} {
		if !ValidRoom(ok) {
			t.Errorf("ValidRoom(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", "25E-4-10", "25e-04-10", "25E0410", "25E-04-100", "25E-04"} {
		if ValidRoom(bad) {
			t.Errorf("ValidRoom(%q) = true, want false", bad)
		}
	}
}

func TestValidStudentID(t *testing.T) {
	if !ValidStudentID("AIU23102325") {
		t.Error("ValidStudentID(AIU23102325) = false, want true")
	}
	for _, bad := range []string{"", "AIU2310232", "AIU231023255", "aiu23102325", "XYZ23102325", "AIU2310232A"} {
		if ValidStudentID(bad) {
			t.Errorf("ValidStudentID(%q) = true, want false", bad)
		}
	}
}

func TestValidPhone(t *testing.T) {
	for _, ok := range []string{"+60123456789", "60123456789", "+14155550123"} {
		if !ValidPhone(ok) {
			t.Errorf("ValidPhone(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", "+0123", "abc", "+6012-345-6789"} {
		if ValidPhone(bad) {
			t.Errorf("ValidPhone(%q) = true, want false", bad)
		}
	}
}

func TestParseSlotTime(t *testing.T) {
	valid := []string{"08:00", "08:30", "12:00", "22:30", "23:00"}
	for _, s := range valid {
		if _, _, err := ParseSlotTime(s); err != nil {
			t.Errorf("ParseSlotTime(%q) = %v, want nil", s, err)
		}
	}
	invalid := []string{"07:30", "23:30", "08:15", "24:00", "8:00am", "noon", ""}
	for _, s := range invalid {
		if _, _, err := ParseSlotTime(s); !errors.Is(err, ErrBadTimeSlot) {
			t.Errorf("ParseSlotTime(%q) = %v, want ErrBadTimeSlot", s, err)
		}
	}
}

func TestValidateSlot(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	future := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if err := ValidateSlot(future, "08:00", now); err != nil {
		t.Errorf("future slot: %v, want nil", err)
	}

	// Same day, later time is fine; earlier time is in the past.
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if err := ValidateSlot(today, "14:30", now); err != nil {
		t.Errorf("later today: %v, want nil", err)
	}
	if err := ValidateSlot(today, "09:00", now); !errors.Is(err, ErrSlotInPast) {
		t.Errorf("earlier today: %v, want ErrSlotInPast", err)
	}

	yesterday := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if err := ValidateSlot(yesterday, "14:00", now); !errors.Is(err, ErrSlotInPast) {
		t.Errorf("yesterday: %v, want ErrSlotInPast", err)
	}

	// Grid violations win over past checks.
	if err := ValidateSlot(future, "03:00", now); !errors.Is(err, ErrBadTimeSlot) {
		t.Errorf("off-grid future slot: %v, want ErrBadTimeSlot", err)
	}
}
