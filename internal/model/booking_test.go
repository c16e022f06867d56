package model

import "testing"

func TestStatusGraphEdges(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusWaitingForCleaner},
		{StatusPending, StatusCancelled},
		{StatusWaitingForCleaner, StatusAssigned},
		{StatusWaitingForCleaner, StatusCancelled},
		{StatusAssigned, StatusInProgress},
		{StatusAssigned, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
	}
	for _, e := range allowed {
		if !e.from.CanTransitionTo(e.to) {
			t.Errorf("%s -> %s should be allowed", e.from, e.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusWaitingForCleaner, StatusCompleted},
		{StatusWaitingForCleaner, StatusInProgress},
		{StatusAssigned, StatusCompleted},
		{StatusAssigned, StatusWaitingForCleaner},
		{StatusInProgress, StatusAssigned},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusInProgress},
		{StatusCancelled, StatusWaitingForCleaner},
		{StatusCancelled, StatusAssigned},
	}
	for _, e := range denied {
		if e.from.CanTransitionTo(e.to) {
			t.Errorf("%s -> %s should be denied", e.from, e.to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []Status{StatusPending, StatusWaitingForCleaner, StatusAssigned,
		StatusInProgress, StatusCompleted, StatusCancelled}
	for _, s := range all {
		if !s.IsValid() {
			t.Errorf("%s should be a valid status", s)
		}
		if s.IsTerminal() {
			for _, target := range all {
				if s.CanTransitionTo(target) {
					t.Errorf("terminal %s still allows transition to %s", s, target)
				}
			}
		}
	}
	if !StatusCompleted.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Error("COMPLETED and CANCELLED must be terminal")
	}
	if StatusInProgress.IsTerminal() {
		t.Error("IN_PROGRESS must not be terminal")
	}
	if Status("SHINY").IsValid() {
		t.Error("unknown status should not be valid")
	}
}

func TestRequiresCleaner(t *testing.T) {
	withCleaner := []Status{StatusAssigned, StatusInProgress, StatusCompleted}
	for _, s := range withCleaner {
		if !s.RequiresCleaner() {
			t.Errorf("%s should require a cleaner", s)
		}
	}
	without := []Status{StatusPending, StatusWaitingForCleaner, StatusCancelled}
	for _, s := range without {
		if s.RequiresCleaner() {
			t.Errorf("%s should not require a cleaner", s)
		}
	}
}

func TestPrice(t *testing.T) {
	deep := Booking{BookingType: TypeDeep}
	if got := deep.Price(); got != 30 {
		t.Errorf("deep price = %d, want 30", got)
	}
	standard := Booking{BookingType: TypeStandard}
	if got := standard.Price(); got != 20 {
		t.Errorf("standard price = %d, want 20", got)
	}
}

func TestAssignedTo(t *testing.T) {
	var b Booking
	if b.AssignedTo(10) {
		t.Error("unassigned booking should not match any cleaner")
	}
	id := uint64(10)
	b.CleanerID = &id
	if !b.AssignedTo(10) {
		t.Error("booking should match its assigned cleaner")
	}
	if b.AssignedTo(11) {
		t.Error("booking should not match a different cleaner")
	}
}
