package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from ListingStatus
		to   ListingStatus
		want bool
	}{
		{"pending to approved", StatusPending, StatusApproved, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"approved to sold", StatusApproved, StatusSold, true},
		{"pending to sold", StatusPending, StatusSold, false},
		{"rejected is terminal", StatusRejected, StatusApproved, false},
		{"sold is terminal", StatusSold, StatusApproved, false},
		{"approved cannot go back", StatusApproved, StatusPending, false},
		{"approved cannot be rejected", StatusApproved, StatusRejected, false},
		{"no self transition", StatusPending, StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestPubliclyVisible(t *testing.T) {
	for status, want := range map[ListingStatus]bool{
		StatusPending:  false,
		StatusApproved: true,
		StatusRejected: false,
		StatusSold:     true,
	} {
		l := Listing{Status: status}
		if got := l.PubliclyVisible(); got != want {
			t.Errorf("PubliclyVisible with status %s = %v, want %v", status, got, want)
		}
	}
}

func TestDepartmentBounds(t *testing.T) {
	if !ValidDepartment("CSE") || !ValidDepartment("ARCH") {
		t.Error("expected CSE and ARCH to be valid departments")
	}
	if ValidDepartment("XYZ") || ValidDepartment("") {
		t.Error("expected unknown codes to be invalid")
	}

	if got := MaxLevel("ARCH"); got != 5 {
		t.Errorf("MaxLevel(ARCH) = %d, want 5", got)
	}
	if got := MaxLevel("EEE"); got != 4 {
		t.Errorf("MaxLevel(EEE) = %d, want 4", got)
	}
	if got := MaxTerm("ARCH"); got != 10 {
		t.Errorf("MaxTerm(ARCH) = %d, want 10", got)
	}
	if got := MaxTerm("ME"); got != 8 {
		t.Errorf("MaxTerm(ME) = %d, want 8", got)
	}
}
