package entity

import "testing"

func TestPlanCanCreate(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want bool
	}{
		{"free under limit", Plan{LoanCount: 3, MaxLoans: 10}, true},
		{"free at limit", Plan{LoanCount: 10, MaxLoans: 10}, false},
		{"free over limit", Plan{LoanCount: 12, MaxLoans: 10}, false},
		{"premium at huge count", Plan{IsPremium: true, LoanCount: 999999, MaxLoans: 10}, true},
		{"unlimited flag alone", Plan{Unlimited: true, LoanCount: 50, MaxLoans: 10}, true},
		{"zero loans free", Plan{LoanCount: 0, MaxLoans: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.CanCreate(); got != tt.want {
				t.Fatalf("CanCreate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanRemaining(t *testing.T) {
	if got := (Plan{LoanCount: 7, MaxLoans: 10}).Remaining(); got != 3 {
		t.Fatalf("Remaining = %d, want 3", got)
	}
	if got := (Plan{LoanCount: 12, MaxLoans: 10}).Remaining(); got != 0 {
		t.Fatalf("Remaining past limit = %d, want 0", got)
	}
	if got := (Plan{IsPremium: true}).Remaining(); got != -1 {
		t.Fatalf("premium Remaining = %d, want -1", got)
	}
}
