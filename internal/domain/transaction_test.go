package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want error
	}{
		{
			name: "valid",
			tx: Transaction{
				OriginUserID:      "u1",
				DestinationUserID: "u2",
				Amount:            decimal.NewFromInt(10),
				Description:       "bonus",
			},
			want: nil,
		},
		{
			name: "same user",
			tx: Transaction{
				OriginUserID:      "u1",
				DestinationUserID: "u1",
				Amount:            decimal.NewFromInt(10),
				Description:       "bonus",
			},
			want: ErrSameUser,
		},
		{
			name: "zero amount",
			tx: Transaction{
				OriginUserID:      "u1",
				DestinationUserID: "u2",
				Amount:            decimal.Zero,
				Description:       "bonus",
			},
			want: ErrInvalidAmount,
		},
		{
			name: "blank description",
			tx: Transaction{
				OriginUserID:      "u1",
				DestinationUserID: "u2",
				Amount:            decimal.NewFromInt(10),
				Description:       "   ",
			},
			want: ErrEmptyDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.Validate(); !errors.Is(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransaction_StateTransitions(t *testing.T) {
	tests := []struct {
		name        string
		status      TransactionStatus
		approveWant error
		rejectWant  error
	}{
		{"pending", StatusPending, nil, nil},
		{"approved is terminal", StatusApproved, ErrAlreadyApproved, ErrAlreadyApproved},
		{"rejected is terminal", StatusRejected, ErrAlreadyRejected, ErrAlreadyRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}

			if got := tx.CanApprove(); !errors.Is(got, tt.approveWant) {
				t.Errorf("CanApprove() = %v, want %v", got, tt.approveWant)
			}

			if got := tx.CanReject(); !errors.Is(got, tt.rejectWant) {
				t.Errorf("CanReject() = %v, want %v", got, tt.rejectWant)
			}
		})
	}
}

func TestTransaction_CanModify(t *testing.T) {
	tests := []struct {
		name   string
		tx     Transaction
		want   error
	}{
		{"pending user row", Transaction{OriginKind: OriginUser, Status: StatusPending}, nil},
		{"approved user row", Transaction{OriginKind: OriginUser, Status: StatusApproved}, ErrAlreadyApproved},
		{"vat settlement row", Transaction{OriginKind: OriginVATSettlement, Status: StatusApproved}, ErrSystemGenerated},
		{"counterparty row", Transaction{OriginKind: OriginCounterparty, Status: StatusApproved}, ErrSystemGenerated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.CanModify(); !errors.Is(got, tt.want) {
				t.Errorf("CanModify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransaction_IsSystemGenerated(t *testing.T) {
	if (&Transaction{OriginKind: OriginUser}).IsSystemGenerated() {
		t.Error("user row reported as system-generated")
	}

	if !(&Transaction{OriginKind: OriginVATSettlement}).IsSystemGenerated() {
		t.Error("VAT settlement row not reported as system-generated")
	}
}
