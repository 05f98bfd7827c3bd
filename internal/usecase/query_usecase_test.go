package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
	"github.com/iho/valcoin/internal/usecase/mocks"
)

type queryFixture struct {
	transactions *mocks.MockTransactionRepository
	users        *mocks.MockUserRepository
	settings     *mocks.MockSettingsRepository
	legados      *mocks.MockLegadoRepository
	uc           *usecase.TransactionQueryUseCase
}

func newQueryFixture(t *testing.T) *queryFixture {
	f := &queryFixture{
		transactions: mocks.NewMockTransactionRepository(),
		users:        mocks.NewMockUserRepository(),
		settings:     mocks.NewMockSettingsRepository(),
		legados:      mocks.NewMockLegadoRepository(gomock.NewController(t)),
	}

	f.users.Seed(
		&domain.User{ID: "teacher-1", Name: "Ana", Role: domain.RoleTeacher, Active: true},
		&domain.User{ID: "student-1", Name: "Rui", Role: domain.RoleStudent, Active: true},
	)

	f.settings.Rates = domain.VATRates{"normal": decimal.NewFromInt(23)}

	f.uc = usecase.NewTransactionQueryUseCase(f.transactions, f.users, f.settings, f.legados)

	return f
}

func userRow(id string, createdAt time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:                id,
		GroupID:           "g-" + id,
		OriginUserID:      "teacher-1",
		DestinationUserID: "student-1",
		Amount:            decimal.NewFromInt(10),
		Direction:         domain.DirectionCredit,
		Status:            domain.StatusApproved,
		OriginKind:        domain.OriginUser,
		Description:       "reward",
		VATRateRef:        "normal",
		CreatedAt:         createdAt,
	}
}

func TestTransactionQueryUseCase_List_ExcludesSystemRows(t *testing.T) {
	f := newQueryFixture(t)

	now := time.Now().UTC()

	system := userRow("t-vat", now)
	system.OriginKind = domain.OriginVATSettlement

	f.transactions.Seed(userRow("t-1", now), system)

	rows, err := f.uc.List(context.Background(), usecase.ListInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ID != "t-1" {
		t.Errorf("unexpected row %s", rows[0].ID)
	}
}

func TestTransactionQueryUseCase_List_TimeFilter(t *testing.T) {
	f := newQueryFixture(t)

	now := time.Now().UTC()

	f.transactions.Seed(
		userRow("t-today", now.Add(-time.Minute)),
		userRow("t-last-month", now.AddDate(0, -2, 0)),
	)

	rows, err := f.uc.List(context.Background(), usecase.ListInput{TimeFilter: usecase.FilterToday})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 1 || rows[0].ID != "t-today" {
		t.Errorf("expected only t-today, got %+v", rows)
	}
}

func TestTransactionQueryUseCase_Enrich(t *testing.T) {
	f := newQueryFixture(t)

	rows := []*domain.Transaction{userRow("t-1", time.Now().UTC())}

	enriched, err := f.uc.Enrich(context.Background(), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if enriched[0].OriginName != "Ana" || enriched[0].DestinationName != "Rui" {
		t.Errorf("names = %q/%q, want Ana/Rui", enriched[0].OriginName, enriched[0].DestinationName)
	}
	if !enriched[0].VATRate.Equal(decimal.NewFromInt(23)) {
		t.Errorf("VAT rate = %s, want 23", enriched[0].VATRate)
	}

	// Enrichment is pure: a second pass over the same rows is identical.
	again, err := f.uc.Enrich(context.Background(), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again[0].OriginName != enriched[0].OriginName || !again[0].VATRate.Equal(enriched[0].VATRate) {
		t.Error("repeated enrichment diverged")
	}
}

func TestTransactionQueryUseCase_Enrich_UnknownRefs(t *testing.T) {
	f := newQueryFixture(t)

	row := userRow("t-1", time.Now().UTC())
	row.OriginUserID = "deleted-user"
	row.VATRateRef = "no-such-rate"

	enriched, err := f.uc.Enrich(context.Background(), []*domain.Transaction{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if enriched[0].OriginName != "" {
		t.Errorf("expected an empty name for an unknown user, got %q", enriched[0].OriginName)
	}
	if !enriched[0].VATRate.IsZero() {
		t.Errorf("expected a zero rate for an unknown reference, got %s", enriched[0].VATRate)
	}
}

func TestTransactionQueryUseCase_GetGroup(t *testing.T) {
	f := newQueryFixture(t)

	now := time.Now().UTC()
	primary := userRow("t-1", now)
	vat := userRow("t-2", now)
	vat.GroupID = primary.GroupID
	vat.OriginKind = domain.OriginVATSettlement

	f.transactions.Seed(primary, vat)

	rows, err := f.uc.GetGroup(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Group reads include the system companions.
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	// The companion id resolves the same group.
	rows, err = f.uc.GetGroup(context.Background(), "t-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows via the companion, got %d", len(rows))
	}

	_, err = f.uc.GetGroup(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionQueryUseCase_Get(t *testing.T) {
	f := newQueryFixture(t)
	f.transactions.Seed(userRow("t-1", time.Now().UTC()))

	row, err := f.uc.Get(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.OriginName != "Ana" {
		t.Errorf("origin name = %q, want Ana", row.OriginName)
	}

	_, err = f.uc.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionQueryUseCase_ListLegados(t *testing.T) {
	f := newQueryFixture(t)

	f.legados.EXPECT().
		List(gomock.Any(), usecase.DefaultListLimit, 0).
		Return([]*domain.Legado{
			{ID: "l-1", StudentID: "student-1", GrantorID: "teacher-1", RuleID: "rule-1", Description: "legacy"},
		}, nil)

	records, err := f.uc.ListLegados(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "l-1" {
		t.Errorf("unexpected records: %+v", records)
	}
}
