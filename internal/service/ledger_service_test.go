package service

import (
	"context"
	"math"
	"testing"
	"time"

	"bank-ledger/internal/core/domain"
	"bank-ledger/internal/core/ports"
	"bank-ledger/internal/core/ports/mocks"
	"bank-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	accounts   *mocks.MockAccountRepository
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		accounts:   mocks.NewMockAccountRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.accounts, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func storedAccount(name string, balance int64) *domain.Account {
	now := time.Now().UTC()
	return &domain.Account{
		ID:        uuid.New(),
		Name:      name,
		PIN:       1234,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// ==================== Deposit Tests ====================

func TestLedgerService_Deposit_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "alice").Return(storedAccount("alice", 0), nil)
	d.accounts.EXPECT().UpdateBalance(ctx, tx, "alice", int64(100)).Return(nil)

	newBalance, err := d.svc.Deposit(ctx, "alice", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), newBalance)
}

func TestLedgerService_Deposit_NonPositiveAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	for _, amount := range []int64{0, -1, -500} {
		_, err := d.svc.Deposit(context.Background(), "alice", amount)
		assertAppCode(t, err, "LED_001")
	}
}

func TestLedgerService_Deposit_AccountNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "bob").Return(nil, nil)

	_, err := d.svc.Deposit(ctx, "bob", 10)
	assertAppCode(t, err, "LED_002")
}

func TestLedgerService_Deposit_Overflow(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "alice").
		Return(storedAccount("alice", math.MaxInt64-5), nil)

	// Balance must stay untouched: no UpdateBalance expectation.
	_, err := d.svc.Deposit(ctx, "alice", 6)
	assertAppCode(t, err, "LED_001")
}

func TestLedgerService_Deposit_AtOverflowBoundary(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "alice").
		Return(storedAccount("alice", math.MaxInt64-5), nil)
	d.accounts.EXPECT().UpdateBalance(ctx, tx, "alice", int64(math.MaxInt64)).Return(nil)

	newBalance, err := d.svc.Deposit(ctx, "alice", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), newBalance)
}

func TestLedgerService_Deposit_AccountVanishedUnderLock(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "alice").Return(storedAccount("alice", 50), nil)
	d.accounts.EXPECT().UpdateBalance(ctx, tx, "alice", int64(60)).Return(ports.ErrNameNotFound)

	_, err := d.svc.Deposit(ctx, "alice", 10)
	assertAppCode(t, err, "LED_002")
}

// ==================== Withdraw Tests ====================

func TestLedgerService_Withdraw_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "alice").Return(storedAccount("alice", 100), nil)
	d.accounts.EXPECT().UpdateBalance(ctx, tx, "alice", int64(70)).Return(nil)

	remaining, err := d.svc.Withdraw(ctx, "alice", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(70), remaining)
}

func TestLedgerService_Withdraw_ExactBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "alice").Return(storedAccount("alice", 100), nil)
	d.accounts.EXPECT().UpdateBalance(ctx, tx, "alice", int64(0)).Return(nil)

	remaining, err := d.svc.Withdraw(ctx, "alice", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
}

func TestLedgerService_Withdraw_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "alice").Return(storedAccount("alice", 70), nil)

	// No UpdateBalance expectation: the account must be unchanged.
	_, err := d.svc.Withdraw(ctx, "alice", 1000)
	assertAppCode(t, err, "LED_003")
}

func TestLedgerService_Withdraw_NonPositiveAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	for _, amount := range []int64{0, -10} {
		_, err := d.svc.Withdraw(context.Background(), "alice", amount)
		assertAppCode(t, err, "LED_001")
	}
}

func TestLedgerService_Withdraw_AccountNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accounts.EXPECT().GetByNameForUpdate(ctx, tx, "bob").Return(nil, nil)

	_, err := d.svc.Withdraw(ctx, "bob", 10)
	assertAppCode(t, err, "LED_002")
}

// ==================== Register Tests ====================

func TestLedgerService_Register_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accounts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Account) error {
			assert.Equal(t, "alice", a.Name)
			assert.Equal(t, int64(1234), a.PIN)
			assert.Equal(t, int64(0), a.Balance, "new accounts start at zero")
			assert.NotEqual(t, uuid.Nil, a.ID)
			return nil
		})

	err := d.svc.Register(ctx, "alice", 1234)
	assert.NoError(t, err)
}

func TestLedgerService_Register_DuplicateName(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accounts.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrDuplicateName)

	err := d.svc.Register(ctx, "alice", 1234)
	assertAppCode(t, err, "LED_004")
}

func TestLedgerService_Register_InvalidName(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	for _, name := range []string{"", "two words", "tab\tname"} {
		err := d.svc.Register(context.Background(), name, 1234)
		assertAppCode(t, err, "LED_005")
	}
}

// ==================== Authenticate Tests ====================

func TestLedgerService_Authenticate_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accounts.EXPECT().VerifyPIN(ctx, "alice", int64(1234)).Return(true, nil)

	assert.NoError(t, d.svc.Authenticate(ctx, "alice", 1234))
}

func TestLedgerService_Authenticate_WrongPIN(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accounts.EXPECT().VerifyPIN(ctx, "alice", int64(9999)).Return(false, nil)

	err := d.svc.Authenticate(ctx, "alice", 9999)
	assertAppCode(t, err, "AUTH_001")
}

// ==================== Balance Tests ====================

func TestLedgerService_Balance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accounts.EXPECT().GetByName(ctx, "alice").Return(storedAccount("alice", 70), nil)

	balance, err := d.svc.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)
}

func TestLedgerService_Balance_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accounts.EXPECT().GetByName(ctx, "bob").Return(nil, nil)

	_, err := d.svc.Balance(ctx, "bob")
	assertAppCode(t, err, "LED_002")
}
