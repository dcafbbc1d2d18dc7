package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Owujuah/apex-living/internal/models"
)

func TestReserve(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "0")
	listing := seedListing(t, db, "50000")

	contract, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ContractStatusPending, contract.Status)
	assert.Equal(t, buyer.ID, contract.BuyerID)
	assert.Equal(t, listing.ID, contract.ListingID)
	assert.Equal(t, "Sunset Villa", contract.ListingTitle)
	assert.True(t, decimal.RequireFromString("50000").Equal(contract.TotalAmount))
	assert.True(t, contract.AmountPaid.IsZero())

	var updatedListing models.Listing
	require.NoError(t, db.First(&updatedListing, "id = ?", listing.ID).Error)
	assert.Equal(t, models.ListingStatusReserved, updatedListing.Status)
	assert.Equal(t, buyer.ID, updatedListing.ReservedBy)
	assert.NotNil(t, updatedListing.ReservedAt)
}

func TestReserve_Conflicts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	first := seedUser(t, db, "0")
	second := seedUser(t, db, "0")
	listing := seedListing(t, db, "50000")

	_, err := svc.Reserve(ctx, listing.ID, first.ID)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, listing.ID, second.ID)
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", listing.ID).
		Update("status", models.ListingStatusSold).Error)
	_, err = svc.Reserve(ctx, listing.ID, second.ID)
	assert.ErrorIs(t, err, ErrAlreadySold)

	_, err = svc.Reserve(ctx, "no-such-listing", second.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestPurchaseFull_Wallet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "60000")
	listing := seedListing(t, db, "50000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)

	contract, err := svc.PurchaseFull(ctx, reserved.ID, buyer.ID, models.PaymentMethodWallet)
	require.NoError(t, err)

	assert.Equal(t, models.ContractStatusCompleted, contract.Status)
	assert.Equal(t, models.PaymentTypeFull, contract.PaymentType)
	assert.True(t, contract.TotalAmount.Equal(contract.AmountPaid))
	assert.NotNil(t, contract.LastPaymentAt)

	var updatedBuyer models.User
	require.NoError(t, db.First(&updatedBuyer, "id = ?", buyer.ID).Error)
	assert.True(t, decimal.RequireFromString("10000").Equal(updatedBuyer.DepositBalance))
	assert.Equal(t, 0, updatedBuyer.ActiveContracts)
	assert.True(t, decimal.RequireFromString("50000").Equal(updatedBuyer.TotalInvested))

	var updatedListing models.Listing
	require.NoError(t, db.First(&updatedListing, "id = ?", listing.ID).Error)
	assert.Equal(t, models.ListingStatusSold, updatedListing.Status)

	var txn models.Transaction
	require.NoError(t, db.First(&txn, "contract_id = ?", contract.ID).Error)
	assert.Equal(t, models.TransactionTypeFullPayment, txn.Type)
	assert.True(t, decimal.RequireFromString("50000").Equal(txn.Amount))
	assert.True(t, decimal.RequireFromString("60000").Equal(txn.BalanceBefore))
	assert.True(t, decimal.RequireFromString("10000").Equal(txn.BalanceAfter))
	assert.Equal(t, txn.GenerateHash(testSecret), txn.Hash)
}

func TestPurchaseFull_InsufficientBalanceRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "100")
	listing := seedListing(t, db, "50000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)

	_, err = svc.PurchaseFull(ctx, reserved.ID, buyer.ID, models.PaymentMethodWallet)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing committed: contract still pending, listing still reserved,
	// no ledger entry, balance untouched.
	var contract models.Contract
	require.NoError(t, db.First(&contract, "id = ?", reserved.ID).Error)
	assert.Equal(t, models.ContractStatusPending, contract.Status)

	var updatedListing models.Listing
	require.NoError(t, db.First(&updatedListing, "id = ?", listing.ID).Error)
	assert.Equal(t, models.ListingStatusReserved, updatedListing.Status)

	var count int64
	db.Model(&models.Transaction{}).Where("contract_id = ?", reserved.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	var updatedBuyer models.User
	require.NoError(t, db.First(&updatedBuyer, "id = ?", buyer.ID).Error)
	assert.True(t, decimal.RequireFromString("100").Equal(updatedBuyer.DepositBalance))
}

func TestPurchaseFull_Guards(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "60000")
	stranger := seedUser(t, db, "60000")
	listing := seedListing(t, db, "50000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)

	_, err = svc.PurchaseFull(ctx, "no-such-contract", buyer.ID, models.PaymentMethodWallet)
	assert.ErrorIs(t, err, ErrContractNotFound)

	_, err = svc.PurchaseFull(ctx, reserved.ID, stranger.ID, models.PaymentMethodWallet)
	assert.ErrorIs(t, err, ErrNotContractOwner)

	_, err = svc.PurchaseFull(ctx, reserved.ID, buyer.ID, models.PaymentMethodWallet)
	require.NoError(t, err)

	// A completed contract cannot be paid again.
	_, err = svc.PurchaseFull(ctx, reserved.ID, buyer.ID, models.PaymentMethodWallet)
	assert.ErrorIs(t, err, ErrContractNotPending)
}

func TestPurchaseInstallment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "15000")
	listing := seedListing(t, db, "50000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)

	contract, err := svc.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 5, models.PaymentMethodWallet)
	require.NoError(t, err)

	assert.Equal(t, models.ContractStatusActive, contract.Status)
	assert.Equal(t, models.PaymentTypeInstallment, contract.PaymentType)
	require.Len(t, contract.Installments, 5)

	// First installment settled up front, second promoted.
	assert.Equal(t, models.InstallmentStatusPaid, contract.Installments[0].Status)
	assert.NotEmpty(t, contract.Installments[0].PaidAt)
	assert.Equal(t, models.InstallmentStatusPending, contract.Installments[1].Status)
	assert.Equal(t, models.InstallmentStatusUpcoming, contract.Installments[2].Status)

	assert.True(t, decimal.RequireFromString("10000").Equal(contract.AmountPaid))
	assert.True(t, contract.AmountPaid.Equal(contract.PaidTotal()))

	var updatedBuyer models.User
	require.NoError(t, db.First(&updatedBuyer, "id = ?", buyer.ID).Error)
	assert.True(t, decimal.RequireFromString("5000").Equal(updatedBuyer.DepositBalance))
	assert.Equal(t, 1, updatedBuyer.ActiveContracts)
	assert.Equal(t, 4, updatedBuyer.PendingInstallments)
	assert.True(t, decimal.RequireFromString("10000").Equal(updatedBuyer.TotalInvested))

	var txn models.Transaction
	require.NoError(t, db.First(&txn, "contract_id = ?", contract.ID).Error)
	assert.Equal(t, models.TransactionTypeInstallment, txn.Type)
	assert.Equal(t, contract.Installments[0].ID, txn.InstallmentID)
}

func TestPurchaseInstallment_InsufficientFirstPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "500")
	listing := seedListing(t, db, "50000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)

	_, err = svc.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 5, models.PaymentMethodWallet)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var contract models.Contract
	require.NoError(t, db.First(&contract, "id = ?", reserved.ID).Error)
	assert.Equal(t, models.ContractStatusPending, contract.Status)
	assert.Empty(t, contract.Installments)
}

func TestPayInstallment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "50000")
	listing := seedListing(t, db, "50000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	active, err := svc.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 5, models.PaymentMethodWallet)
	require.NoError(t, err)

	second := active.Installments[1]
	contract, err := svc.PayInstallment(ctx, active.ID, second.ID, buyer.ID, models.PaymentMethodWallet)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("20000").Equal(contract.AmountPaid))
	assert.True(t, contract.AmountPaid.Equal(contract.PaidTotal()))
	assert.Equal(t, models.ContractStatusActive, contract.Status)
	assert.Equal(t, models.InstallmentStatusPaid, contract.Installments[1].Status)
	assert.Equal(t, models.InstallmentStatusPending, contract.Installments[2].Status)

	// Paying the same installment twice is rejected.
	_, err = svc.PayInstallment(ctx, active.ID, second.ID, buyer.ID, models.PaymentMethodWallet)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	var updatedBuyer models.User
	require.NoError(t, db.First(&updatedBuyer, "id = ?", buyer.ID).Error)
	assert.Equal(t, 3, updatedBuyer.PendingInstallments)
}

func TestPayInstallment_OutOfOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "50000")
	listing := seedListing(t, db, "30000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	active, err := svc.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 3, models.PaymentMethodWallet)
	require.NoError(t, err)

	// Pay the last installment before the second.
	last := active.Installments[2]
	contract, err := svc.PayInstallment(ctx, active.ID, last.ID, buyer.ID, models.PaymentMethodWallet)
	require.NoError(t, err)

	assert.Equal(t, models.InstallmentStatusPaid, contract.Installments[2].Status)
	assert.Equal(t, models.ContractStatusActive, contract.Status)
	assert.True(t, contract.AmountPaid.Equal(contract.PaidTotal()))
}

func TestPayInstallment_CompletesContract(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "50000")
	listing := seedListing(t, db, "30000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	active, err := svc.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 3, models.PaymentMethodWallet)
	require.NoError(t, err)

	var final *models.Contract
	for _, inst := range active.Installments[1:] {
		final, err = svc.PayInstallment(ctx, active.ID, inst.ID, buyer.ID, models.PaymentMethodWallet)
		require.NoError(t, err)
	}

	assert.Equal(t, models.ContractStatusCompleted, final.Status)
	assert.True(t, final.TotalAmount.Equal(final.AmountPaid))

	var updatedListing models.Listing
	require.NoError(t, db.First(&updatedListing, "id = ?", listing.ID).Error)
	assert.Equal(t, models.ListingStatusSold, updatedListing.Status)

	var updatedBuyer models.User
	require.NoError(t, db.First(&updatedBuyer, "id = ?", buyer.ID).Error)
	assert.Equal(t, 0, updatedBuyer.ActiveContracts)
	assert.Equal(t, 0, updatedBuyer.PendingInstallments)
	assert.True(t, decimal.RequireFromString("30000").Equal(updatedBuyer.TotalInvested))
}

func TestPayInstallment_ConcurrentSameInstallment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "50000")
	listing := seedListing(t, db, "30000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	active, err := svc.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 3, models.PaymentMethodWallet)
	require.NoError(t, err)

	second := active.Installments[1]
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PayInstallment(ctx, active.ID, second.ID, buyer.ID, models.PaymentMethodWallet)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	rejected := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyPaid)
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	// The installment was charged exactly once.
	var contract models.Contract
	require.NoError(t, db.First(&contract, "id = ?", active.ID).Error)
	assert.True(t, decimal.RequireFromString("20000").Equal(contract.AmountPaid))
	assert.True(t, contract.AmountPaid.Equal(contract.PaidTotal()))
}

func TestPayInstallment_ConcurrentDifferentInstallments(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "50000")
	listing := seedListing(t, db, "30000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)
	active, err := svc.PurchaseInstallment(ctx, reserved.ID, buyer.ID, 3, models.PaymentMethodWallet)
	require.NoError(t, err)

	// Paying the two remaining installments concurrently: both must land,
	// and amountPaid must equal their sum plus the first payment.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, inst := range []models.Installment{active.Installments[1], active.Installments[2]} {
		wg.Add(1)
		go func(installmentID string) {
			defer wg.Done()
			_, err := svc.PayInstallment(ctx, active.ID, installmentID, buyer.ID, models.PaymentMethodWallet)
			errs <- err
		}(inst.ID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var contract models.Contract
	require.NoError(t, db.First(&contract, "id = ?", active.ID).Error)
	assert.True(t, contract.TotalAmount.Equal(contract.AmountPaid))
	assert.True(t, contract.AmountPaid.Equal(contract.PaidTotal()))
	assert.Equal(t, models.ContractStatusCompleted, contract.Status)

	var updatedListing models.Listing
	require.NoError(t, db.First(&updatedListing, "id = ?", listing.ID).Error)
	assert.Equal(t, models.ListingStatusSold, updatedListing.Status)

	var updatedBuyer models.User
	require.NoError(t, db.First(&updatedBuyer, "id = ?", buyer.ID).Error)
	assert.True(t, decimal.RequireFromString("20000").Equal(updatedBuyer.DepositBalance))
}

func TestGetContract_Ownership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContractService(db, nil, nil, testSecret)
	ctx := context.Background()

	buyer := seedUser(t, db, "0")
	stranger := seedUser(t, db, "0")
	listing := seedListing(t, db, "50000")

	reserved, err := svc.Reserve(ctx, listing.ID, buyer.ID)
	require.NoError(t, err)

	_, err = svc.GetContract(ctx, reserved.ID, buyer.ID, false)
	assert.NoError(t, err)

	_, err = svc.GetContract(ctx, reserved.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrNotContractOwner)

	_, err = svc.GetContract(ctx, reserved.ID, stranger.ID, true)
	assert.NoError(t, err)

	_, err = svc.GetContract(ctx, "missing", buyer.ID, false)
	assert.ErrorIs(t, err, ErrContractNotFound)
}
