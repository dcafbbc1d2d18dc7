package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/notifier"
)

// ContractService owns the purchase lifecycle: reservation, full purchase,
// installment plans and installment payments. Every public operation runs
// as one database transaction under per-record locks, so a failure rolls
// the whole step back and two concurrent mutations of the same contract are
// serialized.
type ContractService struct {
	db     *gorm.DB
	bus    *notifier.Bus
	stats  *StatsService
	locks  *keyedMutex
	secret string
}

func NewContractService(db *gorm.DB, bus *notifier.Bus, stats *StatsService, secret string) *ContractService {
	return &ContractService{
		db:     db,
		bus:    bus,
		stats:  stats,
		locks:  recordLocks,
		secret: secret,
	}
}

// Reserve takes an open listing off the market for the buyer and opens a
// pending contract over its full price.
func (s *ContractService) Reserve(ctx context.Context, listingID, buyerID string) (*models.Contract, error) {
	unlockListing := s.locks.Lock("listing:" + listingID)
	defer unlockListing()
	unlockUser := s.locks.Lock("user:" + buyerID)
	defer unlockUser()

	var contract models.Contract
	var stats *models.PlatformStats

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}

		switch listing.Status {
		case models.ListingStatusSold:
			return ErrAlreadySold
		case models.ListingStatusReserved:
			return ErrAlreadyReserved
		}

		var buyer models.User
		if err := tx.First(&buyer, "id = ?", buyerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		now := time.Now()
		listing.Status = models.ListingStatusReserved
		listing.ReservedBy = buyerID
		listing.ReservedAt = &now
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}

		contract = models.Contract{
			ID:           uuid.New().String(),
			BuyerID:      buyerID,
			ListingID:    listing.ID,
			ListingTitle: listing.Label(),
			ListingKind:  listing.Kind,
			TotalAmount:  listing.Price,
			AmountPaid:   decimal.Zero,
			Status:       models.ContractStatusPending,
		}
		if err := tx.Create(&contract).Error; err != nil {
			return err
		}

		if err := recalcUserCounters(tx, &buyer); err != nil {
			return err
		}
		if err := saveUser(tx, &buyer); err != nil {
			return err
		}

		var err error
		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(notifier.Event{Kind: notifier.KindListing, Op: notifier.OpUpdated, ID: listingID})
	s.publish(notifier.Event{Kind: notifier.KindContract, Op: notifier.OpCreated, ID: contract.ID, Payload: &contract})
	s.afterCommit(ctx, buyerID, stats)
	return &contract, nil
}

// PurchaseFull settles a pending contract in one payment. Wallet payments
// debit the deposit balance; crypto payments are assumed settled by the
// simulated gateway. The listing is sold and the contract completed.
func (s *ContractService) PurchaseFull(ctx context.Context, contractID, buyerID, method string) (*models.Contract, error) {
	unlockContract := s.locks.Lock("contract:" + contractID)
	defer unlockContract()

	snap, err := s.contractSnapshot(ctx, contractID)
	if err != nil {
		return nil, err
	}
	unlockListing := s.locks.Lock("listing:" + snap.ListingID)
	defer unlockListing()
	unlockUser := s.locks.Lock("user:" + buyerID)
	defer unlockUser()

	var contract models.Contract
	var txn models.Transaction
	var stats *models.PlatformStats

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		buyer, err := s.loadPendingContract(tx, &contract, contractID, buyerID)
		if err != nil {
			return err
		}

		before := buyer.DepositBalance
		if method == models.PaymentMethodWallet {
			if err := debit(buyer, contract.TotalAmount); err != nil {
				return err
			}
		}

		now := time.Now()
		contract.AmountPaid = contract.TotalAmount
		contract.Status = models.ContractStatusCompleted
		contract.PaymentType = models.PaymentTypeFull
		contract.LastPaymentAt = &now
		contract.Version++
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		if err := s.sellListing(tx, contract.ListingID); err != nil {
			return err
		}

		txn = models.Transaction{
			UserID:        buyerID,
			ContractID:    contract.ID,
			ListingID:     contract.ListingID,
			ListingTitle:  contract.ListingTitle,
			Type:          models.TransactionTypeFullPayment,
			Amount:        contract.TotalAmount,
			BalanceBefore: before,
			BalanceAfter:  buyer.DepositBalance,
			Method:        method,
			Description:   "Full payment for " + contract.ListingTitle,
		}
		if err := appendTransaction(tx, s.secret, &txn); err != nil {
			return err
		}

		if err := recalcUserCounters(tx, buyer); err != nil {
			return err
		}
		if err := saveUser(tx, buyer); err != nil {
			return err
		}

		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(notifier.Event{Kind: notifier.KindContract, Op: notifier.OpUpdated, ID: contract.ID, Payload: &contract})
	s.publish(notifier.Event{Kind: notifier.KindListing, Op: notifier.OpUpdated, ID: contract.ListingID})
	s.publish(notifier.Event{Kind: notifier.KindTransaction, Op: notifier.OpCreated, ID: txn.ID, Payload: &txn})
	s.afterCommit(ctx, buyerID, stats)
	return &contract, nil
}

// PurchaseInstallment attaches a monthly payment plan to a pending contract
// and activates it. When paying from the wallet the first installment is
// settled immediately as part of the same transaction.
func (s *ContractService) PurchaseInstallment(ctx context.Context, contractID, buyerID string, periods int, method string) (*models.Contract, error) {
	unlockContract := s.locks.Lock("contract:" + contractID)
	defer unlockContract()

	snap, err := s.contractSnapshot(ctx, contractID)
	if err != nil {
		return nil, err
	}
	unlockListing := s.locks.Lock("listing:" + snap.ListingID)
	defer unlockListing()
	unlockUser := s.locks.Lock("user:" + buyerID)
	defer unlockUser()

	var contract models.Contract
	var txn *models.Transaction
	var stats *models.PlatformStats

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		buyer, err := s.loadPendingContract(tx, &contract, contractID, buyerID)
		if err != nil {
			return err
		}

		plan, err := BuildInstallmentPlan(contract.TotalAmount, periods, time.Now())
		if err != nil {
			return err
		}

		now := time.Now()
		contract.PaymentType = models.PaymentTypeInstallment
		contract.Status = models.ContractStatusActive
		contract.AmountPaid = decimal.Zero

		if method == models.PaymentMethodWallet {
			first := &plan[0]
			before := buyer.DepositBalance
			if err := debit(buyer, first.Amount); err != nil {
				return err
			}
			first.Status = models.InstallmentStatusPaid
			first.PaidAt = now.Format(dateLayout)
			if len(plan) > 1 {
				plan[1].Status = models.InstallmentStatusPending
			}
			contract.AmountPaid = first.Amount
			contract.LastPaymentAt = &now

			txn = &models.Transaction{
				UserID:        buyerID,
				ContractID:    contract.ID,
				InstallmentID: first.ID,
				ListingID:     contract.ListingID,
				ListingTitle:  contract.ListingTitle,
				Type:          models.TransactionTypeInstallment,
				Amount:        first.Amount,
				BalanceBefore: before,
				BalanceAfter:  buyer.DepositBalance,
				Method:        method,
				Description:   "First installment for " + contract.ListingTitle,
			}
			if err := appendTransaction(tx, s.secret, txn); err != nil {
				return err
			}
		}

		contract.Installments = plan
		contract.Version++
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		if err := recalcUserCounters(tx, buyer); err != nil {
			return err
		}
		if err := saveUser(tx, buyer); err != nil {
			return err
		}

		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(notifier.Event{Kind: notifier.KindContract, Op: notifier.OpUpdated, ID: contract.ID, Payload: &contract})
	if txn != nil {
		s.publish(notifier.Event{Kind: notifier.KindTransaction, Op: notifier.OpCreated, ID: txn.ID, Payload: txn})
	}
	s.afterCommit(ctx, buyerID, stats)
	return &contract, nil
}

// PayInstallment settles one installment of an active plan. Installments
// may be paid in any order; paying the last outstanding one completes the
// contract and sells the listing.
func (s *ContractService) PayInstallment(ctx context.Context, contractID, installmentID, buyerID, method string) (*models.Contract, error) {
	unlockContract := s.locks.Lock("contract:" + contractID)
	defer unlockContract()

	snap, err := s.contractSnapshot(ctx, contractID)
	if err != nil {
		return nil, err
	}
	unlockListing := s.locks.Lock("listing:" + snap.ListingID)
	defer unlockListing()
	unlockUser := s.locks.Lock("user:" + buyerID)
	defer unlockUser()

	var contract models.Contract
	var txn models.Transaction
	var stats *models.PlatformStats
	completed := false

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&contract, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if contract.BuyerID != buyerID {
			return ErrNotContractOwner
		}

		inst := contract.Installment(installmentID)
		if inst == nil {
			return ErrInstallmentNotFound
		}
		if inst.Status == models.InstallmentStatusPaid {
			return ErrAlreadyPaid
		}

		var buyer models.User
		if err := tx.First(&buyer, "id = ?", buyerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		before := buyer.DepositBalance
		if method == models.PaymentMethodWallet {
			if err := debit(&buyer, inst.Amount); err != nil {
				return err
			}
		}

		now := time.Now()
		inst.Status = models.InstallmentStatusPaid
		inst.PaidAt = now.Format(dateLayout)
		promoteNextInstallment(contract.Installments)

		contract.AmountPaid = contract.AmountPaid.Add(inst.Amount)
		contract.LastPaymentAt = &now
		if contract.AmountPaid.GreaterThanOrEqual(contract.TotalAmount) {
			contract.Status = models.ContractStatusCompleted
			completed = true
			if err := s.sellListing(tx, contract.ListingID); err != nil {
				return err
			}
		}
		contract.Version++
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		txn = models.Transaction{
			UserID:        buyerID,
			ContractID:    contract.ID,
			InstallmentID: inst.ID,
			ListingID:     contract.ListingID,
			ListingTitle:  contract.ListingTitle,
			Type:          models.TransactionTypeInstallment,
			Amount:        inst.Amount,
			BalanceBefore: before,
			BalanceAfter:  buyer.DepositBalance,
			Method:        method,
			Description:   "Installment payment for " + contract.ListingTitle,
		}
		if err := appendTransaction(tx, s.secret, &txn); err != nil {
			return err
		}

		if err := recalcUserCounters(tx, &buyer); err != nil {
			return err
		}
		if err := saveUser(tx, &buyer); err != nil {
			return err
		}

		var serr error
		stats, serr = refreshPlatformStats(tx)
		return serr
	})
	if err != nil {
		return nil, err
	}

	s.publish(notifier.Event{Kind: notifier.KindContract, Op: notifier.OpUpdated, ID: contract.ID, Payload: &contract})
	s.publish(notifier.Event{Kind: notifier.KindTransaction, Op: notifier.OpCreated, ID: txn.ID, Payload: &txn})
	if completed {
		s.publish(notifier.Event{Kind: notifier.KindListing, Op: notifier.OpUpdated, ID: contract.ListingID})
	}
	s.afterCommit(ctx, buyerID, stats)
	return &contract, nil
}

// GetContract returns one contract, enforcing ownership unless the caller
// is an admin.
func (s *ContractService) GetContract(ctx context.Context, contractID, callerID string, isAdmin bool) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.WithContext(ctx).First(&contract, "id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	if !isAdmin && contract.BuyerID != callerID {
		return nil, ErrNotContractOwner
	}
	return &contract, nil
}

// ListUserContracts returns the buyer's contracts, newest first.
func (s *ContractService) ListUserContracts(ctx context.Context, buyerID string) ([]models.Contract, error) {
	var contracts []models.Contract
	err := s.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&contracts).Error
	return contracts, err
}

func (s *ContractService) contractSnapshot(ctx context.Context, contractID string) (*models.Contract, error) {
	var snap models.Contract
	if err := s.db.WithContext(ctx).First(&snap, "id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return &snap, nil
}

// loadPendingContract fetches the contract and its buyer, checking
// ownership and that the contract still awaits its payment decision.
func (s *ContractService) loadPendingContract(tx *gorm.DB, contract *models.Contract, contractID, buyerID string) (*models.User, error) {
	if err := tx.First(contract, "id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	if contract.BuyerID != buyerID {
		return nil, ErrNotContractOwner
	}
	if contract.Status != models.ContractStatusPending {
		return nil, ErrContractNotPending
	}

	var buyer models.User
	if err := tx.First(&buyer, "id = ?", buyerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &buyer, nil
}

func (s *ContractService) sellListing(tx *gorm.DB, listingID string) error {
	var listing models.Listing
	if err := tx.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	listing.Status = models.ListingStatusSold
	return tx.Save(&listing).Error
}

// promoteNextInstallment keeps one installment actionable: if nothing is
// pending after a payment, the earliest upcoming installment becomes
// pending.
func promoteNextInstallment(installments []models.Installment) {
	for _, inst := range installments {
		if inst.Status == models.InstallmentStatusPending {
			return
		}
	}
	for i := range installments {
		if installments[i].Status == models.InstallmentStatusUpcoming {
			installments[i].Status = models.InstallmentStatusPending
			return
		}
	}
}

func (s *ContractService) publish(e notifier.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func (s *ContractService) afterCommit(ctx context.Context, userID string, stats *models.PlatformStats) {
	s.publish(notifier.Event{Kind: notifier.KindUser, Op: notifier.OpUpdated, ID: userID})
	if stats != nil {
		s.publish(notifier.Event{Kind: notifier.KindStats, Op: notifier.OpUpdated, ID: "global", Payload: stats})
		if s.stats != nil {
			s.stats.cache(ctx, stats)
		}
	}
}
