package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/notifier"
)

// WalletService maintains each user's deposit balance. Deposits are the
// only externally reachable write; debits happen inside the contract
// manager's transactions. The transaction table is the authoritative
// ledger, the balance column a derived convenience.
type WalletService struct {
	db     *gorm.DB
	bus    *notifier.Bus
	stats  *StatsService
	locks  *keyedMutex
	secret string
}

func NewWalletService(db *gorm.DB, bus *notifier.Bus, stats *StatsService, secret string) *WalletService {
	return &WalletService{
		db:     db,
		bus:    bus,
		stats:  stats,
		locks:  recordLocks,
		secret: secret,
	}
}

// Deposit credits the user's wallet and appends the matching ledger entry
// in one transaction. cryptoHash is the simulated on-chain reference issued
// by the gateway.
func (s *WalletService) Deposit(ctx context.Context, userID string, amount decimal.Decimal, cryptoHash string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	unlock := s.locks.Lock("user:" + userID)
	defer unlock()

	var txn models.Transaction
	var stats *models.PlatformStats

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A replayed gateway callback carries the same reference; it must
		// not credit the wallet twice.
		if cryptoHash != "" {
			var count int64
			if err := tx.Model(&models.Transaction{}).
				Where("type = ? AND crypto_hash = ?", models.TransactionTypeDeposit, cryptoHash).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateDeposit
			}
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		before := user.DepositBalance
		user.DepositBalance = user.DepositBalance.Add(amount)

		txn = models.Transaction{
			UserID:        userID,
			Type:          models.TransactionTypeDeposit,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  user.DepositBalance,
			Method:        models.PaymentMethodCrypto,
			CryptoHash:    cryptoHash,
			Description:   "USDT deposit to wallet",
		}
		if err := appendTransaction(tx, s.secret, &txn); err != nil {
			return err
		}

		if err := saveUser(tx, &user); err != nil {
			return err
		}

		var err error
		stats, err = refreshPlatformStats(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(notifier.Event{Kind: notifier.KindTransaction, Op: notifier.OpCreated, ID: txn.ID, Payload: &txn})
		s.bus.Publish(notifier.Event{Kind: notifier.KindUser, Op: notifier.OpUpdated, ID: userID})
		if stats != nil {
			s.bus.Publish(notifier.Event{Kind: notifier.KindStats, Op: notifier.OpUpdated, ID: "global", Payload: stats})
		}
	}
	if s.stats != nil && stats != nil {
		s.stats.cache(ctx, stats)
	}
	return &txn, nil
}

// Balance replays the user's ledger: deposits add, wallet-funded payments
// and withdrawals subtract. This is the authoritative figure; the stored
// column must always agree with it.
func (s *WalletService) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.TransactionStatusCompleted).
		Order("created_at asc").
		Find(&txns).Error
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case models.TransactionTypeDeposit:
			balance = balance.Add(t.Amount)
		case models.TransactionTypeWithdrawal:
			balance = balance.Sub(t.Amount)
		case models.TransactionTypeInstallment, models.TransactionTypeFullPayment:
			if t.Method == models.PaymentMethodWallet {
				balance = balance.Sub(t.Amount)
			}
		}
	}
	return balance, nil
}

// StoredBalance returns the denormalized balance column.
func (s *WalletService) StoredBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.DepositBalance, nil
}

// Transactions returns the user's ledger entries, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&txns).Error
	return txns, err
}

// LedgerReport is the result of auditing one user's ledger.
type LedgerReport struct {
	UserID          string          `json:"userId"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	Consistent      bool            `json:"consistent"`
	TamperedRows    []string        `json:"tamperedRows"`
}

// VerifyLedger replays the ledger against the stored balance and rechecks
// every entry's HMAC seal.
func (s *WalletService) VerifyLedger(ctx context.Context, userID string) (*LedgerReport, error) {
	stored, err := s.StoredBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	computed, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&txns).Error; err != nil {
		return nil, err
	}

	report := &LedgerReport{
		UserID:          userID,
		StoredBalance:   stored,
		ComputedBalance: computed,
		TamperedRows:    []string{},
	}
	for _, t := range txns {
		if t.Hash != t.GenerateHash(s.secret) {
			report.TamperedRows = append(report.TamperedRows, t.ID)
		}
	}
	report.Consistent = stored.Equal(computed) && len(report.TamperedRows) == 0
	return report, nil
}
