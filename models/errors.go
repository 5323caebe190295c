package models

import "errors"

// Бизнес-ошибки ядра. Обработчики сопоставляют их с HTTP-статусами,
// всё остальное считается сбоем инфраструктуры (500).
var (
	ErrDuplicateAccount    = errors.New("username already exists")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnknownNode         = errors.New("invalid node id")
	ErrNodeAlreadyActive   = errors.New("node already active")
	ErrPaymentUnverified   = errors.New("invalid transaction or amount mismatch")
	ErrUnknownBalanceType  = errors.New("invalid balance type")
	ErrBelowMinimum        = errors.New("amount below withdrawal minimum")
	ErrNotEligible         = errors.New("node purchase required for this withdrawal")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// IsBusinessError сообщает, относится ли ошибка к ожидаемым отказам бизнес-логики.
func IsBusinessError(err error) bool {
	for _, e := range []error{
		ErrDuplicateAccount, ErrInvalidReferralCode, ErrInvalidCredentials,
		ErrUnknownNode, ErrNodeAlreadyActive, ErrPaymentUnverified,
		ErrUnknownBalanceType, ErrBelowMinimum, ErrNotEligible,
		ErrInsufficientFunds, ErrUserNotFound, ErrInvalidAmount,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
