package models

import "time"

// Referral — связь «кто пригласил → кто пришёл». Создаётся при регистрации
// по реферальному коду; становится валидной ровно один раз — при первой
// покупке ноды приглашённым пользователем.
type Referral struct {
	ID          string     `json:"id" db:"id"`
	ReferrerID  string     `json:"referrer_id" db:"referrer_id"`
	ReferredID  string     `json:"referred_user_id" db:"referred_user_id"`
	IsValid     bool       `json:"is_valid" db:"is_valid"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty" db:"validated_at"`
}

// ReferralInfo — строка отчёта по рефералам для API.
type ReferralInfo struct {
	Username string `json:"username"`
	JoinedAt string `json:"joined_at"`
	IsValid  bool   `json:"is_valid"`
}
