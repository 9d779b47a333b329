package model

import "time"

// Scope of an entitlement or price record.
const (
	ScopeModule = "module"
	ScopeGlobal = "global"
)

// Question tiers.
const (
	TierFree = "free"
	TierPaid = "paid"
)

type UserEntitlement struct {
	UserID       string `gorm:"primaryKey;size:64;not null"`
	GlobalAccess bool   `gorm:"not null;default:false"`
	// Legacy alias for global_access, kept in lockstep for older access
	// checks elsewhere in the app.
	IsPaid    bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ModulePurchase marks a single module as purchased by a user. Row presence
// is the entitlement fact; rows are never deleted by this subsystem.
type ModulePurchase struct {
	UserID    string `gorm:"primaryKey;size:64;not null"`
	ModuleKey string `gorm:"primaryKey;size:128;not null"`
	OrderID   string `gorm:"size:64;index"` // gateway order that granted this
	CreatedAt time.Time
}

type Price struct {
	// Normalized module key, or the reserved global-pricing key.
	Key       string  `gorm:"primaryKey;size:128;not null"`
	Scope     string  `gorm:"size:16;index;not null"` // module, global
	Amount    float64 `gorm:"not null"`               // major units
	Currency  string  `gorm:"size:8;not null"`
	UpdatedAt time.Time
}

type Question struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	ModuleKey string `gorm:"size:128;index;not null"`
	Title     string `gorm:"size:256;not null"`
	Tier      string `gorm:"size:16;index;not null"` // free, paid
	Body      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReconciliationEntry records a verified payment whose entitlement write
// could not be applied, or a replayed grant, for manual reconciliation.
type ReconciliationEntry struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;index;not null"`
	Scope     string `gorm:"size:16;not null"`
	ModuleKey string `gorm:"size:128"`
	OrderID   string `gorm:"size:64;index"`
	PaymentID string `gorm:"size:64"`
	Reason    string `gorm:"size:256;not null"`
	CreatedAt time.Time
}
