// Package domain defines the persistence models for the product
// verification core: manufacturers, products, batches, verification codes,
// the append-only verification log, and investigative incidents. These types
// are mapped with GORM and form the core data layer of the application.
package domain

import (
	"time"
)

// Manufacturer represents a registered producer whose products carry
// verification codes. Manufacturer onboarding and review happen outside
// this core; rows are read-only here.
type Manufacturer struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"          gorm:"type:varchar(255);not null"`
	Country      string    `json:"country"       gorm:"type:varchar(64)"`
	ContactEmail string    `json:"contact_email" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Manufacturer.
func (Manufacturer) TableName() string { return "manufacturers" }

// Product is a catalog entry owned by a manufacturer. The category string
// drives the deterministic product-guide fallback (pharmaceutical, food,
// cosmetic, generic). Read-only from this core's perspective.
type Product struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ManufacturerID string    `json:"manufacturer_id" gorm:"type:char(36);not null;index"`
	Name           string    `json:"name"            gorm:"type:varchar(255);not null"`
	Category       string    `json:"category"        gorm:"type:varchar(100);index"`
	Description    string    `json:"description"     gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Manufacturer Manufacturer `json:"-" gorm:"foreignKey:ManufacturerID;references:ID"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Batch groups a production run of a product. Its expiration date feeds the
// state classifier (PRODUCT_EXPIRED). Read-only here; batch administration
// lives in the manufacturer portal.
type Batch struct {
	ID                string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	ProductID         string    `json:"product_id"         gorm:"type:char(36);not null;index"`
	BatchNumber       string    `json:"batch_number"       gorm:"type:varchar(64);not null"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
	ExpirationDate    time.Time `json:"expiration_date"    gorm:"index"`
	Quantity          int       `json:"quantity"           gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the database table name for Batch.
func (Batch) TableName() string { return "batches" }

// VerificationCode is the unit-level authenticity token printed on a product.
// CodeValue is immutable once issued. The usage fields are mutated only by
// the usage tracker, and only through atomic conditional updates so that two
// concurrent scans of the same code can never both be told it was unused.
//
// Fields:
//   - CodeValue: unique, normalized (upper-case) token.
//   - IsUsed: set exactly once, on the first GENUINE verification.
//   - UsedCount: monotonic; also incremented on repeat scans of a used code
//     to track pressure on a compromised code.
//   - UsedAt / FirstVerifiedAt: set by the winning first scan, then frozen.
type VerificationCode struct {
	ID              string     `json:"id"                gorm:"type:char(36);primaryKey"`
	CodeValue       string     `json:"code_value"        gorm:"type:varchar(64);not null;uniqueIndex:ux_codes_value"`
	BatchID         string     `json:"batch_id"          gorm:"type:char(36);not null;index"`
	ManufacturerID  string     `json:"manufacturer_id"   gorm:"type:char(36);not null;index"`
	IsUsed          bool       `json:"is_used"           gorm:"not null;default:false;index"`
	UsedCount       int        `json:"used_count"        gorm:"not null;default:0"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	FirstVerifiedAt *time.Time `json:"first_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Batch        Batch        `json:"-" gorm:"foreignKey:BatchID;references:ID"`
	Manufacturer Manufacturer `json:"-" gorm:"foreignKey:ManufacturerID;references:ID"`
}

// TableName returns the database table name for VerificationCode.
func (VerificationCode) TableName() string { return "verification_codes" }

// VerificationLog is the append-only audit record of one verification
// attempt. Writes are fire-and-forget: a failed log insert must never abort
// the user-facing verification result. Coordinates are stored only when the
// caller granted location consent.
type VerificationLog struct {
	ID             string            `json:"id"               gorm:"type:char(36);primaryKey"`
	CodeValue      string            `json:"code_value"       gorm:"type:varchar(64);not null;index"`
	CodeID         *string           `json:"code_id,omitempty"         gorm:"type:char(36);index"`
	BatchID        *string           `json:"batch_id,omitempty"        gorm:"type:char(36)"`
	ManufacturerID *string           `json:"manufacturer_id,omitempty" gorm:"type:char(36)"`
	UserID         string            `json:"user_id"          gorm:"type:varchar(64);index:idx_logs_user,priority:1"`
	Latitude       *float64          `json:"latitude,omitempty"`
	Longitude      *float64          `json:"longitude,omitempty"`
	State          VerificationState `json:"state"            gorm:"type:varchar(32);not null"`
	RiskScore      float64           `json:"risk_score"       gorm:"not null;default:0"`
	CreatedAt      time.Time         `json:"created_at"       gorm:"index:idx_logs_user,priority:2"`
}

// TableName returns the database table name for VerificationLog.
func (VerificationLog) TableName() string { return "verification_logs" }

// Incident is an investigative record opened for regulator follow-up when a
// verification produces a DO_NOT_USE or REPORT_TO_NAFDAC decision. Incidents
// always open with StatusOpen; the resolution workflow is out of scope here.
type Incident struct {
	ID            string            `json:"id"             gorm:"type:char(36);primaryKey"`
	CodeValue     string            `json:"code_value"     gorm:"type:varchar(64);not null;index"`
	State         VerificationState `json:"state"          gorm:"type:varchar(32);not null"`
	RiskScore     float64           `json:"risk_score"     gorm:"not null;default:0"`
	TrustDecision TrustDecision     `json:"trust_decision" gorm:"type:varchar(32);not null"`
	Status        IncidentStatus    `json:"status"         gorm:"type:varchar(16);not null;default:'OPEN'"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TableName returns the database table name for Incident.
func (Incident) TableName() string { return "incidents" }
