package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutAttempt journals one order submission, successful or not.
type CheckoutAttempt struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	SessionID     string                `gorm:"column:session_id;not null"`
	UserID        string                `gorm:"column:user_id;not null"`
	Outcome       enums.CheckoutOutcome `gorm:"column:outcome;not null"`
	OrderID       *string               `gorm:"column:order_id"`
	TotalAmount   decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ItemCount     int                   `gorm:"column:item_count;not null"`
	PaymentMethod enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	DeliveryTime  enums.DeliverySlot    `gorm:"column:delivery_time;not null"`
	ErrorMessage  *string               `gorm:"column:error_message"`
	DurationMS    int64                 `gorm:"column:duration_ms;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (CheckoutAttempt) TableName() string {
	return "checkout_attempts"
}

// BeforeCreate assigns the primary key so inserts work without gen_random_uuid().
func (a *CheckoutAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
