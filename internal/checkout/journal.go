package checkout

import (
	"context"
	"time"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/db"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/db/models"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/enums"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Journal persists checkout attempts.
type Journal interface {
	Record(ctx context.Context, attempt *models.CheckoutAttempt) error
	ListBySession(ctx context.Context, sessionID string, params pagination.Params) (pagination.Page[models.CheckoutAttempt], error)
}

type journal struct {
	db *gorm.DB
}

// NewJournal builds a checkout attempt journal bound to the provided DB.
func NewJournal(db *gorm.DB) Journal {
	return &journal{db: db}
}

func (j *journal) Record(ctx context.Context, attempt *models.CheckoutAttempt) error {
	if err := j.db.WithContext(ctx).Create(attempt).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "checkout attempt already recorded")
		}
		return err
	}
	return nil
}

func (j *journal) ListBySession(ctx context.Context, sessionID string, params pagination.Params) (pagination.Page[models.CheckoutAttempt], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.CheckoutAttempt]{}, err
	}

	query := j.db.WithContext(ctx).
		Where("session_id = ?", sessionID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.CheckoutAttempt
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return pagination.Page[models.CheckoutAttempt]{}, err
	}

	return pagination.Trim(rows, params.Limit, func(row models.CheckoutAttempt) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	}), nil
}

// Attempt is the journal entry as returned over the API.
type Attempt struct {
	ID            string                `json:"id"`
	Outcome       enums.CheckoutOutcome `json:"outcome"`
	OrderID       string                `json:"order_id,omitempty"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	ItemCount     int                   `json:"item_count"`
	PaymentMethod enums.PaymentMethod   `json:"payment_method"`
	DeliveryTime  enums.DeliverySlot    `json:"delivery_time"`
	ErrorMessage  string                `json:"error_message,omitempty"`
	DurationMS    int64                 `json:"duration_ms"`
	CreatedAt     time.Time             `json:"created_at"`
}

func attemptFromModel(m models.CheckoutAttempt) Attempt {
	out := Attempt{
		ID:            m.ID.String(),
		Outcome:       m.Outcome,
		TotalAmount:   m.TotalAmount,
		ItemCount:     m.ItemCount,
		PaymentMethod: m.PaymentMethod,
		DeliveryTime:  m.DeliveryTime,
		DurationMS:    m.DurationMS,
		CreatedAt:     m.CreatedAt,
	}
	if m.OrderID != nil {
		out.OrderID = *m.OrderID
	}
	if m.ErrorMessage != nil {
		out.ErrorMessage = *m.ErrorMessage
	}
	return out
}
