package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Branch struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Address   pgtype.Text `json:"address"`
	Phone     pgtype.Text `json:"phone"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	BranchID       uuid.UUID `json:"branch_id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Hall struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Table struct {
	ID             uuid.UUID   `json:"id"`
	HallID         uuid.UUID   `json:"hall_id"`
	BranchID       uuid.UUID   `json:"branch_id"`
	Name           string      `json:"name"`
	Status         string      `json:"status"`
	CurrentOrderID pgtype.UUID `json:"current_order_id"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type Dish struct {
	ID        uuid.UUID      `json:"id"`
	BranchID  uuid.UUID      `json:"branch_id"`
	Name      string         `json:"name"`
	Category  pgtype.Text    `json:"category"`
	Price     pgtype.Numeric `json:"price"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Customer struct {
	ID        uuid.UUID   `json:"id"`
	BranchID  uuid.UUID   `json:"branch_id"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	Email     pgtype.Text `json:"email"`
	Notes     pgtype.Text `json:"notes"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Order struct {
	ID                 uuid.UUID          `json:"id"`
	BranchID           uuid.UUID          `json:"branch_id"`
	OrderNo            int32              `json:"-"`
	OrderNumber        string             `json:"order_number"`
	Terminal           pgtype.Text        `json:"terminal"`
	OrderType          string             `json:"order_type"`
	Status             string             `json:"status"`
	HallID             pgtype.UUID        `json:"hall_id"`
	TableID            pgtype.UUID        `json:"table_id"`
	CustomerID         pgtype.UUID        `json:"customer_id"`
	Notes              pgtype.Text        `json:"notes"`
	Subtotal           pgtype.Numeric     `json:"subtotal"`
	ServiceCharge      pgtype.Numeric     `json:"service_charge"`
	DiscountPercentage pgtype.Numeric     `json:"discount_percentage"`
	DiscountAmount     pgtype.Numeric     `json:"discount_amount"`
	TotalAmount        pgtype.Numeric     `json:"total_amount"`
	PaymentMethod      pgtype.Text        `json:"payment_method"`
	CreatedBy          uuid.UUID          `json:"created_by"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	CompletedAt        pgtype.Timestamptz `json:"completed_at"`
}

type OrderItem struct {
	ID        uuid.UUID      `json:"id"`
	OrderID   uuid.UUID      `json:"order_id"`
	DishID    uuid.UUID      `json:"dish_id"`
	DishName  string         `json:"dish_name"`
	UnitPrice pgtype.Numeric `json:"unit_price"`
	Quantity  int32          `json:"quantity"`
	LineTotal pgtype.Numeric `json:"line_total"`
	Status    string         `json:"status"`
	Notes     pgtype.Text    `json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Bill struct {
	ID                 uuid.UUID          `json:"id"`
	BranchID           uuid.UUID          `json:"branch_id"`
	OrderID            uuid.UUID          `json:"order_id"`
	BillNo             int32              `json:"-"`
	BillNumber         string             `json:"bill_number"`
	Terminal           pgtype.Text        `json:"terminal"`
	TotalAmount        pgtype.Numeric     `json:"total_amount"`
	ServiceCharge      pgtype.Numeric     `json:"service_charge"`
	DiscountPercentage pgtype.Numeric     `json:"discount_percentage"`
	DiscountAmount     pgtype.Numeric     `json:"discount_amount"`
	GrandTotal         pgtype.Numeric     `json:"grand_total"`
	PaymentMethod      string             `json:"payment_method"`
	PaymentStatus      string             `json:"payment_status"`
	CustomerID         pgtype.UUID        `json:"customer_id"`
	CashReceived       pgtype.Numeric     `json:"cash_received"`
	ChangeAmount       pgtype.Numeric     `json:"change_amount"`
	PayRequestID       pgtype.Text        `json:"-"`
	GeneratedBy        uuid.UUID          `json:"generated_by"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	PaidAt             pgtype.Timestamptz `json:"paid_at"`
}
