package models

import (
	"strings"
	"time"
)

// ==========================================
// MENU & PROMO
// ==========================================

type Category string

const (
	CategoryFood  Category = "FOOD"
	CategoryDrink Category = "DRINK"
)

// ParseCategory accepts both the current spelling and the legacy Indonesian
// one still found in older rows (MAKANAN / MINUMAN).
func ParseCategory(s string) (Category, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FOOD", "MAKANAN":
		return CategoryFood, true
	case "DRINK", "MINUMAN":
		return CategoryDrink, true
	}
	return "", false
}

// MenuItem prices are in the minor currency unit (rupiah has no subunit in
// practice, so 10000 means Rp 10.000).
type MenuItem struct {
	ID       string   `gorm:"primaryKey" json:"id"`
	Name     string   `gorm:"not null" json:"name"`
	Category Category `gorm:"type:varchar(20);not null" json:"category"`
	Price    int64    `gorm:"not null" json:"price"`
}

func (MenuItem) TableName() string { return "menu" }

type PromoText struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Content string `gorm:"not null" json:"content"`
	Active  bool   `gorm:"default:true" json:"active"`
}

func (PromoText) TableName() string { return "promo" }

// ==========================================
// POS & TRANSACTIONS
// ==========================================

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentQRIS     PaymentMethod = "QRIS"
)

// ParsePaymentMethod reports whether s names a known payment method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentCash, PaymentTransfer, PaymentQRIS:
		return m, true
	}
	return "", false
}

// Transaction is the persisted sale header. Rows are written once and never
// updated.
type Transaction struct {
	ID            string              `gorm:"primaryKey" json:"id"`
	Date          time.Time           `gorm:"not null;index" json:"date"`
	UserID        string              `gorm:"not null" json:"userId"`
	TotalAmount   int64               `gorm:"not null" json:"totalAmount"`
	Discount      int64               `gorm:"default:0" json:"discount"`
	FinalAmount   int64               `gorm:"not null" json:"finalAmount"`
	PaymentMethod PaymentMethod       `gorm:"not null" json:"paymentMethod"`
	Remark        string              `json:"remark"`
	Details       []TransactionDetail `gorm:"foreignKey:TransactionID" json:"details"`
}

// TransactionDetail is a frozen copy of a cart line at commit time, so later
// menu edits never change historical totals.
type TransactionDetail struct {
	ID            uint   `gorm:"primaryKey" json:"-"`
	TransactionID string `gorm:"not null;index" json:"-"`
	MenuID        string `gorm:"not null" json:"menuId"`
	MenuName      string `gorm:"not null" json:"menuName"`
	Price         int64  `gorm:"not null" json:"price"`
	Quantity      int    `gorm:"not null" json:"quantity"`
	Subtotal      int64  `gorm:"not null" json:"subtotal"`
}

// ==========================================
// AUTH & USERS
// ==========================================

type Role string

const (
	RoleUser    Role = "USER" // kasir
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Username string `gorm:"not null" json:"username"`
	Role     Role   `gorm:"type:varchar(20);not null" json:"role"`

	// PIN is compared as plain text; json:"-" keeps it out of every response.
	PIN string `gorm:"column:pin;not null" json:"-"`
}

type LoginLog struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null" json:"userId"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
