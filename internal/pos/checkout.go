package pos

import (
	"strconv"
	"strings"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// Summary is every figure the checkout screen shows, derived from one set of
// inputs. The same inputs always produce the same Summary, so the change
// shown after a sale matches what was charged.
type Summary struct {
	Subtotal      int64                `json:"subtotal"`
	Discount      int64                `json:"discount"`
	FinalTotal    int64                `json:"finalTotal"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	CashReceived  int64                `json:"cashReceived"`
	Change        int64                `json:"change"`
	CanCommit     bool                 `json:"canCommit"`
}

// Calculate derives the checkout figures from the cart subtotal and the raw
// operator inputs. Bad numeric input counts as zero.
func Calculate(subtotal int64, discountInput string, method models.PaymentMethod, cashInput string) Summary {
	discount := ParseAmount(discountInput)
	final := FinalTotal(subtotal, discount)
	cash := ParseAmount(cashInput)
	return Summary{
		Subtotal:      subtotal,
		Discount:      discount,
		FinalTotal:    final,
		PaymentMethod: method,
		CashReceived:  cash,
		Change:        Change(cash, final),
		CanCommit:     CanCommit(method, cash, final),
	}
}

// ParseAmount reads the leading integer of input and returns it, or 0 when
// there is none or it is negative. "5000abc" is 5000 and "12.5" is 12.
func ParseAmount(input string) int64 {
	s := strings.TrimSpace(input)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// only overflow gets here
		return 0
	}
	return n
}

// FinalTotal never goes below zero, whatever the discount.
func FinalTotal(subtotal, discount int64) int64 {
	if discount < 0 {
		discount = 0
	}
	return max(0, subtotal-discount)
}

func Change(cashReceived, finalTotal int64) int64 {
	return max(0, cashReceived-finalTotal)
}

// CanCommit blocks only cash payments that do not cover the total. Non-cash
// methods always pass; their remark is advisory and never checked.
func CanCommit(method models.PaymentMethod, cashReceived, finalTotal int64) bool {
	if method == models.PaymentCash {
		return cashReceived >= finalTotal
	}
	return true
}
