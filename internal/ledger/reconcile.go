package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// Storage column names and their in-memory counterparts. The first key
// found wins.
var (
	keysID       = []string{"id", "ID"}
	keysDate     = []string{"date", "created_at", "createdAt", "transaction_time"}
	keysUserID   = []string{"user_id", "userId", "cashier_id"}
	keysTotal    = []string{"total_amount", "totalAmount"}
	keysDiscount = []string{"discount"}
	keysFinal    = []string{"final_amount", "finalAmount"}
	keysMethod   = []string{"payment_method", "paymentMethod"}
	keysRemark   = []string{"remark"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Normalize turns one raw row into a canonical Transaction. It never fails:
// every field falls back to a safe default, and the names of the fields
// that did are returned so the caller can log them. Details are left empty.
func Normalize(row RawRow, now time.Time) (models.Transaction, []string) {
	var defaulted []string
	field := func(name string, keys []string) any {
		v, ok := lookup(row, keys)
		if !ok {
			defaulted = append(defaulted, name)
		}
		return v
	}

	tx := models.Transaction{
		ID:          SafeString(field("id", keysID)),
		UserID:      SafeString(field("userId", keysUserID)),
		TotalAmount: SafeInt(field("totalAmount", keysTotal)),
		FinalAmount: SafeInt(field("finalAmount", keysFinal)),
		Remark:      SafeString(lookupValue(row, keysRemark)),
		Discount:    SafeInt(lookupValue(row, keysDiscount)),
		Details:     []models.TransactionDetail{},
	}

	date, ok := SafeTime(field("date", keysDate), now)
	if !ok && !slices.Contains(defaulted, "date") {
		defaulted = append(defaulted, "date")
	}
	tx.Date = date

	rawMethod := field("paymentMethod", keysMethod)
	tx.PaymentMethod = SafePaymentMethod(rawMethod)
	if rawMethod != nil && string(tx.PaymentMethod) != strings.ToUpper(strings.TrimSpace(SafeString(rawMethod))) {
		defaulted = append(defaulted, "paymentMethod")
	}

	return tx, defaulted
}

// ReconcileRows normalizes every row on its own, so one malformed row never
// takes the others down with it.
func ReconcileRows(rows []RawRow, now time.Time) []models.Transaction {
	out := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, _ := Normalize(row, now)
		out = append(out, tx)
	}
	return out
}

// ReconcileJSON reconciles a JSON payload of rows. Anything other than a
// JSON array yields an empty slice. Array elements that are not objects are
// normalized as empty rows.
func ReconcileJSON(payload []byte, now time.Time) []models.Transaction {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return []models.Transaction{}
	}
	rows := make([]RawRow, 0, len(items))
	for _, item := range items {
		row := RawRow{}
		dec := json.NewDecoder(strings.NewReader(string(item)))
		dec.UseNumber()
		if err := dec.Decode(&row); err != nil {
			row = RawRow{}
		}
		rows = append(rows, row)
	}
	return ReconcileRows(rows, now)
}

// SafeString renders v as a string; nil becomes "".
func SafeString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// SafeInt coerces numbers and numeric strings ("25000", "25000.00",
// json.Number) to an int64 amount, truncating any fraction. Anything else,
// including NaN and out-of-range values, is 0.
func SafeInt(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return clampUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return clampUint(x)
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case bool:
		return 0
	case decimal.Decimal:
		return decimalToInt(x)
	case []byte:
		return SafeInt(string(x))
	case json.Number:
		return SafeInt(string(x))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return decimalToInt(d)
	default:
		return SafeInt(SafeString(x))
	}
}

// SafePaymentMethod defaults to CASH for absent or unknown values.
func SafePaymentMethod(v any) models.PaymentMethod {
	if m, ok := models.ParsePaymentMethod(SafeString(v)); ok {
		return m
	}
	return models.PaymentCash
}

// SafeTime parses the timestamp shapes seen at the storage boundary. When v
// cannot be read as a time it returns now and false.
func SafeTime(v any, now time.Time) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return now, false
		}
		return x, true
	case *time.Time:
		if x == nil || x.IsZero() {
			return now, false
		}
		return *x, true
	case int64, int, float64, json.Number:
		ms := SafeInt(x)
		if ms <= 0 {
			return now, false
		}
		return time.UnixMilli(ms), true
	}

	s := strings.TrimSpace(SafeString(v))
	if s == "" {
		return now, false
	}
	for _, layout := range timeLayouts {
		// zone-less layouts are read as local wall-clock time
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return now, false
}

func lookup(row RawRow, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupValue(row RawRow, keys []string) any {
	v, _ := lookup(row, keys)
	return v
}

func floatToInt(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func decimalToInt(d decimal.Decimal) int64 {
	t := d.Truncate(0)
	if !t.BigInt().IsInt64() {
		return 0
	}
	return t.IntPart()
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return 0
	}
	return int64(u)
}
