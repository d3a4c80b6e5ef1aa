package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

// DateLayout is the calendar-date form used for report dates.
const DateLayout = "2006-01-02"

type HourlyRevenue struct {
	Hour    int    `json:"hour"`
	Label   string `json:"name"`
	Revenue int64  `json:"revenue"`
}

// DailyReport is the manager's view of one calendar day. CashTotal plus
// DigitalTotal always equals Revenue.
type DailyReport struct {
	Date         string                         `json:"date"`
	Revenue      int64                          `json:"dailyRevenue"`
	Orders       int                            `json:"dailyOrders"`
	CashTotal    int64                          `json:"cashTotal"`
	DigitalTotal int64                          `json:"digitalTotal"`
	ByMethod     map[models.PaymentMethod]int64 `json:"byMethod"`
	Hourly       []HourlyRevenue                `json:"hourly"`
	Transactions []models.Transaction           `json:"transactions"`
}

// ParseReportDate reads a YYYY-MM-DD date in loc. An empty string means
// today in loc.
func ParseReportDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return day, nil
}

// SameDay compares calendar components only, in loc.
func SameDay(t time.Time, day string, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout) == day
}

// BuildDailyReport aggregates the transactions whose timestamp falls on day
// in loc. Hours without revenue are left out of Hourly; they never affect
// the totals.
func BuildDailyReport(txs []models.Transaction, day time.Time, loc *time.Location) DailyReport {
	if loc == nil {
		loc = time.Local
	}
	date := day.In(loc).Format(DateLayout)
	r := DailyReport{
		Date:         date,
		ByMethod:     map[models.PaymentMethod]int64{},
		Hourly:       []HourlyRevenue{},
		Transactions: []models.Transaction{},
	}

	var hours [24]int64
	for _, tx := range txs {
		if !SameDay(tx.Date, date, loc) {
			continue
		}
		r.Orders++
		r.Revenue += tx.FinalAmount
		r.ByMethod[tx.PaymentMethod] += tx.FinalAmount
		if tx.PaymentMethod == models.PaymentCash {
			r.CashTotal += tx.FinalAmount
		} else {
			r.DigitalTotal += tx.FinalAmount
		}
		hours[tx.Date.In(loc).Hour()] += tx.FinalAmount
		r.Transactions = append(r.Transactions, tx)
	}

	for h, amount := range hours {
		if amount == 0 {
			continue
		}
		r.Hourly = append(r.Hourly, HourlyRevenue{
			Hour:    h,
			Label:   fmt.Sprintf("%d:00", h),
			Revenue: amount,
		})
	}
	return r
}
