package ledger

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary      = "Ringkasan"
	sheetHourly       = "Per Jam"
	sheetTransactions = "Transaksi"
)

// WriteDailyReportXLSX writes r as an Excel workbook with a summary sheet,
// an hourly revenue sheet and one row per transaction. Timestamps are shown
// in loc.
func WriteDailyReportXLSX(w io.Writer, r DailyReport, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("ledger: xlsx style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("ledger: xlsx sheet: %w", err)
	}
	for _, name := range []string{sheetHourly, sheetTransactions} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("ledger: xlsx sheet: %w", err)
		}
	}

	var werr error
	setRow := func(sheet string, row int, values ...any) {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err == nil {
				err = f.SetCellValue(sheet, cell, v)
			}
			if err != nil && werr == nil {
				werr = err
			}
		}
	}
	header := func(sheet string, headers ...any) {
		setRow(sheet, 1, headers...)
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil && werr == nil {
			werr = err
		}
	}

	header(sheetSummary, "Keterangan", "Nilai")
	setRow(sheetSummary, 2, "Tanggal", r.Date)
	setRow(sheetSummary, 3, "Jumlah Order", r.Orders)
	setRow(sheetSummary, 4, "Total Pendapatan", r.Revenue)
	setRow(sheetSummary, 5, "Tunai", r.CashTotal)
	setRow(sheetSummary, 6, "Non Tunai", r.DigitalTotal)

	header(sheetHourly, "Jam", "Pendapatan")
	for i, h := range r.Hourly {
		setRow(sheetHourly, i+2, h.Label, h.Revenue)
	}

	header(sheetTransactions, "ID Transaksi", "Waktu", "Kasir", "Total", "Diskon", "Total Bayar", "Metode", "Catatan")
	for i, tx := range r.Transactions {
		setRow(sheetTransactions, i+2,
			tx.ID,
			tx.Date.In(loc).Format("02-01-2006 15:04"),
			tx.UserID,
			tx.TotalAmount,
			tx.Discount,
			tx.FinalAmount,
			string(tx.PaymentMethod),
			tx.Remark,
		)
	}
	if werr != nil {
		return fmt.Errorf("ledger: xlsx cells: %w", werr)
	}

	if err := f.SetPanes(sheetTransactions, &excelize.Panes{Freeze: true, Split: true, YSplit: 1}); err != nil {
		return fmt.Errorf("ledger: xlsx panes: %w", err)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("ledger: write xlsx: %w", err)
	}
	return nil
}
