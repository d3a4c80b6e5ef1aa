package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/josanv1n/DIZA-FOOD/internal/ledger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func dailyReport(c *fiber.Ctx, reader *ledger.Reader, loc *time.Location) (ledger.DailyReport, error) {
	day, err := ledger.ParseReportDate(c.Query("date"), time.Now(), loc)
	if err != nil {
		return ledger.DailyReport{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	txs, err := reader.Day(c.UserContext(), day, loc)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "error fetching transactions for report", "error", err)
		return ledger.DailyReport{}, fiber.NewError(fiber.StatusInternalServerError, "Failed to build report")
	}
	return ledger.BuildDailyReport(txs, day, loc), nil
}

// GetDailyReport handles the manager's daily summary
func GetDailyReport(reader *ledger.Reader, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := dailyReport(c, reader, loc)
		if err != nil {
			return err
		}
		return c.JSON(report)
	}
}

// ExportDailyReport streams the daily summary as an Excel workbook
func ExportDailyReport(reader *ledger.Reader, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := dailyReport(c, reader, loc)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := ledger.WriteDailyReportXLSX(&buf, report, loc); err != nil {
			slog.ErrorContext(c.UserContext(), "error writing xlsx", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export report"})
		}

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="laporan-harian-%s.xlsx"`, report.Date))
		return c.Send(buf.Bytes())
	}
}
