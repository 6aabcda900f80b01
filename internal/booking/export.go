package booking

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

var exportHeader = []string{
	"id", "customer_name", "customer_email", "package_kind", "package_title",
	"travel_date", "travelers", "total_amount", "currency",
	"booking_status", "payment_status", "created_at",
}

// WriteCSV writes items in the order given.
func WriteCSV(w io.Writer, items []Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, b := range items {
		row := []string{
			b.ID,
			safeCell(b.CustomerName),
			safeCell(b.CustomerEmail),
			string(b.PackageKind),
			safeCell(b.PackageTitle),
			b.TravelDate.Format("2006-01-02"),
			strconv.Itoa(b.Travelers),
			b.TotalAmount.StringFixed(int32(DefaultCurrencyScale)),
			b.Currency,
			string(b.BookingStatus),
			string(b.PaymentStatus),
			b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// safeCell stops spreadsheet apps from evaluating user-supplied text.
func safeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
