package purchasing

import (
	"fmt"
	"time"

	"github.com/procurio/backend/internal/domain/shared"
)

// CalendarKind selects the calendar used for the year component of
// document numbers.
type CalendarKind string

const (
	CalendarGregorian CalendarKind = "GREGORIAN"
	CalendarBuddhist  CalendarKind = "BUDDHIST"
)

// BuddhistYearOffset converts a Gregorian year to the Buddhist Era.
const BuddhistYearOffset = 543

// DefaultDocumentPrefix is the prefix for purchase order numbers
const DefaultDocumentPrefix = "PO"

// IsValid checks if the calendar kind is known
func (c CalendarKind) IsValid() bool {
	return c == CalendarGregorian || c == CalendarBuddhist
}

// FormatDocumentNumber renders a document number as
// PREFIX-YYMM-NNNN, e.g. "PO-2405-0001". The year component is the
// last two digits of the (possibly Buddhist-era shifted) year.
func FormatDocumentNumber(prefix string, year int, month time.Month, number int, calendar CalendarKind) (string, error) {
	if prefix == "" {
		return "", shared.NewDomainError("INVALID_ORDER_NUMBER", "Document prefix cannot be empty")
	}
	if month < time.January || month > time.December {
		return "", shared.NewDomainError("INVALID_ORDER_NUMBER", "Month out of range")
	}
	if number <= 0 {
		return "", shared.NewDomainError("INVALID_ORDER_NUMBER", "Sequence number must be positive")
	}
	if calendar == CalendarBuddhist {
		year += BuddhistYearOffset
	}
	return fmt.Sprintf("%s-%02d%02d-%04d", prefix, year%100, int(month), number), nil
}
