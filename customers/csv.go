package customers

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// csvHeader matches the column set of the original back-office export.
var csvHeader = []string{"Full Name", "Place", "Contact Number", "Date of Birth", "Registration Date"}

// WriteCSV writes the records as CSV with dd/mm/yyyy dates.
func WriteCSV(w io.Writer, records []Customer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "[WriteCSV] header")
	}

	for _, c := range records {
		row := []string{
			c.FullName,
			c.Place,
			c.ContactNumber,
			c.DateOfBirth.Format(DisplayDateFormat),
			c.RegisteredAt.Format(DisplayDateFormat),
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "[WriteCSV] record %s", c.ID)
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "[WriteCSV] flush")
}
