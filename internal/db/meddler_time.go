package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/russross/meddler"
)

func init() {
	// Register custom meddler converter for time.Time stored as unix seconds
	meddler.Register("unixtime", UnixTimeMeddler{})
}

// UnixTimeMeddler handles conversion between time.Time and an integer
// unix-seconds database column. The zero time maps to NULL.
type UnixTimeMeddler struct{}

func (u UnixTimeMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// Use sql.NullInt64 to handle NULL values
	return new(sql.NullInt64), nil
}

func (u UnixTimeMeddler) PostRead(fieldAddr, scanTarget interface{}) error {
	ni, ok := scanTarget.(*sql.NullInt64)
	if !ok {
		return fmt.Errorf("expected *sql.NullInt64, got %T", scanTarget)
	}

	ptr, ok := fieldAddr.(*time.Time)
	if !ok {
		return fmt.Errorf("expected *time.Time, got %T", fieldAddr)
	}

	if !ni.Valid {
		*ptr = time.Time{}
		return nil
	}

	*ptr = time.Unix(ni.Int64, 0).UTC()

	return nil
}

func (u UnixTimeMeddler) PreWrite(field interface{}) (saveValue interface{}, err error) {
	t, ok := field.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected time.Time, got %T", field)
	}

	if t.IsZero() {
		return nil, nil
	}

	return t.Unix(), nil
}
