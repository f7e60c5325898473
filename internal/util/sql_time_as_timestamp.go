package util

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimeAsTimestamp is stored as an UNIX timestamp but used as a time.Time
type TimeAsTimestamp time.Time

func NewTimeAsTimestamp(t time.Time) TimeAsTimestamp {
	return TimeAsTimestamp(t.Truncate(time.Second))
}

func (t TimeAsTimestamp) Value() (driver.Value, error) {
	return driver.Value(time.Time(t).Unix()), nil
}

func (t TimeAsTimestamp) Time() time.Time {
	return time.Time(t)
}

func (t TimeAsTimestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time().UTC().Format(time.RFC3339))
}

func (t *TimeAsTimestamp) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	parsed, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	*t = TimeAsTimestamp(parsed)

	return nil
}

func (t *TimeAsTimestamp) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		tmp, err := strconv.ParseInt(string(src), 10, 64)
		if err != nil {
			return err
		}
		*t = TimeAsTimestamp(time.Unix(tmp, 0))
	case int64:
		*t = TimeAsTimestamp(time.Unix(src, 0))
	case time.Time:
		// go-sqlite3 parses columns declared as TIMESTAMP/DATETIME itself.
		*t = TimeAsTimestamp(src)
	default:
		return fmt.Errorf("expected []byte, int64, or time.Time, got %T", src)
	}

	return nil
}
