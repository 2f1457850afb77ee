package ledgermodel

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList stores a list of snowflake ids as a JSON column.
type IDList []uint64

func (l *IDList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("IDList scan failed: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

func (l IDList) Value() (driver.Value, error) {
	return json.Marshal(l)
}
