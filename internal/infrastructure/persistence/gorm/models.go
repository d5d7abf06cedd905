// Package gorm provides the GORM-backed record store
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
)

// EntryModel represents one stored recipe submission.
// ID order is append order.
type EntryModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Filename  string     `gorm:"type:varchar(255);index;not null"`
	Title     string     `gorm:"type:text"`
	Author    string     `gorm:"type:text"`
	Content   string     `gorm:"type:text"`
	Timestamp string     `gorm:"type:varchar(19);not null"`
	Counts    CountsJSON `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (EntryModel) TableName() string {
	return "recipe_entries"
}

// CountsJSON stores ingredient counts as JSON text
type CountsJSON recipe.Counts

// Scan implements the sql.Scanner interface
func (c *CountsJSON) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*c = CountsJSON{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CountsJSON", value)
	}

	var counts recipe.Counts
	if err := json.Unmarshal(data, &counts); err != nil {
		return fmt.Errorf("%w: counts column: %v", recipe.ErrCorruptRecord, err)
	}
	if counts == nil {
		counts = recipe.Counts{}
	}
	*c = CountsJSON(counts)
	return nil
}

// Value implements the driver.Valuer interface
func (c CountsJSON) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]float64(c))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
