// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Amount stores an arbitrary precision integer in a numeric(78,0) column.
type Amount struct {
	*big.Int
}

func NewAmount(x *big.Int) Amount {
	if x == nil {
		return Amount{Int: new(big.Int)}
	}
	return Amount{Int: new(big.Int).Set(x)}
}

func (a Amount) Value() (driver.Value, error) {
	if a.Int == nil {
		return "0", nil
	}
	return a.Int.String(), nil
}

func (a *Amount) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		a.Int = new(big.Int)
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	case int64:
		a.Int = big.NewInt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", value)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", s)
	}
	a.Int = n
	return nil
}

// BigInt returns a copy, never nil.
func (a Amount) BigInt() *big.Int {
	if a.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.Int)
}

type EventStatus string

const (
	EventStatusArchived EventStatus = "archived"
	EventStatusFailed   EventStatus = "failed"
)
