package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrNotFound       = errors.New("candidate_not_found")
	ErrInvalidID      = errors.New("invalid_candidate_id")
	ErrInvalidCompany = errors.New("invalid_company")
	ErrMissingAmount  = errors.New("missing_amount")
	ErrInvalidAmount  = errors.New("invalid_amount")
)

// AmountField is the one field every candidate row must carry with a
// numeric value.
const AmountField = "amount"

// Candidate is one billable row in a client's ledger. Everything beyond
// the identifying keys lives in the free-form Data map.
type Candidate struct {
	ID        snowflake.ID      `json:"id,string" gorm:"primaryKey"`
	CompanyID snowflake.ID      `json:"company_id,string" gorm:"index;not null"`
	ClientID  snowflake.ID      `json:"client_id,string" gorm:"index;not null"`
	Data      datatypes.JSONMap `json:"candidate_data" gorm:"not null"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (Candidate) TableName() string { return "candidates" }

// Payload is a candidate data map that has passed amount validation.
// Candidates are only stored through NewPayload, so every persisted row
// is known to carry a numeric amount.
type Payload struct {
	data datatypes.JSONMap
}

// NewPayload validates a raw candidate map. The amount field must be
// present and coercible to a number; numeric strings are accepted and
// kept as given.
func NewPayload(raw map[string]any) (Payload, error) {
	value, ok := raw[AmountField]
	if !ok || value == nil {
		return Payload{}, ErrMissingAmount
	}
	if _, err := CoerceAmount(value); err != nil {
		return Payload{}, err
	}

	data := make(datatypes.JSONMap, len(raw))
	for k, v := range raw {
		data[k] = v
	}
	return Payload{data: data}, nil
}

// Data returns the validated map.
func (p Payload) Data() datatypes.JSONMap { return p.data }

// CoerceAmount converts a JSON value to a float64 amount. Accepts
// numbers and numeric strings.
func CoerceAmount(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		return parsed, nil
	default:
		return 0, ErrInvalidAmount
	}
}

// Amount returns the candidate's amount as a number. Rows stored through
// NewPayload always coerce cleanly.
func (c Candidate) Amount() (float64, error) {
	value, ok := c.Data[AmountField]
	if !ok {
		return 0, ErrMissingAmount
	}
	return CoerceAmount(value)
}
