package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AuditDetails stores free-form event metadata as JSONB
type AuditDetails map[string]interface{}

func (d AuditDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *AuditDetails) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, d)
}

// AuditLog represents one recorded state change (audit_logs table)
type AuditLog struct {
	ID         int64        `json:"id" db:"id"`
	UserID     *string      `json:"user_id,omitempty" db:"user_id"`
	Action     string       `json:"action" db:"action"`
	EntityType string       `json:"entity_type" db:"entity_type"`
	EntityID   *string      `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  string       `json:"ip_address" db:"ip_address"`
	UserAgent  string       `json:"user_agent" db:"user_agent"`
	Details    AuditDetails `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}
