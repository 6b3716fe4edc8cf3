package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB-backed column types. Postgres stores them as jsonb; nil slices
// round-trip as empty arrays so handlers never emit JSON null.

type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		s = StringSlice{}
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	return scanJSON(s, value)
}

// TranscriptTurn is one exchanged message of a session, as persisted on the
// feedback record.
type TranscriptTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Transcript []TranscriptTurn

func (t Transcript) Value() (driver.Value, error) {
	if t == nil {
		t = Transcript{}
	}
	return json.Marshal(t)
}

func (t *Transcript) Scan(value interface{}) error {
	return scanJSON(t, value)
}

// CategoryScore is one scored dimension of a feedback record.
type CategoryScore struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

type CategoryScores []CategoryScore

func (c CategoryScores) Value() (driver.Value, error) {
	if c == nil {
		c = CategoryScores{}
	}
	return json.Marshal(c)
}

func (c *CategoryScores) Scan(value interface{}) error {
	return scanJSON(c, value)
}

func scanJSON(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}
