package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is an ordered list of strings stored as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

func (StringList) GormDataType() string {
	return "jsonb"
}

// AnswerMap maps a question id to the option strings a taker selected,
// stored as a JSONB column.
type AnswerMap map[string][]string

func (m AnswerMap) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *AnswerMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into AnswerMap", src)
	}
}

func (AnswerMap) GormDataType() string {
	return "jsonb"
}
