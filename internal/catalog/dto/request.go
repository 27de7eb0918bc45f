package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON number or a numeric string holding a whole number
// within the 32-bit range. "3.0" is accepted; "1.5" is not.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("not a number: %s", b)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("not a whole number: %s", b)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return fmt.Errorf("out of range: %s", b)
	}
	*n = FlexInt(int(f))
	return nil
}

type NameRequest struct {
	Name string `json:"name"`
}

type CreatePhoneRequest struct {
	Name   string `json:"name"`
	TypeID string `json:"typeId"`
}

type CreateProductRequest struct {
	Name       string   `json:"name"`
	CategoryID string   `json:"categoryId"`
	TypeID     string   `json:"typeId"`
	PhoneID    string   `json:"phoneId"`
	Color      string   `json:"color"`
	Stock      *FlexInt `json:"stock"`
	Image      string   `json:"image"`
}

// RowRequest addresses a row by its current position.
type RowRequest struct {
	RowIndex *FlexInt `json:"rowIndex"`
	Name     string   `json:"name"`
	Stock    *FlexInt `json:"stock"`
}
