package employee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UnmarshalJSON accepts age as a JSON number or as a quoted integer. Stores
// fed by browser forms often hold "25" rather than 25.
func (e *Employee) UnmarshalJSON(data []byte) error {
	type plain Employee
	aux := struct {
		*plain
		Age json.RawMessage `json:"age"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	age, err := decodeAge(aux.Age)
	if err != nil {
		return err
	}
	e.Age = age
	return nil
}

func decodeAge(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("employee: age: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, fmt.Errorf("employee: age %q is not a whole number", text)
		}
		return n, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("employee: age: %w", err)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("employee: age %s is not a whole number", raw)
	}
	return int(f), nil
}
