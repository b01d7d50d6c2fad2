package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// fieldError is a client-facing decode failure for one body field.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string {
	return e.Field + ": " + e.Message
}

var errNotCoercible = errors.New("not coercible")

// decodeScalar decodes one JSON value keeping numbers as json.Number.
func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// coerceInt accepts integers, floats without a fractional part and
// strings holding a base-10 integer.
func coerceInt(raw json.RawMessage) (int, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return 0, err
	}

	switch v := v.(type) {
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, errNotCoercible
		}
		return int(f), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errNotCoercible
		}
		return n, nil
	default:
		return 0, errNotCoercible
	}
}

var (
	trueStrings  = map[string]bool{"1": true, "on": true, "t": true, "true": true, "y": true, "yes": true}
	falseStrings = map[string]bool{"0": true, "off": true, "f": true, "false": true, "n": true, "no": true}
)

// coerceBool accepts booleans, the numbers 0 and 1 and the usual
// yes/no spellings in any case.
func coerceBool(raw json.RawMessage) (bool, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return false, err
	}

	switch v := v.(type) {
	case bool:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return false, errNotCoercible
		}
		switch f {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, errNotCoercible
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if trueStrings[s] {
			return true, nil
		}
		if falseStrings[s] {
			return false, nil
		}
		return false, errNotCoercible
	default:
		return false, errNotCoercible
	}
}

// coerceString accepts JSON strings only.
func coerceString(raw json.RawMessage) (string, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errNotCoercible
	}
	return s, nil
}
