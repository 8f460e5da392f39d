// Package nat provides an arbitrary precision non-negative integer used for
// product ids, order ids and minor-unit prices. Values never pass through a
// float64, so ids and prices above 2^53 survive JSON and storage unchanged.
package nat

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

var (
	ErrNegative = errors.New("nat: value must not be negative")
	ErrSyntax   = errors.New("nat: invalid decimal integer")
)

// Nat is immutable once built; every arithmetic method returns a new value.
// The zero value is 0.
type Nat struct {
	v *big.Int
}

func FromUint64(u uint64) Nat {
	return Nat{v: new(big.Int).SetUint64(u)}
}

func Parse(s string) (Nat, error) {
	if s == "" {
		return Nat{}, ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			if i == 0 && s[i] == '-' && len(s) > 1 {
				return Nat{}, ErrNegative
			}
			return Nat{}, fmt.Errorf("%w: %q", ErrSyntax, s)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Nat{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return Nat{v: v}, nil
}

func MustParse(s string) Nat {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Nat) big() *big.Int {
	if n.v == nil {
		return new(big.Int)
	}
	return n.v
}

// Big returns a copy of the underlying value.
func (n Nat) Big() *big.Int {
	return new(big.Int).Set(n.big())
}

func (n Nat) Add(m Nat) Nat {
	return Nat{v: new(big.Int).Add(n.big(), m.big())}
}

func (n Nat) Mul(m Nat) Nat {
	return Nat{v: new(big.Int).Mul(n.big(), m.big())}
}

// MulInt multiplies by a quantity. Negative quantities yield zero.
func (n Nat) MulInt(q int) Nat {
	if q <= 0 {
		return Nat{}
	}
	return Nat{v: new(big.Int).Mul(n.big(), big.NewInt(int64(q)))}
}

func (n Nat) Cmp(m Nat) int {
	return n.big().Cmp(m.big())
}

func (n Nat) Equal(m Nat) bool {
	return n.Cmp(m) == 0
}

func (n Nat) IsZero() bool {
	return n.big().Sign() == 0
}

func (n Nat) String() string {
	return n.big().String()
}

func (n Nat) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Nat) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// MarshalJSON always writes a quoted decimal string.
func (n Nat) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(n.String())), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare integer token. The
// token is parsed as text, never as a float.
func (n *Nat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrSyntax, data)
		}
		return n.UnmarshalText([]byte(s))
	}
	return n.UnmarshalText(data)
}

// MarshalBinary encodes the big-endian magnitude. Zero encodes as an empty slice.
func (n Nat) MarshalBinary() ([]byte, error) {
	return n.big().Bytes(), nil
}

func (n *Nat) UnmarshalBinary(data []byte) error {
	*n = Nat{v: new(big.Int).SetBytes(data)}
	return nil
}

// Value stores the decimal text so database columns never truncate.
func (n Nat) Value() (driver.Value, error) {
	return n.String(), nil
}

func (n *Nat) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return n.UnmarshalText([]byte(v))
	case []byte:
		return n.UnmarshalText(v)
	case int64:
		if v < 0 {
			return ErrNegative
		}
		*n = FromUint64(uint64(v))
		return nil
	case nil:
		*n = Nat{}
		return nil
	}
	return fmt.Errorf("nat: cannot scan %T", src)
}
