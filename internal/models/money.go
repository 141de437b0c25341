package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a two-decimal amount in the store currency.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d half-up to two decimals.
func NewMoney(d decimal.Decimal) Money {
	return Money{d.Round(2)}
}

// MoneyFromFloat is a convenience for literals and tests.
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// ParseMoney accepts a plain decimal string such as "24.99".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

// Equal compares at two-decimal precision.
func (m Money) Equal(o Money) bool {
	return m.Round(2).Equal(o.Round(2))
}

func (m Money) Add(o Money) Money {
	return NewMoney(m.Decimal.Add(o.Decimal))
}

// Times multiplies by a quantity.
func (m Money) Times(qty int) Money {
	return NewMoney(m.Mul(decimal.NewFromInt(int64(qty))))
}

func (m Money) String() string {
	return m.StringFixed(2)
}

// MarshalJSON renders a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

// UnmarshalJSON accepts both numbers and numeric strings, since checkout
// clients commonly send toFixed(2) strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}

// MarshalBSONValue stores the amount as Decimal128 so no binary float rounding
// reaches the database.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.StringFixed(2))
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue accepts Decimal128 as well as the double, integer and
// string encodings older documents may carry.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*m = Money{}
		return nil
	case bsontype.Decimal128:
		var value primitive.Decimal128
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		d, err := decimal.NewFromString(value.String())
		if err != nil {
			return err
		}
		*m = NewMoney(d)
		return nil
	case bsontype.Double:
		var value float64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*m = MoneyFromFloat(value)
		return nil
	case bsontype.Int32, bsontype.Int64:
		var value int64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*m = NewMoney(decimal.NewFromInt(value))
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		parsed, err := ParseMoney(value)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Money", t)
	}
}
