package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMoneyUnmarshalJSONAcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"4.99","b":20}`), &payload))

	assert.Equal(t, "4.99", payload.A.String())
	assert.Equal(t, "20.00", payload.B.String())
}

func TestMoneyMarshalJSONUsesTwoDecimals(t *testing.T) {
	body, err := json.Marshal(map[string]Money{"total": MoneyFromFloat(24.99), "tax": MoneyFromFloat(0)})
	require.NoError(t, err)

	assert.JSONEq(t, `{"total":24.99,"tax":0.00}`, string(body))
	assert.Contains(t, string(body), `"tax":0.00`)
}

func TestMoneyRoundsHalfUp(t *testing.T) {
	m, err := ParseMoney("10.005")
	require.NoError(t, err)
	assert.Equal(t, "10.01", m.String())
}

func TestMoneyDecodesLegacyDoubleFromBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"price": 89.99, "count": int32(3)})
	require.NoError(t, err)

	var doc struct {
		Price Money `bson:"price"`
		Count Money `bson:"count"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))

	assert.Equal(t, "89.99", doc.Price.String())
	assert.Equal(t, "3.00", doc.Count.String())
}

func TestMoneyStoresDecimal128(t *testing.T) {
	raw, err := bson.Marshal(struct {
		Price Money `bson:"price"`
	}{Price: MoneyFromFloat(4.99)})
	require.NoError(t, err)

	value := bson.Raw(raw).Lookup("price")
	assert.Equal(t, bson.TypeDecimal128, value.Type)

	var back struct {
		Price Money `bson:"price"`
	}
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.True(t, back.Price.Equal(MoneyFromFloat(4.99)))
}

func TestOrderReconciledAndState(t *testing.T) {
	order := Order{
		ItemsPrice:    MoneyFromFloat(20),
		ShippingPrice: MoneyFromFloat(4.99),
		TaxPrice:      MoneyFromFloat(0),
		TotalPrice:    MoneyFromFloat(24.99),
	}
	assert.True(t, order.Reconciled())
	assert.Equal(t, OrderCreated, order.State())

	order.TotalPrice = MoneyFromFloat(25)
	assert.False(t, order.Reconciled())

	order.IsPaid = true
	assert.Equal(t, OrderPaid, order.State())
	order.IsDelivered = true
	assert.Equal(t, OrderDelivered, order.State())
}

func TestShippingAddressMergeKeepsBlankFields(t *testing.T) {
	current := ShippingAddress{Address: "1 Main St", City: "Leeds", PostalCode: "LS1", Country: "UK"}
	merged := current.Merge(ShippingAddress{City: "York", Country: "  "})

	assert.Equal(t, ShippingAddress{Address: "1 Main St", City: "York", PostalCode: "LS1", Country: "UK"}, merged)
	assert.True(t, merged.Complete())
	assert.False(t, ShippingAddress{Address: "x"}.Complete())
}

func TestAverageRating(t *testing.T) {
	assert.Zero(t, AverageRating(nil))
	assert.InDelta(t, 4.5, AverageRating([]Review{{Rating: 4}, {Rating: 5}}), 1e-9)
}
