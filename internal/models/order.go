package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a snapshot of a product line taken when the order is placed.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     Money              `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Subtotal is unit price times quantity.
func (i OrderItem) Subtotal() Money {
	return i.Price.Times(i.Quantity)
}

// PaymentResult is the provider confirmation stored verbatim on payment.
type PaymentResult struct {
	ID           string `bson:"id" json:"id"`
	Status       string `bson:"status" json:"status"`
	UpdateTime   string `bson:"update_time" json:"update_time"`
	EmailAddress string `bson:"email_address" json:"email_address"`
}

// OrderOwner is the owner summary resolved from the account at read time.
type OrderOwner struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email,omitempty"`
}

// OrderState is derived from the paid/delivered flags.
type OrderState string

const (
	OrderCreated   OrderState = "created"
	OrderPaid      OrderState = "paid"
	OrderDelivered OrderState = "delivered"
)

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"user" json:"-"`
	Owner           *OrderOwner        `bson:"-" json:"user,omitempty"`
	OrderItems      []OrderItem        `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	ItemsPrice      Money              `bson:"itemsPrice" json:"itemsPrice"`
	TaxPrice        Money              `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice   Money              `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice      Money              `bson:"totalPrice" json:"totalPrice"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult     `bson:"paymentResult,omitempty" json:"paymentResult,omitempty"`
	IsDelivered     bool               `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (o Order) State() OrderState {
	switch {
	case o.IsDelivered:
		return OrderDelivered
	case o.IsPaid:
		return OrderPaid
	default:
		return OrderCreated
	}
}

// Reconciled reports whether the total equals the sum of its parts.
func (o Order) Reconciled() bool {
	return o.TotalPrice.Equal(o.ItemsPrice.Add(o.ShippingPrice).Add(o.TaxPrice))
}
