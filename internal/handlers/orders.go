package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/orders"
)

type orderItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Qty      int    `json:"qty"`
}

type createOrderRequest struct {
	OrderItems      []orderItemRequest     `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      *models.Money          `json:"itemsPrice"`
	ShippingPrice   *models.Money          `json:"shippingPrice"`
	TaxPrice        *models.Money          `json:"taxPrice"`
	TotalPrice      *models.Money          `json:"totalPrice"`
}

type paymentRequest struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

func (r createOrderRequest) input() orders.CreateInput {
	items := make([]orders.ItemInput, 0, len(r.OrderItems))
	for _, item := range r.OrderItems {
		qty := item.Quantity
		if qty == 0 {
			qty = item.Qty
		}
		items = append(items, orders.ItemInput{ProductID: item.Product, Quantity: qty})
	}
	return orders.CreateInput{
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		Totals: orders.SuppliedTotals{
			ItemsPrice:    r.ItemsPrice,
			ShippingPrice: r.ShippingPrice,
			TaxPrice:      r.TaxPrice,
			TotalPrice:    r.TotalPrice,
		},
	}
}

func CreateOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if !bindJSON(c, &req) {
			return
		}
		order, err := svc.Create(c.Request.Context(), actor(c), req.input())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), actor(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func MyOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListMine(c.Request.Context(), actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func ListOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListAll(c.Request.Context(), actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func PayOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentRequest
		if !bindJSON(c, &req) {
			return
		}
		order, err := svc.MarkPaid(c.Request.Context(), actor(c), c.Param("id"), orders.PaymentConfirmation{
			ID:         req.ID,
			Status:     req.Status,
			UpdateTime: req.UpdateTime,
			PayerEmail: req.Payer.EmailAddress,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func DeliverOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.MarkDelivered(c.Request.Context(), actor(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func DeleteOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
	}
}
