package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentType string

const (
	PaymentCash       PaymentType = "CASH"
	PaymentDebitCard  PaymentType = "DEBIT_CARD"
	PaymentCreditCard PaymentType = "CREDIT_CARD"
)

type ShippingType string

const (
	ShippingEconomic ShippingType = "ECONOMIC"
	ShippingUrgent   ShippingType = "URGENT"
)

type CarrierType string

const (
	CarrierCorreios CarrierType = "CORREIOS"
	CarrierFedex    CarrierType = "FEDEX"
)

type OrderBilling struct {
	Payment    PaymentType `json:"payment"`
	TotalPrice float64     `json:"totalPrice"`
}

type OrderShipping struct {
	Type    ShippingType `json:"type"`
	Carrier CarrierType  `json:"carrier"`
}

type OrderProduct struct {
	Code  string  `json:"code"`
	Price float64 `json:"price"`
}

// Order is the stored record. PK is the customer email and SK the
// generated order id; one email owns many orders. Orders are immutable
// after creation except for deletion.
type Order struct {
	PK        string         `json:"pk"`
	SK        string         `json:"sk"`
	CreatedAt int64          `json:"createdAt"`
	Billing   OrderBilling   `json:"billing"`
	Shipping  OrderShipping  `json:"shipping"`
	Products  []OrderProduct `json:"products,omitempty"`
}

type OrderShippingRequest struct {
	Type    ShippingType `json:"type" binding:"required,oneof=ECONOMIC URGENT"`
	Carrier CarrierType  `json:"carrier" binding:"required,oneof=CORREIOS FEDEX"`
}

type OrderRequest struct {
	Email      string               `json:"email" binding:"required,email"`
	ProductIDs []string             `json:"productIds" binding:"required,min=1"`
	Payment    PaymentType          `json:"payment" binding:"required,oneof=CASH DEBIT_CARD CREDIT_CARD"`
	Shipping   OrderShippingRequest `json:"shipping" binding:"required"`
}

// OrderResponse is the external projection of an order. The internal
// composite key names never leak; they map to email/id.
type OrderResponse struct {
	Email     string         `json:"email"`
	ID        string         `json:"id"`
	CreatedAt int64          `json:"createdAt"`
	Billing   OrderBilling   `json:"billing"`
	Shipping  OrderShipping  `json:"shipping"`
	Products  []OrderProduct `json:"products,omitempty"`
}

func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		Email:     o.PK,
		ID:        o.SK,
		CreatedAt: o.CreatedAt,
		Billing:   o.Billing,
		Shipping:  o.Shipping,
		Products:  o.Products,
	}
}

// BuildOrder assembles a new order from a request and the resolved
// products. The total is the sum of the resolved product prices.
func BuildOrder(req OrderRequest, products []Product) *Order {
	orderProducts := make([]OrderProduct, 0, len(products))
	var totalPrice float64
	for _, p := range products {
		totalPrice += p.Price
		orderProducts = append(orderProducts, OrderProduct{
			Code:  p.Code,
			Price: p.Price,
		})
	}

	return &Order{
		PK:        req.Email,
		SK:        uuid.NewString(),
		CreatedAt: time.Now().UnixMilli(),
		Billing: OrderBilling{
			Payment:    req.Payment,
			TotalPrice: totalPrice,
		},
		Shipping: OrderShipping{
			Type:    req.Shipping.Type,
			Carrier: req.Shipping.Carrier,
		},
		Products: orderProducts,
	}
}
