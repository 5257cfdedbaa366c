package dto

type InitiatePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type InitiatePaymentResponse struct {
	PaymentID    string `json:"payment_id"`
	OrderRef     string `json:"order_ref"`
	Amount       int64  `json:"amount"`
	RedirectLink string `json:"redirect_link"`
}

// GatewayCallbackRequest is what the payment gateway posts back. Only the
// transaction id is trusted; the status is re-verified server side.
type GatewayCallbackRequest struct {
	TxnID      string `json:"txn_id" form:"txn_id" validate:"required"`
	OrderRef   string `json:"order_ref" form:"order_ref"`
	StatusCode string `json:"status_code" form:"status_code"`
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
