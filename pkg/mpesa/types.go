package mpesa

import "github.com/shopspring/decimal"

// ResponseCodeAccepted is returned when the payment request was accepted for processing.
const ResponseCodeAccepted = "0"

// STKPushRequest is a customer payment prompt request.
type STKPushRequest struct {
	PhoneNumber      string          `json:"PhoneNumber"`
	Amount           decimal.Decimal `json:"Amount"`
	AccountReference string          `json:"AccountReference"`
	TransactionDesc  string          `json:"TransactionDesc"`
}

// STKPushResponse is the acknowledgement of an STK push request.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the request was accepted for processing.
func (r *STKPushResponse) Accepted() bool {
	return r != nil && r.ResponseCode == ResponseCodeAccepted
}
