package payments

// Gateway answer statuses as they appear in callbacks.
const (
	StatusAccepted = "ACCEPTED"
	StatusDeclined = "DECLINED"
)

// redirectSignedFields is the field order the redirect signature covers.
var redirectSignedFields = []string{"merchant_id", "transaction_id", "order_id", "amount", "currency"}

// callbackSignedFields is the field order callback signatures cover.
var callbackSignedFields = []string{"merchant_id", "order_id", "transaction_id", "amount", "currency", "status"}

// RedirectPayload is what the frontend posts to the gateway's hosted page.
type RedirectPayload struct {
	MerchantID    string   `json:"merchant_id"`
	TransactionID string   `json:"transaction_id"`
	OrderID       string   `json:"order_id"`
	Amount        string   `json:"amount"`
	Currency      string   `json:"currency"`
	ReturnURL     string   `json:"return_url"`
	Signature     string   `json:"signature"`
	SignedFields  []string `json:"signed_fields"`
}

// NotifyCallback is the gateway's server-to-server answer. It arrives as a
// form post; nothing in it is trusted until the signature verifies.
type NotifyCallback struct {
	MerchantID    string `form:"merchant_id" json:"merchant_id" binding:"required"`
	OrderID       string `form:"order_id" json:"order_id" binding:"required"`
	TransactionID string `form:"transaction_id" json:"transaction_id" binding:"required"`
	Amount        string `form:"amount" json:"amount" binding:"required"`
	Currency      string `form:"currency" json:"currency" binding:"required"`
	Status        string `form:"status" json:"status" binding:"required"`
	Signature     string `form:"signature" json:"signature" binding:"required"`
}

func (n *NotifyCallback) signedFields() map[string]string {
	return map[string]string{
		"merchant_id":    n.MerchantID,
		"order_id":       n.OrderID,
		"transaction_id": n.TransactionID,
		"amount":         n.Amount,
		"currency":       n.Currency,
		"status":         n.Status,
	}
}

// ReturnQuery is the browser redirect back from the gateway. It carries the
// same signed fields as the notify callback.
type ReturnQuery struct {
	MerchantID    string `form:"merchant_id" binding:"required"`
	OrderID       string `form:"order_id" binding:"required"`
	TransactionID string `form:"transaction_id" binding:"required"`
	Amount        string `form:"amount" binding:"required"`
	Currency      string `form:"currency" binding:"required"`
	Status        string `form:"status" binding:"required"`
	Signature     string `form:"signature" binding:"required"`
}

func (q *ReturnQuery) asCallback() *NotifyCallback {
	return &NotifyCallback{
		MerchantID:    q.MerchantID,
		OrderID:       q.OrderID,
		TransactionID: q.TransactionID,
		Amount:        q.Amount,
		Currency:      q.Currency,
		Status:        q.Status,
		Signature:     q.Signature,
	}
}
