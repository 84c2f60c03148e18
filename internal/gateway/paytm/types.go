package paytm

import "encoding/json"

const driverName = "paytm"

const (
	resultSuccess    = "S"
	resultFailure    = "F"
	txnSuccess       = "TXN_SUCCESS"
	txnFailure       = "TXN_FAILURE"
	txnPending       = "PENDING"
	checksumHashName = "CHECKSUMHASH"
)

type head struct {
	Signature string `json:"signature"`
}

// envelope is the signed request and response shape of the paytm v1 APIs.
type envelope struct {
	Head head            `json:"head"`
	Body json.RawMessage `json:"body"`
}

type resultInfo struct {
	ResultStatus string `json:"resultStatus"`
	ResultCode   string `json:"resultCode"`
	ResultMsg    string `json:"resultMsg"`
}

type money struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type initiateBody struct {
	RequestType string         `json:"requestType"`
	MID         string         `json:"mid"`
	WebsiteName string         `json:"websiteName"`
	OrderID     string         `json:"orderId"`
	CallbackURL string         `json:"callbackUrl"`
	TxnAmount   money          `json:"txnAmount"`
	UserInfo    map[string]any `json:"userInfo"`
	ExtendInfo  map[string]any `json:"extendInfo,omitempty"`
}

type initiateResponse struct {
	Body struct {
		ResultInfo resultInfo `json:"resultInfo"`
		TxnToken   string     `json:"txnToken"`
	} `json:"body"`
}

type refundBody struct {
	MID          string `json:"mid"`
	TxnType      string `json:"txnType"`
	OrderID      string `json:"orderId"`
	TxnID        string `json:"txnId"`
	RefID        string `json:"refId"`
	RefundAmount string `json:"refundAmount"`
}

type refundResponse struct {
	Body struct {
		ResultInfo   resultInfo `json:"resultInfo"`
		RefundID     string     `json:"refundId"`
		RefundAmount string     `json:"refundAmount"`
	} `json:"body"`
}

type statusBody struct {
	MID     string `json:"mid"`
	OrderID string `json:"orderId"`
	RefID   string `json:"refId,omitempty"`
}

type orderStatusResponse struct {
	Body struct {
		ResultInfo resultInfo `json:"resultInfo"`
		TxnID      string     `json:"txnId"`
		OrderID    string     `json:"orderId"`
	} `json:"body"`
}

// refundNotice is the body of a refund callback. Status is only present
// when the refund failed.
type refundNotice struct {
	TxnID        string  `json:"txnId"`
	OrderID      string  `json:"orderId"`
	RefundID     string  `json:"refundId"`
	RefID        string  `json:"refId"`
	RefundAmount string  `json:"refundAmount"`
	Status       *string `json:"status"`
}
