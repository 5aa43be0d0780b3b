package entities

// PaymentEvent is the decoded body of a payment-provider webhook.
type PaymentEvent struct {
	Event string           `json:"event"`
	Data  PaymentEventData `json:"data"`
}

// PaymentEventData carries the provider-side charge details.
type PaymentEventData struct {
	Reference string               `json:"reference"`
	Amount    int64                `json:"amount"`
	Customer  PaymentEventCustomer `json:"customer"`
}

// PaymentEventCustomer identifies the payer.
type PaymentEventCustomer struct {
	Email string `json:"email"`
}

// EventChargeSuccess is the only event kind that moves money. Everything else
// is acknowledged and ignored so the provider does not redeliver forever.
const EventChargeSuccess = "charge.success"

// InitializeDepositInput represents input for starting a hosted deposit
type InitializeDepositInput struct {
	Amount int64 `json:"amount" binding:"required"`
}

// InitializeDepositResponse carries the provider redirect for the payer
type InitializeDepositResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
}
