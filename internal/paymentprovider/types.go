package paymentprovider

// PaypalOrderResponse ответ PayPal на создание заказа.
type PaypalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// PaypalCapture один захват платежа в составе заказа.
type PaypalCapture struct {
	ID       string `json:"id"`
	CustomID string `json:"custom_id"`
}

// PaypalPurchaseUnit единица покупки заказа PayPal.
type PaypalPurchaseUnit struct {
	Payments struct {
		Captures []PaypalCapture `json:"captures"`
	} `json:"payments"`
}

// PaypalCaptureResponse ответ PayPal на захват заказа. CustomID — значение
// custom_id из создания заказа.
type PaypalCaptureResponse struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []PaypalPurchaseUnit `json:"purchase_units"`
}

// CustomID возвращает custom_id первого захвата, пустую строку если его нет.
func (r *PaypalCaptureResponse) CustomID() string {
	for _, unit := range r.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			if capture.CustomID != "" {
				return capture.CustomID
			}
		}
	}
	return ""
}

// StripeCheckoutSession ответ Stripe на создание checkout-сессии.
type StripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CoinbaseEvent событие вебхука Coinbase Commerce.
type CoinbaseEvent struct {
	Event struct {
		Type string `json:"type"`
		Data struct {
			Code     string `json:"code"`
			Name     string `json:"name"`
			Metadata struct {
				Custom string `json:"custom"`
			} `json:"metadata"`
		} `json:"data"`
	} `json:"event"`
}

// Типы событий Coinbase, которые обрабатывает сервис.
const (
	CoinbaseChargeConfirmed = "charge:confirmed"
	CoinbaseChargeFailed    = "charge:failed"
)
