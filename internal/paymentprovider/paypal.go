// Package paymentprovider содержит HTTP-клиенты платежных процессоров:
// PayPal (создание заказов) и Stripe (checkout-сессии). Вебхуки процессоров
// принимает пакет internal/http/handlers/payment.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PaypalClient клиент PayPal REST API.
type PaypalClient struct {
	clientID   string
	secret     string
	apiURL     string
	httpClient *http.Client
}

// NewPaypalClient создает новый клиент PayPal. apiURL — база API
// (sandbox или live) из конфига.
func NewPaypalClient(clientID, secret, apiURL string) *PaypalClient {
	return &PaypalClient{
		clientID:   clientID,
		secret:     secret,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// accessToken получает OAuth-токен по client credentials.
func (c *PaypalClient) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("unexpected status: " + resp.Status)
	}
	var tokenResp paypalTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	return tokenResp.AccessToken, nil
}

// CreateOrder создает заказ PayPal на указанную сумму в долларах.
// customID прокидывается в вебхук захвата платежа.
func (c *PaypalClient) CreateOrder(ctx context.Context, price int, customID string) (*PaypalOrderResponse, error) {
	const op = "paymentprovider.CreateOrder"

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"custom_id": customID,
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         fmt.Sprintf("%d.00", price),
			},
		}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+"/v2/checkout/orders", &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	var orderResp PaypalOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &orderResp, nil
}

// CaptureOrder захватывает одобренный покупателем заказ. В ответе
// возвращается custom_id, переданный при создании заказа.
func (c *PaypalClient) CaptureOrder(ctx context.Context, orderID string) (*PaypalCaptureResponse, error) {
	const op = "paymentprovider.CaptureOrder"

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+"/v2/checkout/orders/"+orderID+"/capture", strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	var captureResp PaypalCaptureResponse
	if err := json.NewDecoder(resp.Body).Decode(&captureResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &captureResp, nil
}
