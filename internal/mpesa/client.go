package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Client — клиент платёжного шлюза M-Pesa (STK Push). Токен доступа
// кэшируется и обновляется с запасом до истечения срока действия.
type Client struct {
	baseURL     string
	apiKey      string
	apiSecret   string
	shortCode   string
	callbackURL string
	httpClient  *http.Client
	logger      *logrus.Logger

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewClient создаёт клиент шлюза.
func NewClient(baseURL, apiKey, apiSecret, shortCode, callbackURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		shortCode:   shortCode,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type stkPushRequest struct {
	PhoneNumber            string `json:"phoneNumber"`
	Amount                 string `json:"amount"`
	InvoiceNumber          string `json:"invoiceNumber"`
	ShortCode              string `json:"shortCode"`
	CallbackURL            string `json:"callbackUrl"`
	TransactionDescription string `json:"transactionDescription"`
}

// StkPushResult — результат инициации STK Push.
type StkPushResult struct {
	MerchantRequestID string `json:"merchant_request_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
	CustomerMessage   string `json:"customer_message"`
}

type stkPushResponse struct {
	Response struct {
		MerchantRequestID   string `json:"MerchantRequestID"`
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		CustomerMessage     string `json:"CustomerMessage"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
	} `json:"response"`
}

// CallbackPayload — тело колбэка шлюза о результате платежа.
type CallbackPayload struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	ResultCode    string  `json:"resultCode"`
	ResultDesc    string  `json:"resultDesc"`
	Amount        float64 `json:"amount,string"`
	ReceiptNumber string  `json:"receiptNumber"`
}

// Succeeded сообщает, завершился ли платёж успехом.
func (p *CallbackPayload) Succeeded() bool {
	return p.ResultCode == "0"
}

// accessToken возвращает кэшированный токен или запрашивает новый.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token?grant_type=client_credentials",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("mpesa: не удалось создать запрос токена: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa: ошибка запроса токена: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mpesa: шлюз вернул статус %s на запрос токена", resp.Status)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("mpesa: не удалось разобрать ответ токена: %w", err)
	}

	c.token = tokenResp.AccessToken
	// Обновляем токен за 5 минут до истечения срока.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-300) * time.Second)
	c.logger.Debug("mpesa: получен новый токен доступа")

	return c.token, nil
}

// InitiateStkPush инициирует запрос STK Push на телефон плательщика.
// reference попадает в invoiceNumber и возвращается в колбэке, связывая
// его с платежом.
func (c *Client) InitiateStkPush(ctx context.Context, phoneNumber string, amount float64, reference string) (*StkPushResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := stkPushRequest{
		PhoneNumber:            phoneNumber,
		Amount:                 strconv.FormatFloat(amount, 'f', 0, 64),
		InvoiceNumber:          reference,
		ShortCode:              c.shortCode,
		CallbackURL:            c.callbackURL,
		TransactionDescription: "пополнение кошелька",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mpesa: не удалось сериализовать запрос: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stkpush", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mpesa: не удалось создать запрос: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("operation", "STKPush")
	req.Header.Set("messageId", fmt.Sprintf("%s_%d", reference, time.Now().UnixNano()))
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa: ошибка запроса STK Push: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mpesa: не удалось прочитать ответ: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("mpesa: шлюз отклонил STK Push")
		return nil, fmt.Errorf("mpesa: шлюз вернул статус %d", resp.StatusCode)
	}

	var stkResp stkPushResponse
	if err := json.Unmarshal(respBody, &stkResp); err != nil {
		return nil, fmt.Errorf("mpesa: не удалось разобрать ответ STK Push: %w", err)
	}

	if stkResp.Response.ResponseCode != "0" {
		return nil, fmt.Errorf("mpesa: STK Push отклонён: %s", stkResp.Response.ResponseDescription)
	}

	return &StkPushResult{
		MerchantRequestID: stkResp.Response.MerchantRequestID,
		CheckoutRequestID: stkResp.Response.CheckoutRequestID,
		CustomerMessage:   stkResp.Response.CustomerMessage,
	}, nil
}
