package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dcastellanos/festivo-backend/pkg/config"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

const (
	sandboxEnv = "sandbox"
	liveEnv    = "live"

	tokenExpirySlack = 60 * time.Second
)

var (
	errCredentialsRequired = errors.New("paypal client id and secret are required")
	errInvalidPayPalEnv    = fmt.Errorf("paypal environment must be %q or %q", sandboxEnv, liveEnv)
	errLoggerRequired      = errors.New("paypal logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv: "https://api-m.sandbox.paypal.com",
	liveEnv:    "https://api-m.paypal.com",
}

// Gateway is the payment surface the rest of the service depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, params OrderCreateParams) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)
	CreatePartnerReferral(ctx context.Context, params PartnerReferralParams) (*PartnerReferral, error)
	CheckSellerStatus(ctx context.Context, merchantID string) (*SellerStatus, error)
}

// Client exposes PayPal primitives with centralized auth, logging, and error mapping.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	environment  string
	partnerID    string
	baseURL      string
	logger       *logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient initializes the PayPal wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.PayPalConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errCredentialsRequired
	}

	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		environment:  env,
		partnerID:    strings.TrimSpace(cfg.PartnerID),
		baseURL:      baseURLs[env],
		logger:       logg,
	}

	logg.Info(ctx, "paypal client initialized")
	return c, nil
}

// Environment reports the normalized PayPal environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateOrder creates a checkout order with intent CAPTURE.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*Order, error) {
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "USD"
	}
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"reference_id": params.ReferenceID,
				"description":  params.Description,
				"amount": map[string]string{
					"currency_code": currency,
					"value":         params.Amount.StringFixed(2),
				},
			},
		},
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"reference_id": params.ReferenceID,
		"amount":       params.Amount.StringFixed(2),
		"currency":     currency,
	})

	var order Order
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &order); err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "create order")
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return &order, nil
}

// GetOrder fetches the current state of a checkout order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	c.log(ctx, "request", "get_order", map[string]any{"order_id": orderID})

	var order Order
	path := "/v2/checkout/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &order); err != nil {
		c.log(ctx, "error", "get_order", map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "get order")
	}

	c.log(ctx, "response", "get_order", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return &order, nil
}

// CaptureOrder captures an approved order and returns the capture identifiers.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	c.log(ctx, "request", "capture_order", map[string]any{"order_id": orderID})

	var resp struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}

	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, http.MethodPost, path, map[string]any{}, &resp); err != nil {
		c.log(ctx, "error", "capture_order", map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "capture order")
	}

	result := &CaptureResult{OrderID: resp.ID, Status: resp.Status}
	for _, unit := range resp.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			result.CaptureID = capture.ID
			break
		}
	}

	c.log(ctx, "response", "capture_order", map[string]any{
		"order_id":   result.OrderID,
		"capture_id": result.CaptureID,
		"status":     result.Status,
	})
	return result, nil
}

// CreatePartnerReferral starts seller onboarding and returns the action URL.
func (c *Client) CreatePartnerReferral(ctx context.Context, params PartnerReferralParams) (*PartnerReferral, error) {
	body := map[string]any{
		"tracking_id": params.TrackingID,
		"email":       params.Email,
		"operations": []map[string]any{
			{
				"operation": "API_INTEGRATION",
				"api_integration_preference": map[string]any{
					"rest_api_integration": map[string]any{
						"integration_method": "PAYPAL",
						"integration_type":   "THIRD_PARTY",
						"third_party_details": map[string]any{
							"features": []string{"PAYMENT", "REFUND"},
						},
					},
				},
			},
		},
		"products": []string{"EXPRESS_CHECKOUT"},
		"partner_config_override": map[string]string{
			"return_url": params.ReturnURL,
		},
		"legal_consents": []map[string]any{
			{"type": "SHARE_DATA_CONSENT", "granted": true},
		},
	}

	c.log(ctx, "request", "create_partner_referral", map[string]any{
		"tracking_id": params.TrackingID,
		"email":       params.Email,
	})

	var resp struct {
		Links []Link `json:"links"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/customer/partner-referrals", body, &resp); err != nil {
		c.log(ctx, "error", "create_partner_referral", map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "create partner referral")
	}

	referral := &PartnerReferral{TrackingID: params.TrackingID}
	for _, l := range resp.Links {
		if l.Rel == "action_url" {
			referral.ActionURL = l.Href
			break
		}
	}

	c.log(ctx, "response", "create_partner_referral", map[string]any{
		"tracking_id": referral.TrackingID,
	})
	return referral, nil
}

// CheckSellerStatus queries a merchant's integration status under the partner account.
func (c *Client) CheckSellerStatus(ctx context.Context, merchantID string) (*SellerStatus, error) {
	if c.partnerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paypal partner id is not configured")
	}

	c.log(ctx, "request", "check_seller_status", map[string]any{"merchant_id": merchantID})

	var resp struct {
		MerchantID            string `json:"merchant_id"`
		PaymentsReceivable    bool   `json:"payments_receivable"`
		PrimaryEmailConfirmed bool   `json:"primary_email_confirmed"`
	}
	path := fmt.Sprintf("/v1/customer/partners/%s/merchant-integrations/%s",
		url.PathEscape(c.partnerID), url.PathEscape(merchantID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		c.log(ctx, "error", "check_seller_status", map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "check seller status")
	}

	status := &SellerStatus{
		MerchantID:            resp.MerchantID,
		PaymentsReceivable:    resp.PaymentsReceivable,
		PrimaryEmailConfirmed: resp.PrimaryEmailConfirmed,
	}

	c.log(ctx, "response", "check_seller_status", map[string]any{
		"merchant_id":          status.MerchantID,
		"payments_receivable":  status.PaymentsReceivable,
		"can_receive_payments": status.CanReceivePayments(),
	})
	return status, nil
}

// apiError carries the raw HTTP failure before domain mapping.
type apiError struct {
	StatusCode int
	Name       string `json:"name"`
	Message    string `json:"message"`
	DebugID    string `json:"debug_id"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("paypal api error: status=%d name=%s message=%s debug_id=%s",
		e.StatusCode, e.Name, e.Message, e.DebugID)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode paypal response: %w", err)
		}
	}
	return nil
}

// token returns a cached OAuth token, refreshing when close to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return "", apiErr
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("paypal token response missing access_token")
	}

	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paypal %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paypal %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "email", "phone", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

// mapError converts raw HTTP failures into domain errors. Gateway rejections
// surface as CodePaymentGateway so callers can distinguish them from our own
// validation failures.
func (c *Client) mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		code := domainCodeForStatus(apiErr.StatusCode)
		return pkgerrors.Wrap(code, err, fmt.Sprintf("paypal %s failed", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("paypal %s failed", op))
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeDependency
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodePaymentGateway
		}
		return pkgerrors.CodeDependency
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidPayPalEnv
	}
}
