package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tablebook/pkg/model"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	GuestPhoneHeader     = "X-Guest-Phone"
)

// APIError is a non-2xx response decoded from the service error envelope.
type APIError struct {
	StatusCode int
	Code       string         `json:"code"`
	Message    string         `json:"error"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// APIClient is a typed client for the reservation API. Token is sent as a
// bearer token on operator calls when set.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that authenticates as an operator.
func (c *APIClient) WithToken(token string) *APIClient {
	cp := *c
	cp.Token = token
	return &cp
}

func (c *APIClient) Availability(ctx context.Context, slug, date, at string, guests int) (*model.Availability, error) {
	query := url.Values{}
	query.Set("date", date)
	query.Set("guests", strconv.Itoa(guests))
	if at != "" {
		query.Set("time", at)
	}

	var out model.Availability
	path := "/api/v1/public/" + url.PathEscape(slug) + "/availability?" + query.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Book creates a reservation. A non-empty idempotencyKey makes retries of the
// same request return the first response.
func (c *APIClient) Book(ctx context.Context, slug string, req *model.BookingRequest, idempotencyKey string) (*model.Reservation, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyKeyHeader] = idempotencyKey
	}
	if req.GuestPhone != "" {
		headers[GuestPhoneHeader] = req.GuestPhone
	}

	var out model.Reservation
	path := "/api/v1/public/" + url.PathEscape(slug) + "/reservations"
	if err := c.do(ctx, http.MethodPost, path, req, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, http.MethodGet, "/api/v1/reservations/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) UpdateReservation(ctx context.Context, id string, update *model.ReservationUpdate) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, http.MethodPatch, "/api/v1/reservations/"+url.PathEscape(id), update, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListReservations(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error) {
	var out []*model.Reservation
	path := "/api/v1/restaurants/" + url.PathEscape(restaurantID) + "/reservations?date=" + url.QueryEscape(date)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) CreateRestaurant(ctx context.Context, r *model.Restaurant) (*model.Restaurant, error) {
	var out model.Restaurant
	if err := c.do(ctx, http.MethodPost, "/api/v1/restaurants", r, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) UpdateRestaurant(ctx context.Context, id string, update *model.RestaurantUpdate) (*model.Restaurant, error) {
	var out model.Restaurant
	if err := c.do(ctx, http.MethodPatch, "/api/v1/restaurants/"+url.PathEscape(id), update, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) CreateTable(ctx context.Context, restaurantID string, t *model.Table) (*model.Table, error) {
	var out model.Table
	if err := c.do(ctx, http.MethodPost, "/api/v1/restaurants/"+url.PathEscape(restaurantID)+"/tables", t, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// envelope matches both the single-item and list response shapes.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *APIClient) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
