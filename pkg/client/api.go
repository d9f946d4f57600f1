package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"innkeep/pkg/model"

	"github.com/go-resty/resty/v2"
)

const (
	userIDHeader         = "X-User-ID"
	idempotencyKeyHeader = "Idempotency-Key"
)

// APIClient is a typed client for the innkeep HTTP API.
type APIClient struct {
	r *resty.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return NewAPIClientWith(resty.New(), baseURL)
}

// NewAPIClientWith wraps an existing resty client, which lets callers supply
// their own transport.
func NewAPIClientWith(r *resty.Client, baseURL string) *APIClient {
	r.SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	return &APIClient{r: r}
}

type Meta struct {
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Meta    *Meta  `json:"meta"`
	Error   *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx answer decoded from the response envelope.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
	Reason     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s (%s)", e.StatusCode, e.Name, e.Message, e.Reason)
}

type Page[T any] struct {
	Items []T
	Meta  Meta
}

// RequestOption adjusts a single request.
type RequestOption func(*resty.Request)

func WithUserID(userID string) RequestOption {
	return func(r *resty.Request) { r.SetHeader(userIDHeader, userID) }
}

func WithIdempotencyKey(key string) RequestOption {
	return func(r *resty.Request) { r.SetHeader(idempotencyKeyHeader, key) }
}

func do[T any](ctx context.Context, c *APIClient, method, path string, body any, opts ...RequestOption) (*envelope[T], error) {
	var env envelope[T]
	req := c.r.R().SetContext(ctx).SetResult(&env).SetError(&env)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
		if env.Error != nil {
			apiErr.Name = env.Error.Name
			apiErr.Reason = env.Error.Message
		}
		return nil, apiErr
	}
	return &env, nil
}

func pageQuery(path string, limit int, offset int64) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.FormatInt(offset, 10))
	return path + "?" + q.Encode()
}

func meta(m *Meta) Meta {
	if m == nil {
		return Meta{}
	}
	return *m
}

type hotelData struct {
	Hotel *model.Hotel `json:"hotel"`
}

type hotelsData struct {
	Hotels []*model.Hotel `json:"hotels"`
}

func (c *APIClient) CreateHotel(ctx context.Context, req model.HotelCreate) (*model.Hotel, error) {
	env, err := do[hotelData](ctx, c, http.MethodPost, "/api/v1/hotels", req)
	if err != nil {
		return nil, err
	}
	return env.Data.Hotel, nil
}

func (c *APIClient) GetHotel(ctx context.Context, id string) (*model.Hotel, error) {
	env, err := do[hotelData](ctx, c, http.MethodGet, "/api/v1/hotels/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return env.Data.Hotel, nil
}

func (c *APIClient) ListHotels(ctx context.Context, limit int, offset int64) (*Page[*model.Hotel], error) {
	env, err := do[hotelsData](ctx, c, http.MethodGet, pageQuery("/api/v1/hotels", limit, offset), nil)
	if err != nil {
		return nil, err
	}
	return &Page[*model.Hotel]{Items: env.Data.Hotels, Meta: meta(env.Meta)}, nil
}

func (c *APIClient) UpdateHotel(ctx context.Context, id string, update model.HotelUpdate) (*model.Hotel, error) {
	env, err := do[hotelData](ctx, c, http.MethodPut, "/api/v1/hotels/"+url.PathEscape(id), update)
	if err != nil {
		return nil, err
	}
	return env.Data.Hotel, nil
}

func (c *APIClient) DeleteHotel(ctx context.Context, id string) error {
	_, err := do[struct{}](ctx, c, http.MethodDelete, "/api/v1/hotels/"+url.PathEscape(id), nil)
	return err
}

func (c *APIClient) CreateRoom(ctx context.Context, req model.RoomCreate) (*model.Room, error) {
	env, err := do[*model.Room](ctx, c, http.MethodPost, "/api/v1/rooms", req)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *APIClient) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	env, err := do[*model.Room](ctx, c, http.MethodGet, "/api/v1/rooms/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *APIClient) UpdateRoom(ctx context.Context, id string, update model.RoomUpdate) (*model.Room, error) {
	env, err := do[*model.Room](ctx, c, http.MethodPut, "/api/v1/rooms/"+url.PathEscape(id), update)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *APIClient) DeleteRoom(ctx context.Context, id string) error {
	_, err := do[struct{}](ctx, c, http.MethodDelete, "/api/v1/rooms/"+url.PathEscape(id), nil)
	return err
}

func (c *APIClient) ListRooms(ctx context.Context, limit int, offset int64) (*Page[*model.Room], error) {
	return c.rooms(ctx, "/api/v1/rooms", limit, offset)
}

func (c *APIClient) AvailableRooms(ctx context.Context, limit int, offset int64) (*Page[*model.Room], error) {
	return c.rooms(ctx, "/api/v1/rooms/available", limit, offset)
}

func (c *APIClient) RoomsByType(ctx context.Context, roomType model.RoomType, limit int, offset int64) (*Page[*model.Room], error) {
	return c.rooms(ctx, "/api/v1/rooms/type/"+url.PathEscape(string(roomType)), limit, offset)
}

func (c *APIClient) RoomsByHotel(ctx context.Context, hotelID string, limit int, offset int64) (*Page[*model.Room], error) {
	return c.rooms(ctx, "/api/v1/rooms/hotel/"+url.PathEscape(hotelID), limit, offset)
}

func (c *APIClient) rooms(ctx context.Context, path string, limit int, offset int64) (*Page[*model.Room], error) {
	env, err := do[[]*model.Room](ctx, c, http.MethodGet, pageQuery(path, limit, offset), nil)
	if err != nil {
		return nil, err
	}
	return &Page[*model.Room]{Items: env.Data, Meta: meta(env.Meta)}, nil
}

func (c *APIClient) CreateBooking(ctx context.Context, req model.BookingRequest, opts ...RequestOption) (*model.Booking, error) {
	env, err := do[*model.Booking](ctx, c, http.MethodPost, "/api/v1/bookings", req, opts...)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *APIClient) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	env, err := do[*model.Booking](ctx, c, http.MethodGet, "/api/v1/bookings/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// WaitForHealthy polls /health until it answers 200 or ctx ends.
func (c *APIClient) WaitForHealthy(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := c.r.R().SetContext(ctx).Get("/health")
		if err == nil && resp.StatusCode() == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
