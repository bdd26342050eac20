package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"roomly/pkg/model"
	"time"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// HTTP exposes the underlying client for raw requests and health checks.
func (c *BookingClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *BookingClient) CheckConflicts(ctx context.Context, req model.ConflictCheckRequest) (*model.ConflictCheckResponse, error) {
	var out model.ConflictCheckResponse
	if err := c.httpClient.call(ctx, http.MethodPost, "/api/v1/conflicts/check", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BookingClient) SuggestNextSlot(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error) {
	var out model.SuggestResponse
	if err := c.httpClient.call(ctx, http.MethodPost, "/api/v1/conflicts/suggest", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BookingClient) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	var out model.Booking
	if err := c.httpClient.call(ctx, http.MethodPost, "/api/v1/bookings", booking, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var out model.Booking
	if err := c.httpClient.call(ctx, http.MethodGet, bookingPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BookingClient) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, *Metadata, error) {
	var out []*model.Booking
	meta, err := c.httpClient.list(ctx, fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset), &out)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

func (c *BookingClient) Search(ctx context.Context, roomID string, start, end time.Time, limit int, offset int64) ([]*model.Booking, *Metadata, error) {
	q := url.Values{}
	q.Set("room_id", roomID)
	if !start.IsZero() {
		q.Set("start_time", start.Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("end_time", end.Format(time.RFC3339))
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	var out []*model.Booking
	meta, err := c.httpClient.list(ctx, "/api/v1/bookings/search?"+q.Encode(), &out)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

func (c *BookingClient) Update(ctx context.Context, id string, update *model.BookingUpdate) error {
	return c.httpClient.call(ctx, http.MethodPatch, bookingPath(id), update, nil)
}

func (c *BookingClient) Cancel(ctx context.Context, id string) error {
	return c.httpClient.call(ctx, http.MethodPost, bookingPath(id)+"/cancel", nil, nil)
}

func (c *BookingClient) Delete(ctx context.Context, id string) error {
	return c.httpClient.call(ctx, http.MethodDelete, bookingPath(id), nil, nil)
}

func bookingPath(id string) string {
	return "/api/v1/bookings/id/" + url.PathEscape(id)
}
