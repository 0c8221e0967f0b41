package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bookspace/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(httpClient *HttpClient) *BookingClient {
	return &BookingClient{
		httpClient: httpClient,
	}
}

func (c *BookingClient) CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings/check-availability", req)
}

// Create submits a booking request. A non-empty idempotencyKey makes
// retries of the same request replay the first response.
func (c *BookingClient) Create(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*Response, error) {
	if idempotencyKey == "" {
		return c.httpClient.POST(ctx, "/api/v1/bookings", req)
	}
	return c.httpClient.POSTWithHeaders(ctx, "/api/v1/bookings", req, map[string]string{
		"Idempotency-Key": idempotencyKey,
	})
}

func (c *BookingClient) Book(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*model.Booking, error) {
	resp, err := c.Create(ctx, req, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create booking failed (%d): %s", resp.StatusCode, GetErrorMessage(resp))
	}
	return DecodeBooking(resp)
}

func (c *BookingClient) GetAll(ctx context.Context, status, placeID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if placeID != "" {
		q.Set("place_id", placeID)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET(ctx, "/api/v1/bookings?"+q.Encode())
}

func (c *BookingClient) GetApproved(ctx context.Context, from, to *time.Time) (*Response, error) {
	q := url.Values{}
	if from != nil {
		q.Set("from", from.UTC().Format(time.RFC3339))
	}
	if to != nil {
		q.Set("to", to.UTC().Format(time.RFC3339))
	}
	path := "/api/v1/bookings/approved"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) GetMine(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/mine")
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *BookingClient) Update(ctx context.Context, id string, updates model.BookingUpdate) (*Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/bookings/id/"+url.PathEscape(id), updates)
}

func (c *BookingClient) Approve(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.PUT(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/approve", nil)
}

func (c *BookingClient) Reject(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.PUT(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/reject", nil)
}

func (c *BookingClient) Cancel(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.PUT(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/cancel", nil)
}

func DecodeAvailability(resp *Response) (*model.Availability, error) {
	var availability model.Availability
	if err := decodeData(resp, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

func DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var bookings []*model.Booking
	metadata, err := decodePaginated(resp, &bookings)
	if err != nil {
		return nil, nil, err
	}
	return bookings, metadata, nil
}

// DecodeBookingList decodes a non-paginated {data: [...]} booking list.
func DecodeBookingList(resp *Response) ([]*model.Booking, error) {
	var bookings []*model.Booking
	if err := decodeData(resp, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

type Metadata struct {
	TotalCount int64
	Limit      int
	Offset     int64
}

func decodeData(resp *Response, target any) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper:\n%s\n%w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data:\n%s\n%w", resp.ToString(), err)
	}
	return nil
}

func decodePaginated(resp *Response, target any) (*Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode paginated response:\n%s\n%w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return nil, fmt.Errorf("could not decode paginated data:\n%s\n%w", resp.ToString(), err)
	}
	return &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}, nil
}
