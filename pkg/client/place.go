package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"bookspace/pkg/model"
)

type PlaceClient struct {
	httpClient *HttpClient
}

func NewPlaceClient(httpClient *HttpClient) *PlaceClient {
	return &PlaceClient{
		httpClient: httpClient,
	}
}

func (c *PlaceClient) Create(ctx context.Context, place *model.Place) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/places", place)
}

func (c *PlaceClient) GetAll(ctx context.Context, status string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET(ctx, "/api/v1/places?"+q.Encode())
}

func (c *PlaceClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/places/id/"+url.PathEscape(id))
}

func (c *PlaceClient) GetBookings(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/places/id/"+url.PathEscape(id)+"/bookings")
}

// ListBookings returns the approved bookings held at a place.
func (c *PlaceClient) ListBookings(ctx context.Context, id string) ([]*model.Booking, error) {
	resp, err := c.GetBookings(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list place bookings failed (%d): %s", resp.StatusCode, GetErrorMessage(resp))
	}
	return DecodeBookingList(resp)
}

func (c *PlaceClient) Update(ctx context.Context, id string, updates model.PlaceUpdate) (*Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/places/id/"+url.PathEscape(id), updates)
}

func (c *PlaceClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/places/id/"+url.PathEscape(id))
}

func DecodePlace(resp *Response) (*model.Place, error) {
	var place model.Place
	if err := decodeData(resp, &place); err != nil {
		return nil, err
	}
	return &place, nil
}

func DecodePlaces(resp *Response) ([]*model.Place, *Metadata, error) {
	var places []*model.Place
	metadata, err := decodePaginated(resp, &places)
	if err != nil {
		return nil, nil, err
	}
	return places, metadata, nil
}
