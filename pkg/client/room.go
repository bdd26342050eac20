package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"roomly/pkg/model"
)

type RoomClient struct {
	httpClient *HttpClient
}

func NewRoomClient(baseURL string) *RoomClient {
	return &RoomClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *RoomClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *RoomClient) Create(ctx context.Context, room *model.Room) (*model.Room, error) {
	var out model.Room
	if err := c.httpClient.call(ctx, http.MethodPost, "/api/v1/rooms", room, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RoomClient) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var out model.Room
	if err := c.httpClient.call(ctx, http.MethodGet, roomPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RoomClient) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, *Metadata, error) {
	var out []*model.Room
	meta, err := c.httpClient.list(ctx, fmt.Sprintf("/api/v1/rooms?limit=%d&offset=%d", limit, offset), &out)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

func (c *RoomClient) Update(ctx context.Context, id string, update *model.RoomUpdate) error {
	return c.httpClient.call(ctx, http.MethodPatch, roomPath(id), update, nil)
}

func (c *RoomClient) Delete(ctx context.Context, id string) error {
	return c.httpClient.call(ctx, http.MethodDelete, roomPath(id), nil, nil)
}

func roomPath(id string) string {
	return "/api/v1/rooms/id/" + url.PathEscape(id)
}
