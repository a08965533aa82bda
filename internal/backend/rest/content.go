package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/loganlanou/colink-venture/internal/backend"
)

func (c *Client) ListPosts(ctx context.Context) ([]backend.Post, error) {
	var posts []backend.Post
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/posts"}, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, p backend.NewPost) (*backend.Post, error) {
	var post backend.Post
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/posts", body: p, authenticated: true}, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:        http.MethodDelete,
		endpoint:      "/posts/" + url.PathEscape(id),
		authenticated: true,
	}, nil)
}

func (c *Client) ListAppointments(ctx context.Context) ([]backend.Appointment, error) {
	var appts []backend.Appointment
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/appointments", authenticated: true}, &appts)
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (c *Client) CreateAppointment(ctx context.Context, a backend.NewAppointment) (*backend.Appointment, error) {
	var appt backend.Appointment
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/appointments", body: a, authenticated: true}, &appt)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, id string, status backend.AppointmentStatus) (*backend.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid appointment status %q", status)
	}

	var appt backend.Appointment
	err := c.do(ctx, call{
		method:        http.MethodPut,
		endpoint:      "/appointments/" + url.PathEscape(id) + "/status",
		body:          map[string]string{"status": string(status)},
		authenticated: true,
	}, &appt)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]backend.Message, error) {
	var msgs []backend.Message
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/chats/messages/all", authenticated: true}, &msgs)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) SendMessage(ctx context.Context, m backend.NewMessage) (*backend.Message, error) {
	var msg backend.Message
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/chats/message", body: m, authenticated: true}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
