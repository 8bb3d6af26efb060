package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Event is a calendar event owned by the backend.
type Event struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// NewEvent is the create payload for /admin/calendar.
type NewEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Lead is a counseling enquiry. Village and City are empty when absent.
type Lead struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Village      string    `json:"village,omitempty"`
	City         string    `json:"city,omitempty"`
	WhatsAppSent bool      `json:"whatsappSent"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/admin/auth/login",
		Body:      JSONBody{Value: map[string]string{"username": username, "password": password}},
		Operation: "auth.login",
	})
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: login response carried no token", ErrRequestFailed)
	}
	return out.Token, nil
}

// ListEvents returns the backend's current calendar events.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/calendar", Operation: "calendar.list"})
	if err != nil {
		return nil, err
	}
	var events []Event
	if len(resp.Body) > 0 {
		if err := resp.Decode(&events); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// CreateEvent posts a calendar event and returns the stored record.
func (c *Client) CreateEvent(ctx context.Context, ev NewEvent) (*Event, error) {
	resp, err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/admin/calendar",
		Body:      JSONBody{Value: ev},
		Operation: "calendar.create",
	})
	if err != nil {
		return nil, err
	}
	created := &Event{}
	if len(resp.Body) > 0 {
		if err := resp.Decode(created); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// DeleteEvent removes a calendar event by identity.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.Do(ctx, Request{
		Method:    http.MethodDelete,
		Path:      "/admin/calendar/" + url.PathEscape(id),
		Operation: "calendar.delete",
	})
	return err
}

// ListLeads returns every counseling lead.
func (c *Client) ListLeads(ctx context.Context) ([]Lead, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/counseling", Operation: "counseling.list"})
	if err != nil {
		return nil, err
	}
	var leads []Lead
	if len(resp.Body) > 0 {
		if err := resp.Decode(&leads); err != nil {
			return nil, err
		}
	}
	return leads, nil
}

// UploadResults sends an exam result spreadsheet and returns how many results the backend replaced.
func (c *Client) UploadResults(ctx context.Context, file FilePart) (int, error) {
	file.Field = "file"
	resp, err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/admin/results/upload",
		Body:      MultipartBody{File: &file},
		Operation: "results.upload",
	})
	if err != nil {
		return 0, err
	}
	var out struct {
		Replaced int `json:"replaced"`
	}
	if err := resp.Decode(&out); err != nil {
		return 0, err
	}
	return out.Replaced, nil
}
