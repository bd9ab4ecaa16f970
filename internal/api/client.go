// Package api is the typed client for the lead backend's REST surface.
// The backend itself is a black box; errors it reports are carried through
// verbatim so the UI can show them as-is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// Error is a non-2xx response from the backend. Message is the backend's
// own text when it sent one.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

type Pagination struct {
	TotalPages   int `json:"totalPages"`
	TotalRecords int `json:"totalRecords"`
}

type ListResponse struct {
	Data       []models.Lead `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

type leadResponse struct {
	Data models.Lead `json:"data"`
}

type Client struct {
	base  string
	token string
	http  *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{base: baseURL, token: token, http: &http.Client{}}
}

// SetToken replaces the bearer token attached to every request (set after
// login).
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func listQuery(page, limit int, search string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("search", search)
	}
	return "?" + q.Encode()
}

// Login exchanges staff credentials for a bearer token. The token is not
// stored on the client; call SetToken with it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/staff/login", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Leads fetches one page of the unfiltered table listing.
func (c *Client) Leads(ctx context.Context, page, limit int, search string) (*ListResponse, error) {
	var out ListResponse
	if err := c.do(ctx, http.MethodGet, "/lead"+listQuery(page, limit, search), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeadsByStatus fetches one page of leads pre-filtered server-side by
// status (kanban columns, and the table when a status filter is active).
func (c *Client) LeadsByStatus(ctx context.Context, status pipeline.Status, page, limit int, search string) (*ListResponse, error) {
	var out ListResponse
	path := "/lead/status/" + url.PathEscape(string(status)) + listQuery(page, limit, search)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lead fetches the authoritative full record for one lead.
func (c *Client) Lead(ctx context.Context, id string) (*models.Lead, error) {
	var out leadResponse
	if err := c.do(ctx, http.MethodGet, "/lead/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, to pipeline.Status) error {
	body := map[string]pipeline.Status{"leadStatus": to}
	return c.do(ctx, http.MethodPut, "/lead/"+url.PathEscape(id), body, nil)
}

func (c *Client) AddFollowUp(ctx context.Context, id string, fu models.FollowUp) error {
	return c.do(ctx, http.MethodPost, "/lead/"+url.PathEscape(id)+"/followup", fu, nil)
}

// ToggleItem flips one item's done flag and returns the refreshed lead.
func (c *Client) ToggleItem(ctx context.Context, id, itemID string) (*models.Lead, error) {
	var out leadResponse
	path := "/lead/" + url.PathEscape(id) + "/item/" + url.PathEscape(itemID) + "/toggle"
	if err := c.do(ctx, http.MethodPatch, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
