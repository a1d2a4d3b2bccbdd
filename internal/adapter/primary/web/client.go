package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnknownAction is returned by Client.Do for names the server does not route.
var ErrUnknownAction = errors.New("unknown action")

// Client talks to a running server so one-shot commands act on the live
// session instead of the snapshot.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server listening on addr (host:port).
func NewClient(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

// State fetches the current timer state.
func (c *Client) State(ctx context.Context) (StateView, error) {
	return c.call(ctx, http.MethodGet, "/api/state")
}

// Do posts one of the transition actions (focus, break, pause, resume, stop,
// skip) and returns the resulting state.
func (c *Client) Do(ctx context.Context, action string, long bool) (StateView, error) {
	if _, ok := actions[action]; !ok {
		return StateView{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	path := "/api/" + action
	if action == "break" && long {
		path += "?long=true"
	}
	return c.call(ctx, http.MethodPost, path)
}

func (c *Client) call(ctx context.Context, method, path string) (StateView, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return StateView{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return StateView{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StateView{}, fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	var view StateView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return StateView{}, fmt.Errorf("decode state: %w", err)
	}
	return view, nil
}
