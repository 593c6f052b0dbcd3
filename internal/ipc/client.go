package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Lezione.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Lezione.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LessonAdd enqueues a lesson for the given YouTube URL.
func (c *Client) LessonAdd(url string, force bool) (*LessonAddResponse, error) {
	var resp LessonAddResponse
	req := LessonAddRequest{URL: url, Force: force}
	if err := c.client.Call("Lezione.LessonAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LessonList returns lessons optionally filtered by statuses.
func (c *Client) LessonList(statuses []string) (*LessonListResponse, error) {
	var resp LessonListResponse
	req := LessonListRequest{Statuses: statuses}
	if err := c.client.Call("Lezione.LessonList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LessonShow returns details for a single lesson.
func (c *Client) LessonShow(id int64) (*LessonShowResponse, error) {
	var resp LessonShowResponse
	req := LessonShowRequest{ID: id}
	if err := c.client.Call("Lezione.LessonShow", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LessonRetry resets a failed lesson back to pending.
func (c *Client) LessonRetry(id int64) (*LessonRetryResponse, error) {
	var resp LessonRetryResponse
	req := LessonRetryRequest{ID: id}
	if err := c.client.Call("Lezione.LessonRetry", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LessonClear removes lessons, optionally limited by status.
func (c *Client) LessonClear(statuses []string) (*LessonClearResponse, error) {
	var resp LessonClearResponse
	req := LessonClearRequest{Statuses: statuses}
	if err := c.client.Call("Lezione.LessonClear", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Lezione.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
