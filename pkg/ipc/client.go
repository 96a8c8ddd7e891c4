package ipc

import (
	"net"
	"time"

	"dataviewer/pkg/dataview"
)

const dialTimeout = time.Second

// Running reports whether an instance is accepting connections on path.
func Running(path string) bool {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Client sends documents to a listening instance.
type Client struct {
	conn net.Conn
}

func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Send writes f as one message. Documents with a [chart] section open a new
// view; documents with only [data] append to the first view of this
// connection.
func (c *Client) Send(f *dataview.File) error {
	return WriteMessage(c.conn, f)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
