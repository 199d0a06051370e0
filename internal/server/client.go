package server

import (
	"encoding/json"
	"net"

	"github.com/ignitedb/ignite/pkg/errors"
)

// Client is a thin, one-shot TCP client for the request/response protocol:
// each call opens its own connection, sends one Request, reads one
// Response, and closes. This matches how the CLI uses it — one process
// invocation, one operation — and keeps the client stateless between calls.
type Client struct {
	addr string
}

// NewClient returns a Client that will dial addr for every call.
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// Set stores key/value on the remote server.
func (c *Client) Set(key string, value []byte) error {
	resp, err := c.roundTrip(&Request{Op: OpSet, Key: key, Value: value})
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return errors.NewServerError(resp.Error)
	}
	return nil
}

// Get retrieves key's value from the remote server. found is false when
// the key has no live entry on the server.
func (c *Client) Get(key string) ([]byte, bool, error) {
	resp, err := c.roundTrip(&Request{Op: OpGet, Key: key})
	if err != nil {
		return nil, false, err
	}
	if resp.Error != "" {
		return nil, false, errors.NewServerError(resp.Error)
	}
	return resp.Value, resp.Found, nil
}

// keyNotFoundMessage is the literal message NewKeyNotFoundError always
// carries, regardless of which key was involved. Since the wire protocol
// transports only the error's message text, Remove recognizes this exact
// string to reconstruct a proper KeyNotFound error client-side rather than
// flattening it into an opaque ServerError.
const keyNotFoundMessage = "key not found"

// Remove deletes key on the remote server. It returns a KeyNotFound
// EngineError, not a plain ServerError, when the server reports the key had
// no live entry — this lets the CLI distinguish that case from a real
// failure.
func (c *Client) Remove(key string) error {
	resp, err := c.roundTrip(&Request{Op: OpRemove, Key: key})
	if err != nil {
		return err
	}
	if resp.Error == keyNotFoundMessage {
		return errors.NewKeyNotFoundError(key)
	}
	if resp.Error != "" {
		return errors.NewServerError(resp.Error)
	}
	return nil
}

func (c *Client) roundTrip(req *Request) (*Response, error) {
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return nil, errors.NewEngineError(err, errors.ErrorCodeIO, "Failed to connect to server").
			WithDetail("addr", c.addr)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, errors.NewNetworkFramingError(err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, errors.NewNetworkFramingError(err)
	}
	return &resp, nil
}
