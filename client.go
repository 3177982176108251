package rcon

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single blocking operation (dial, or one request
// and response round trip) when [ClientConfig.Timeout] is zero.
const DefaultTimeout = 10 * time.Second

// ClientConfig carries the connection parameters for a session. It is
// supplied once at construction and is immutable for the session's
// lifetime.
type ClientConfig struct {
	// Host is the server hostname or address. Used by [Dial] only.
	Host string

	// Port is the server TCP port, 1 through 65535. Used by [Dial] only.
	Port int

	// Password is the RCON password sent by [Client.Authenticate].
	Password string

	// Timeout bounds each blocking operation independently; it is not a
	// limit on the session's total lifetime. Zero means [DefaultTimeout].
	Timeout time.Duration

	// Logger receives debug-level hex dumps of every packet sent and
	// received. A nil logger disables packet logging entirely.
	Logger *zerolog.Logger

	// LogOutboundAuthPackets must be set explicitly to include outbound
	// authentication packets in debug logs. When false (the default),
	// the password body is scrubbed before logging so plaintext
	// passwords never reach log output.
	LogOutboundAuthPackets bool
}

// sessionState tracks a session through its lifecycle. Inbound packets are
// interpreted relative to the current state: during the authentication
// handshake a type-2 packet is an auth response, afterwards type 2 only
// appears outbound as an exec command.
type sessionState int

const (
	stateConnected sessionState = iota
	stateAuthenticated
	stateClosed
)

// Client is a session with an RCON server over a single connection. The
// protocol specifies TCP transport, but any [net.Conn] works; see
// [NewClient].
//
// A session permits one in-flight request at a time and is not meant to be
// shared across goroutines; internal locking only serializes misuse, it
// does not make interleaved use meaningful.
type Client struct {
	// seq is the request ID counter. It advances once per packet sent,
	// authentication included, and never resets or wraps within a
	// session, so observed IDs are strictly increasing from 1.
	seq atomic.Int32

	mu    sync.Mutex
	conn  net.Conn
	state sessionState

	password string
	timeout  time.Duration

	logger                 *zerolog.Logger
	logOutboundAuthPackets bool
}

// Dial opens a TCP stream to the host and port in config and returns a
// connected, unauthenticated session. Dial fails with a wrapped
// [ErrConnectionFailed] when the port is out of range, the host does not
// resolve, the peer refuses, or the attempt exceeds the configured
// timeout. Dial never retries; retry policy belongs to the caller.
func Dial(config ClientConfig) (*Client, error) {
	if config.Port < 1 || config.Port > 65535 {
		return nil, fmt.Errorf("%w: invalid port %d", ErrConnectionFailed, config.Port)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", ErrConnectionFailed, addr, err)
	}

	return NewClient(conn, config), nil
}

// NewClient wraps an already-open conn in a session configured by config.
// This suits transports other than plain TCP: a [crypto/tls.Conn] for
// encrypted RCON, a Unix socket for same-host servers, or a pipe in tests.
// Once handed to NewClient the conn must not be used elsewhere.
func NewClient(conn net.Conn, config ClientConfig) *Client {
	return &Client{
		conn:                   conn,
		state:                  stateConnected,
		password:               config.Password,
		timeout:                config.Timeout,
		logger:                 config.Logger,
		logOutboundAuthPackets: config.LogOutboundAuthPackets,
	}
}

// Close releases the underlying stream. It is idempotent: closing an
// already-closed session is a no-op and returns nil.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return nil
	}
	c.state = stateClosed

	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Authenticate sends the session password and resolves the server's
// verdict. Some servers preface the real auth response with an empty
// command-response packet; when the first packet read is not an auth
// response, a second packet is read and treated as authoritative. The
// verdict is carried by the packet ID alone: -1 means the password was
// rejected (a wrapped [ErrUnauthorized]); anything else means success,
// whether or not the server echoed the request ID correctly.
//
// Authenticate may be called again on an already-authenticated session;
// the handshake is simply repeated.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return fmt.Errorf("%w: session is closed", ErrInvalidState)
	}

	req := Packet{
		ID:   c.nextID(),
		Type: PacketTypeAuth,
		Body: []byte(c.password),
	}

	resp, err := c.await(ctx, func() (*Packet, error) {
		resp, err := c.exchange(req)
		if err != nil {
			return nil, err
		}

		// A rejection ID is authoritative no matter which type the
		// server stamped on the packet.
		if resp.ID == -1 || resp.Type == PacketTypeAuthResponse {
			return resp, nil
		}

		// Empty acknowledgement packet; the verdict is in the next one.
		var second Packet
		if _, err := second.ReadFrom(c.conn); err != nil {
			return nil, err
		}
		c.logPacket("received packet", second)
		return &second, nil
	})
	if err != nil {
		return err
	}

	if resp.ID == -1 {
		return fmt.Errorf("%w: invalid password", ErrUnauthorized)
	}

	c.state = stateAuthenticated
	return nil
}

// Command sends cmd to the server for execution and returns the body of
// the response. It fails with a wrapped [ErrInvalidState] unless the
// session has authenticated and is still open.
//
// Command reads exactly one response packet. Servers split very large
// outputs across multiple response packets; any fragment after the first
// is not collected. Known limitation.
func (c *Client) Command(ctx context.Context, cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateClosed:
		return "", fmt.Errorf("%w: session is closed", ErrInvalidState)
	case stateConnected:
		return "", fmt.Errorf("%w: session is not authenticated", ErrInvalidState)
	}

	req := Packet{
		ID:   c.nextID(),
		Type: PacketTypeExecCommand,
		Body: []byte(cmd),
	}

	resp, err := c.await(ctx, func() (*Packet, error) {
		return c.exchange(req)
	})
	if err != nil {
		return "", err
	}

	// A server that dropped our authentication answers with a rejection
	// instead of command output.
	if resp.Type == PacketTypeAuthResponse && resp.ID == -1 {
		return "", fmt.Errorf("%w: session rejected", ErrUnauthorized)
	}

	return string(resp.Body), nil
}

// Request performs one raw request and response round trip with a
// caller-built packet, bypassing the session state machine (the session
// must merely be open). The request ID is taken from req verbatim and the
// response is returned uninterpreted. Most callers want
// [Client.Authenticate] and [Client.Command] instead.
func (c *Client) Request(ctx context.Context, req Packet) (*Packet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return nil, fmt.Errorf("%w: session is closed", ErrInvalidState)
	}

	return c.await(ctx, func() (*Packet, error) {
		return c.exchange(req)
	})
}

// exchange writes req and reads a single response packet. The caller must
// hold mu.
func (c *Client) exchange(req Packet) (*Packet, error) {
	c.logPacket("sending packet", req)
	if _, err := req.WriteTo(c.conn); err != nil {
		return nil, err
	}

	var resp Packet
	if _, err := resp.ReadFrom(c.conn); err != nil {
		return nil, err
	}
	c.logPacket("received packet", resp)

	return &resp, nil
}

// await runs fn with the session's per-call timeout applied, surfacing
// expiry as a wrapped [ErrTimeout]. fn runs in a goroutine so a stuck
// write or read cannot outlive the deadline; after a timeout the stream is
// in an unknown state and the session should be closed.
func (c *Client) await(ctx context.Context, fn func() (*Packet, error)) (*Packet, error) {
	type result struct {
		packet *Packet
		err    error
	}

	timeout := c.timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		p, err := fn()
		ch <- result{p, err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return nil, ctx.Err()
	case res := <-ch:
		return res.packet, res.err
	}
}

// nextID advances the request ID counter. The counter starts at zero, so
// the first packet a session sends carries ID 1.
func (c *Client) nextID() int32 {
	return c.seq.Add(1)
}

// logPacket emits a debug-level hex dump of p. Outbound authentication
// packets have their body replaced with a fixed placeholder unless the
// session was explicitly configured to log them, so passwords stay out of
// log output.
func (c *Client) logPacket(msg string, p Packet) {
	if c.logger == nil {
		return
	}
	e := c.logger.Debug()
	if !e.Enabled() {
		return
	}

	if p.Type == PacketTypeAuth && !c.logOutboundAuthPackets {
		p.Body = []byte("xxxxx")
	}

	bs, err := p.MarshalBinary()
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to marshal packet for logging")
		return
	}

	e.Str("packet", hex.EncodeToString(bs)).Msg(msg)
}
