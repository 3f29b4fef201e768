package mediaforge

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"net"
	"time"
)

// CoordinatorClient is the capability interface for the two coordinator
// RPCs (§4.10). Production code talks to RPCCoordinatorClient; tests inject
// FakeCoordinatorClient.
type CoordinatorClient interface {
	FetchAssetURLs(ctx context.Context, count uint32) ([]string, error)
	SubmitResults(ctx context.Context, results []UrlResult) error
}

// wireDownloadError is the coordinator's narrower outcome enum (§6), into
// which the richer in-process DlError is collapsed.
type wireDownloadError int

const (
	wireTooLarge wireDownloadError = iota
	wireNotFound
	wireServerError
	wireNotSupportedFormat
)

// collapse applies the §6/§9 collapsing rule: TooManyRequests and
// DownloadFailed read as NotFound to the coordinator; CorruptedAsset reads
// as ServerError (both are treated as transient/retryable there).
func collapse(kind DlError) wireDownloadError {
	switch kind {
	case DlErrTooLarge:
		return wireTooLarge
	case DlErrUnsupportedFormat:
		return wireNotSupportedFormat
	case DlErrCorruptedAsset:
		return wireServerError
	case DlErrTooManyRequests, DlErrDownloadFailed, DlErrNotFound:
		return wireNotFound
	default:
		return wireNotFound
	}
}

// wireResult is the gob-encoded shape of one UrlResult on the wire.
type wireResult struct {
	URL        string
	Success    bool
	Mime       string
	Size       uint32
	FailureErr wireDownloadError
}

func toWireResult(r UrlResult) wireResult {
	switch o := r.Outcome.(type) {
	case SuccessOutcome:
		return wireResult{URL: r.URL, Success: true, Mime: o.Mime, Size: o.Size}
	case FailureOutcome:
		kind, _ := classify(o.Err)
		return wireResult{URL: r.URL, Success: false, FailureErr: collapse(kind)}
	default:
		panic("mediaforge: unknown DownloadOutcome implementation")
	}
}

type fetchRequest struct {
	Count uint32
}

type fetchResponse struct {
	URLs []string
}

type submitRequest struct {
	Results []wireResult
}

type submitResponse struct{}

// RPCCoordinatorClient implements CoordinatorClient over a minimal
// length-prefixed gob transport: each call opens a connection, writes a
// 4-byte big-endian length prefix followed by a gob-encoded request, and
// reads the same framing back for the response. This is deliberately not
// built on a third-party RPC/codec library; see DESIGN.md.
type RPCCoordinatorClient struct {
	Address string
	Dialer  net.Dialer
	Timeout time.Duration
}

// NewRPCCoordinatorClient builds a client dialing address, with a per-call
// timeout.
func NewRPCCoordinatorClient(address string, timeout time.Duration) *RPCCoordinatorClient {
	return &RPCCoordinatorClient{Address: address, Timeout: timeout}
}

func (c *RPCCoordinatorClient) FetchAssetURLs(ctx context.Context, count uint32) ([]string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := writeFrame(conn, fetchRequest{Count: count}); err != nil {
		return nil, fmt.Errorf("mediaforge: fetch request: %w", err)
	}
	var resp fetchResponse
	if err := readFrame(conn, &resp); err != nil {
		return nil, fmt.Errorf("mediaforge: fetch response: %w", err)
	}
	return resp.URLs, nil
}

func (c *RPCCoordinatorClient) SubmitResults(ctx context.Context, results []UrlResult) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	wire := make([]wireResult, len(results))
	for i, r := range results {
		wire[i] = toWireResult(r)
	}
	if err := writeFrame(conn, submitRequest{Results: wire}); err != nil {
		return fmt.Errorf("mediaforge: submit request: %w", err)
	}
	var resp submitResponse
	if err := readFrame(conn, &resp); err != nil {
		return fmt.Errorf("mediaforge: submit response: %w", err)
	}
	return nil
}

func (c *RPCCoordinatorClient) dial(ctx context.Context) (net.Conn, error) {
	conn, err := c.Dialer.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return nil, fmt.Errorf("mediaforge: dial coordinator: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if c.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.Timeout))
	}
	return conn, nil
}

// writeFrame gob-encodes v and writes it prefixed with its 4-byte
// big-endian length.
func writeFrame(w io.Writer, v interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readFrame reads a length-prefixed gob frame into v, which must be a
// pointer to the exact concrete type that was encoded.
func readFrame(r io.Reader, v interface{}) error {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(lenPrefix[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(payload)).Decode(v)
}
