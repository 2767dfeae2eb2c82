package emu

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Remote implements Facade over a newline-delimited JSON protocol to an
// emulator sidecar process. Every operation is one request/response exchange;
// the sidecar performs the actual ROM execution, memory decoding, and path
// solving.
type Remote struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder

	addr string
	opts InitOptions
}

// InitOptions configures the sidecar's emulator core at Initialize time.
type InitOptions struct {
	ROM     string `json:"rom,omitempty"`
	Display bool   `json:"display"`
	Sound   bool   `json:"sound"`
}

const remoteDialTimeout = 10 * time.Second

// DialRemote connects to an emulator sidecar. Addresses containing a path
// separator are treated as unix sockets, anything else as host:port.
func DialRemote(addr string, opts InitOptions) (*Remote, error) {
	network := "tcp"
	if strings.Contains(addr, "/") {
		network = "unix"
	}
	conn, err := net.DialTimeout(network, addr, remoteDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial emulator sidecar %s: %w", addr, err)
	}
	return &Remote{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		addr: addr,
		opts: opts,
	}, nil
}

type rpcRequest struct {
	ID   string `json:"id"`
	Op   string `json:"op"`
	Args any    `json:"args,omitempty"`
}

type rpcResponse struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// call performs one exchange and decodes the result payload into out when
// out is non-nil.
func (r *Remote) call(op string, args, out any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := rpcRequest{ID: uuid.NewString(), Op: op, Args: args}
	if err := r.enc.Encode(req); err != nil {
		return fmt.Errorf("emu remote %s: send: %w", op, err)
	}
	var resp rpcResponse
	if err := r.dec.Decode(&resp); err != nil {
		return fmt.Errorf("emu remote %s: recv: %w", op, err)
	}
	if resp.ID != req.ID {
		return fmt.Errorf("emu remote %s: response id mismatch", op)
	}
	if !resp.OK {
		return fmt.Errorf("emu remote %s: %s", op, resp.Error)
	}
	if out != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("emu remote %s: decode result: %w", op, err)
		}
	}
	return nil
}

// Initialize boots the sidecar's emulator core with the dial-time options.
func (r *Remote) Initialize() error {
	return r.call("initialize", r.opts, nil)
}

// LoadState restores a saved state on the sidecar.
func (r *Remote) LoadState(path string) error {
	return r.call("load_state", map[string]string{"path": path}, nil)
}

// Tick advances the sidecar by frames.
func (r *Remote) Tick(frames int) error {
	return r.call("tick", map[string]int{"frames": frames}, nil)
}

// Screenshot fetches the current frame as PNG and decodes it.
func (r *Remote) Screenshot() (image.Image, error) {
	var result struct {
		PNG string `json:"png"`
	}
	if err := r.call("screenshot", nil, &result); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(result.PNG)
	if err != nil {
		return nil, fmt.Errorf("emu remote screenshot: decode base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("emu remote screenshot: decode png: %w", err)
	}
	return img, nil
}

// StateFromMemory fetches the derived game-state description.
func (r *Remote) StateFromMemory() (string, error) {
	return r.text("state")
}

// Location fetches the current location name.
func (r *Remote) Location() (string, error) {
	return r.text("location")
}

// ActiveDialog fetches any on-screen dialog text.
func (r *Remote) ActiveDialog() (string, error) {
	return r.text("dialog")
}

// CollisionMap fetches the textual walkability grid.
func (r *Remote) CollisionMap() (string, error) {
	return r.text("collision_map")
}

func (r *Remote) text(op string) (string, error) {
	var result struct {
		Text string `json:"text"`
	}
	if err := r.call(op, nil, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// PressButtons presses the sequence in order on the sidecar.
func (r *Remote) PressButtons(buttons []Button, wait bool) (string, error) {
	var result struct {
		Report string `json:"report"`
	}
	args := map[string]any{"buttons": ButtonNames(buttons), "wait": wait}
	if err := r.call("press_buttons", args, &result); err != nil {
		return "", err
	}
	return result.Report, nil
}

// FindPath asks the sidecar's solver for a walk to (row, col).
func (r *Remote) FindPath(row, col int) (string, []Button, error) {
	var result struct {
		Status string   `json:"status"`
		Path   []string `json:"path"`
	}
	args := map[string]int{"row": row, "col": col}
	if err := r.call("find_path", args, &result); err != nil {
		return "", nil, err
	}
	path, err := ParseButtons(result.Path)
	if err != nil {
		return "", nil, fmt.Errorf("emu remote find_path: %w", err)
	}
	return result.Status, path, nil
}

// Stop shuts the sidecar's emulator core down and closes the connection.
func (r *Remote) Stop() error {
	err := r.call("stop", nil, nil)
	if cerr := r.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ Facade = (*Remote)(nil)
