// Package controlplane implements the Unix domain control socket: a
// line-oriented administrative protocol polled non-blockingly from the
// Engine's single-threaded event loop.
package controlplane

import (
	"bufio"
	"net"
	"os"
	"strings"
	"time"

	"github.com/styxlabs/charon/internal/dns/common/log"
)

// acceptDeadline bounds how long a single non-blocking Poll spends
// waiting on a connection before giving up for this iteration.
const acceptDeadline = 5 * time.Millisecond

// ControlPlane owns the Unix stream listener and dispatches one command
// per accepted connection.
type ControlPlane struct {
	path     string
	listener *net.UnixListener
	logger   log.Logger
	dispatch Dispatcher
}

// Dispatcher executes a parsed command line and returns the response
// line (without trailing newline) to write back to the client.
type Dispatcher interface {
	Execute(line string) string
}

// New unlinks any stale socket file at path, binds a fresh Unix stream
// listener, and returns a ControlPlane ready for Poll.
func New(path string, dispatch Dispatcher, logger log.Logger) (*ControlPlane, error) {
	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, err
	}

	return &ControlPlane{path: path, listener: ln, logger: logger, dispatch: dispatch}, nil
}

func removeStaleSocket(path string) error {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Poll performs one non-blocking accept attempt. If a client connected,
// it reads one command line, dispatches it, writes the response, and
// closes the connection before returning. It returns false when no
// client was waiting.
func (c *ControlPlane) Poll() bool {
	if err := c.listener.SetDeadline(time.Now().Add(acceptDeadline)); err != nil {
		c.logger.Warn(map[string]any{"error": err.Error()}, "controlplane: failed to set accept deadline")
		return false
	}

	conn, err := c.listener.Accept()
	if err != nil {
		return false
	}
	defer conn.Close()

	c.handle(conn)
	return true
}

func (c *ControlPlane) handle(conn net.Conn) {
	_ = conn.SetDeadline(time.Now().Add(time.Second))

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return
	}
	line = strings.TrimSpace(line)

	resp := c.dispatch.Execute(line)
	if !strings.HasSuffix(resp, "\n") {
		resp += "\n"
	}

	if _, err := conn.Write([]byte(resp)); err != nil {
		c.logger.Warn(map[string]any{"error": err.Error()}, "controlplane: failed to write response")
	}
}

// Close removes the listener and unlinks the socket file.
func (c *ControlPlane) Close() error {
	err := c.listener.Close()
	_ = os.Remove(c.path)
	return err
}
