package listener

import (
	"bytes"
	"io"

	"github.com/dreyloch/ashfell/internal/display"
)

// crlfReadWriter adapts a terminal-style transport for the admin console:
// writes get \n rewritten to \r\n, reads get \r\n and bare \r normalized to
// \n. Telnet sends \r\n, SSH without a PTY sends \r.
type crlfReadWriter struct {
	rw io.ReadWriter
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfReadWriter{rw: rw}
}

func (c *crlfReadWriter) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n > 0 {
		data := bytes.ReplaceAll(p[:n], []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		n = copy(p, data)
	}
	return n, err
}

func (c *crlfReadWriter) Write(p []byte) (int, error) {
	_, err := c.rw.Write([]byte(display.CRLF(string(p))))
	// Report the caller's length; the expansion is invisible to them.
	return len(p), err
}
