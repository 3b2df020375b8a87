package statsdproxy

import (
	"net"
	"time"
)

// bufSize is the outbound UDP payload buffer. DogStatsD agents default to
// the same figure; it is larger than a common 1500-byte network MTU.
const bufSize = 8192

// idleFlushThreshold is how long Upstream will hold buffered bytes before
// a Poll forces them out even without a new Submit.
const idleFlushThreshold = time.Second

// Upstream is the terminal Stage: it packs metric lines into a shared
// buffer, separated by '\n', and flushes the buffer as one UDP datagram
// when it is full or has gone idle for a second. It never forwards
// further; there is nothing downstream of it.
type Upstream struct {
	conn       *net.UDPConn
	buf        [bufSize]byte
	bufUsed    int
	lastSentAt time.Time
	logger     Logger
}

// NewUpstream resolves addr ("host:port") and connects a UDP socket to it.
// UDP is connectionless on the wire, but connecting the socket lets the
// kernel route and filter for us and lets Submit use Write instead of
// WriteTo on every call.
func NewUpstream(addr string, logger Logger) (*Upstream, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &Upstream{conn: conn, logger: logger}, nil
}

func (u *Upstream) flush() {
	if u.bufUsed > 0 {
		n, err := u.conn.Write(u.buf[:u.bufUsed])
		if err != nil {
			u.logger.Warn("upstream send failed", "error", err, "bytes", u.bufUsed)
		} else if n != u.bufUsed {
			u.logger.Warn("upstream short write", "wanted", u.bufUsed, "sent", n)
		}
		u.bufUsed = 0
	}
	u.lastSentAt = now()
}

func (u *Upstream) timedFlush() {
	if now().Sub(u.lastSentAt) > idleFlushThreshold {
		u.flush()
	}
}

// Submit buffers metric.Raw(), flushing first if it would not fit and
// sending oversize datagrams directly rather than ever buffering them.
func (u *Upstream) Submit(m *Metric) {
	raw := m.Raw()
	l := len(raw)

	if l+1 > bufSize-u.bufUsed {
		u.flush()
	}

	if l > bufSize {
		n, err := u.conn.Write(raw)
		if err != nil {
			u.logger.Warn("upstream oversize send failed", "error", err, "bytes", l)
		} else if n != l {
			u.logger.Warn("upstream oversize short write", "wanted", l, "sent", n)
		}
		return
	}

	if u.bufUsed > 0 {
		u.buf[u.bufUsed] = '\n'
		u.bufUsed++
	}
	copy(u.buf[u.bufUsed:u.bufUsed+l], raw)
	u.bufUsed += l
}

// Poll flushes if the buffer has gone idle. Submit is always preceded by a
// Poll in the server loop, so a flush triggered by imminent overflow in
// Submit never races with a time-triggered flush here.
func (u *Upstream) Poll(time.Time) { u.timedFlush() }

// Join flushes any buffered bytes on shutdown.
func (u *Upstream) Join() {
	u.flush()
	u.conn.Close()
}
