package statsdproxy

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// maxDatagramSize is the IP-level maximum UDP payload; no incoming
// datagram can ever exceed it.
const maxDatagramSize = 65535

// receiveTimeout bounds how long a single recv_from blocks, so the server
// can notice shutdown and drive idle Poll ticks even without traffic.
const receiveTimeout = time.Second

// Server owns a UDP socket and a built middleware chain, and drives the
// chain's Poll/Submit calls from incoming datagrams.
type Server struct {
	conn    *net.UDPConn
	chain   Stage
	logger  Logger
	subject Subject
	stats   statsCounters
}

// Stats returns a point-in-time snapshot of throughput counters.
func (s *Server) Stats() Stats { return s.stats.snapshot() }

// NewServer binds addr ("host:port") and returns a Server ready to Run
// with chain as its middleware pipeline head. subject may be nil, in which
// case lifecycle events are discarded.
func NewServer(addr string, chain Stage, logger Logger, subject Subject) (*Server, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NopLogger{}
	}
	if subject == nil {
		subject = NoopSubject
	}
	return &Server{conn: conn, chain: chain, logger: logger, subject: subject}, nil
}

// Run blocks, receiving datagrams and driving the chain, until a
// SIGHUP/SIGINT/SIGTERM arrives or a read on the socket fails with an
// error other than a timeout. It always joins the chain before returning,
// even on error.
func (s *Server) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	stop := make(chan struct{})
	go func() {
		<-sigCh
		close(stop)
	}()

	addr := s.conn.LocalAddr().String()
	s.subject.NotifyObservers(context.Background(), newEvent(EventTypeServerStarted, "statsdproxy.server", addr, nil))

	buf := make([]byte, maxDatagramSize)

	for {
		select {
		case <-stop:
			s.shutdown(addr, nil)
			return nil
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(receiveTimeout))
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if isTimeout(err) {
				s.chain.Poll(now())
				continue
			}
			select {
			case <-stop:
				s.shutdown(addr, nil)
				return nil
			default:
			}
			s.shutdown(addr, err)
			return err
		}

		s.processDatagram(buf[:n])
	}
}

func (s *Server) shutdown(addr string, cause error) {
	s.chain.Join()
	data := map[string]string{}
	if cause != nil {
		data["error"] = cause.Error()
	}
	s.subject.NotifyObservers(context.Background(), newEvent(EventTypeServerStopped, "statsdproxy.server", addr, data))
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

func (s *Server) processDatagram(data []byte) {
	s.stats.datagramsReceived.Add(1)
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		// SetTags appends "|#..." in place when a line has no tag segment
		// (AddTag does this), which on a slice into buf would overwrite the
		// following line, so each line gets its own copy.
		raw := make([]byte, len(line))
		copy(raw, line)

		s.chain.Poll(now())
		s.chain.Submit(NewMetric(raw))
		s.stats.metricsSubmitted.Add(1)
	}
}

// Close releases the listening socket; used by tests that want to stop a
// server bound in a goroutine. A Run in progress then fails its next read,
// joins the chain, and returns that read error.
func (s *Server) Close() error {
	return s.conn.Close()
}

// LocalAddr reports the address Run is listening on, useful for tests that
// bind to an ephemeral port.
func (s *Server) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}
