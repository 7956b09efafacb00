// Package session implements the ClickHouse native-protocol multiplexer —
// spec §4.7's background actor that owns one TCP socket exclusively,
// serialises outgoing queries, and fans incoming frames out to per-query
// response channels with correct cancellation, back-pressure, and teardown
// semantics.
//
// Grounded on marmos91-dittofs's pkg/flusher/background.go and
// pkg/cache/flusher for the worker-goroutine shape (Start/Stop, stopCh/
// stoppedCh, a mutex-guarded stats block), adapted from "N fire-and-forget
// upload workers draining a queue" to "one strictly-serial socket-owning
// actor fanning blocks out to per-query channels," and on
// pkg/payload/transfer/queue.go for the bounded-channel back-pressure idiom.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/katanacap/klickhouse/block"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/compress"
	"github.com/katanacap/klickhouse/errs"
	"github.com/katanacap/klickhouse/internal/logger"
	"github.com/katanacap/klickhouse/proto"
	"github.com/katanacap/klickhouse/wire"
)

// pollInterval bounds how long the multiplexer blocks on a single read
// attempt before re-checking the in-flight request's context for
// cancellation. net.Conn has no select-style multi-wait, so the read loop
// polls with a short deadline instead — the same "wake up, check a done
// channel, go back to sleep" shape as background.go's worker loop, adapted
// to a blocking socket read rather than a channel receive.
const pollInterval = 200 * time.Millisecond

// Info is the negotiated session identity, populated once the handshake
// completes.
type Info struct {
	ServerName    string
	VersionMajor  uint64
	VersionMinor  uint64
	VersionPatch  uint64
	Revision      uint64
	Timezone      string
	DisplayName   string
}

// Session owns one TCP connection to a ClickHouse server plus its
// background multiplexer goroutine and negotiated state (spec §3's
// "Session state"). One Session = one socket = one background actor;
// callers never touch the socket directly.
type Session struct {
	conn net.Conn
	r    *wire.Reader

	cfg  Config
	info Info

	compressAlgo compress.Algo // 0 means "no compression negotiated"

	submissions chan *request

	// submitMu makes "enqueue a request" and "stop accepting + drain
	// whatever is left" mutually exclusive, so a submit that lands
	// concurrently with teardown is never silently dropped into a queue
	// nobody will ever drain again (see submit/drainPending).
	submitMu sync.Mutex

	closed      atomic.Bool
	closeErr    atomic.Pointer[error]
	closeSignal chan struct{} // closed exactly once, by fail; never s.submissions itself

	mu      sync.Mutex
	current *request // the request currently owning the socket, if any

	stopped chan struct{}
}

// Connect dials addr, runs the Hello handshake, and starts the background
// multiplexer. The returned Session is ready for Execute/QueryRows/etc.
func Connect(ctx context.Context, addr string, opts ...Option) (*Session, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}

	dialCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: connect to %s: %v", errs.ErrTimeout, addr, err)
		}
		return nil, fmt.Errorf("%w: connect to %s: %v", errs.ErrConnectionClosed, addr, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(cfg.TCPNoDelay)
		if cfg.TCPKeepAlive > 0 {
			_ = tcpConn.SetKeepAlive(true)
			_ = tcpConn.SetKeepAlivePeriod(cfg.TCPKeepAlive)
		} else {
			_ = tcpConn.SetKeepAlive(false)
		}
	}

	sess := &Session{
		conn:        conn,
		r:           wire.NewReader(conn),
		cfg:         cfg,
		submissions: make(chan *request, cfg.MaxPendingQueries),
		closeSignal: make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	if cfg.ConnectTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(cfg.ConnectTimeout))
	}

	if err := sess.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	_ = conn.SetDeadline(time.Time{})

	if cfg.Compression {
		sess.compressAlgo = compress.AlgoLZ4
	}

	go sess.run()

	return sess, nil
}

func (s *Session) handshake() error {
	hw := wire.NewWriter()
	defer hw.Release()

	proto.WriteClientHello(hw, proto.HelloRequest{
		ClientName:   s.cfg.ClientName,
		VersionMajor: 1,
		VersionMinor: 0,
		Revision:     proto.ClientRevision,
		Database:     s.cfg.Database,
		User:         s.cfg.User,
		Password:     s.cfg.Password,
	})

	if _, err := s.conn.Write(hw.Bytes()); err != nil {
		return fmt.Errorf("%w: writing Hello: %v", errs.ErrConnectionClosed, err)
	}

	resp, err := proto.ExpectServerHello(s.r)
	if err != nil {
		var srvErr *errs.ServerException
		if errors.As(err, &srvErr) {
			return srvErr
		}
		return fmt.Errorf("%w: handshake: %v", errs.ErrProtocol, err)
	}

	s.info = Info{
		ServerName:   resp.Name,
		VersionMajor: resp.VersionMajor,
		VersionMinor: resp.VersionMinor,
		VersionPatch: resp.VersionPatch,
		Revision:     proto.NegotiateRevision(proto.ClientRevision, resp.Revision),
		Timezone:     resp.Timezone,
		DisplayName:  resp.DisplayName,
	}

	logger.Get().Debug("klickhouse: handshake complete",
		"server", s.info.ServerName, "revision", s.info.Revision, "timezone", s.info.Timezone)

	return nil
}

// Info returns the negotiated session identity.
func (s *Session) Info() Info { return s.info }

// IsClosed reports whether the session has entered its terminal closed
// state, per spec §4.7's "closed flag is observable to callers."
func (s *Session) IsClosed() bool { return s.closed.Load() }

// Close releases the underlying socket and stops the multiplexer. Any
// request still in flight observes errs.ErrConnectionClosed.
func (s *Session) Close() error {
	s.fail(errs.ErrConnectionClosed)
	err := s.conn.Close()
	<-s.stopped
	return err
}

// fail transitions the session into its terminal closed state exactly once,
// recording err as the cause every in-flight and future request observes.
//
// closeSignal, not s.submissions, is what gets closed: s.submissions has
// many concurrent senders (every caller's submit call) and exactly one
// receiver (run), so only a receiver-exclusive signal channel may safely be
// closed — closing a channel that other goroutines might still be sending
// on is a send-on-closed-channel panic waiting to happen.
func (s *Session) fail(err error) {
	if s.closed.CompareAndSwap(false, true) {
		s.closeErr.Store(&err)
		close(s.closeSignal)
	}
}

func (s *Session) connErr() error {
	if p := s.closeErr.Load(); p != nil {
		return *p
	}
	return errs.ErrConnectionClosed
}

func newQueryID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}

// submit enqueues req on the session's FIFO submission queue. It returns
// the session's terminal error (the error fail recorded;
// errs.ErrConnectionClosed after Close) immediately if the session is
// already closed, matching spec §4.7's "new submissions fail immediately with the same
// error kind."
//
// submitMu is held for the whole call (including a slow-path block when the
// queue is full) so that a submission can never interleave with
// drainPending's final sweep — see the Session.submitMu doc comment.
func (s *Session) submit(req *request) error {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	if s.closed.Load() {
		return s.connErr()
	}

	select {
	case s.submissions <- req:
		return nil
	case <-s.closeSignal:
		return s.connErr()
	case <-req.ctx.Done():
		return req.ctx.Err()
	}
}

// run is the multiplexer's background goroutine: it owns the socket for
// its entire lifetime and is the only goroutine that ever reads or writes
// it, per spec §5's "socket is never touched from more than one task."
func (s *Session) run() {
	defer close(s.stopped)

	for {
		var req *request

		select {
		case req = <-s.submissions:
		case <-s.closeSignal:
			s.drainPending()
			return
		}

		s.mu.Lock()
		s.current = req
		s.mu.Unlock()

		err := s.serve(req)

		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()

		if err != nil {
			s.fail(err)
			s.drainPending()
			return
		}
	}
}

// drainPending fails every request still sitting in the submission queue
// once the socket has died or Close was called, so no caller blocks
// forever on a channel that will never receive.
//
// Held under submitMu against submit: whichever of the two critical
// sections runs first, the other observes its effect in full (either the
// item is in the channel before this scan starts, or submit sees
// s.closed==true and never enqueues it at all).
func (s *Session) drainPending() {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	for {
		select {
		case req := <-s.submissions:
			req.download <- downloadItem{err: s.connErr()}
			close(req.download)
		default:
			return
		}
	}
}

// serve drives one query end to end: write Query + Data sequence, stream
// any insert blocks from req.upload, then read server packets until
// EndOfStream or Exception. A non-nil return closes the whole session: it is
// returned for socket errors and also for decode and protocol errors, after
// which the stream position is no longer known; that error is delivered on
// req.download as well. A server Exception is delivered on req.download and
// this method returns nil so the multiplexer moves on to the next query.
func (s *Session) serve(req *request) (connErr error) {
	defer func() {
		close(req.download)
	}()

	st := column.State{Revision: s.info.Revision}

	if err := s.writeQuery(req); err != nil {
		req.download <- downloadItem{err: err}
		return classifyIOErr(err)
	}

	if err := s.writeInput(req); err != nil {
		req.download <- downloadItem{err: err}
		return classifyIOErr(err)
	}

	cancelSent := false

	for {
		if !cancelSent && req.ctx.Err() != nil {
			if err := s.writeCancel(); err != nil {
				return classifyIOErr(err)
			}
			cancelSent = true
		}

		tag, ok, err := s.readTagWithPoll()
		if err != nil {
			req.download <- downloadItem{err: err}
			return classifyIOErr(err)
		}
		if !ok {
			// Poll timeout: no data yet. Loop back to re-check cancellation.
			continue
		}

		// The tag arrived inside the poll deadline; disable it for the
		// body read below so a packet larger than one TCP segment never
		// times out mid-decode.
		if err := s.conn.SetReadDeadline(time.Time{}); err != nil {
			return classifyIOErr(err)
		}

		switch proto.ServerPacket(tag) {
		case proto.ServerData:
			_, blk, err := proto.ReadData(s.r, st, s.compressAlgo)
			if err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}
			if !cancelSent {
				s.deliver(req, downloadItem{block: blk})
			}

		case proto.ServerProgress:
			p, err := proto.ReadProgress(s.r, s.info.Revision)
			if err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}
			s.deliverProgress(req, p)

		case proto.ServerProfileInfo:
			if _, err := proto.ReadProfileInfo(s.r); err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}

		case proto.ServerTableColumns:
			if _, err := proto.ReadTableColumns(s.r); err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}

		case proto.ServerPartUUIDs:
			if _, err := proto.ReadPartUUIDs(s.r); err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}

		case proto.ServerTotals, proto.ServerExtremes:
			// Totals/Extremes are wire-identical to a Data block (a named
			// block of aggregate rows); decode and discard, keeping the
			// stream aligned, since the core's row-reflection layer (§6,
			// out of scope here) does not yet expose them separately.
			if _, _, err := proto.ReadData(s.r, st, s.compressAlgo); err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}

		case proto.ServerLog:
			if _, _, err := proto.ReadData(s.r, st, 0); err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}

		case proto.ServerProfileEvents:
			if _, _, err := proto.ReadData(s.r, st, 0); err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}

		case proto.ServerReadTaskRequest:
			// No body in the revisions this client negotiates (§1 scopes
			// parallel-replica task distribution out); nothing to read.

		case proto.ServerException:
			exc, err := proto.ReadException(s.r)
			if err != nil {
				req.download <- downloadItem{err: err}
				return classifyIOErr(err)
			}
			if !cancelSent {
				req.download <- downloadItem{err: exc}
			}
			return nil

		case proto.ServerEndOfStream:
			return nil

		default:
			err := fmt.Errorf("%w: unknown server packet tag %d", errs.ErrProtocol, tag)
			req.download <- downloadItem{err: err}
			return err
		}
	}
}

// deliver pushes a decoded block onto the request's download channel,
// respecting the caller's cancellation: a blocked send is released the
// moment the caller drops its handle, rather than holding the multiplexer
// hostage to an abandoned consumer forever (it still must finish draining
// the socket afterward via the cancellation path above).
func (s *Session) deliver(req *request, item downloadItem) {
	select {
	case req.download <- item:
	case <-req.ctx.Done():
	}
}

func (s *Session) deliverProgress(req *request, p proto.Progress) {
	if req.progress == nil {
		return
	}
	select {
	case req.progress <- p:
	default:
	}
}

// writeQuery writes the Query packet that opens every request, per spec
// §4.6 step 1.
func (s *Session) writeQuery(req *request) error {
	q := proto.Query{
		ID: req.id,
		Info: proto.ClientInfo{
			QueryKind:                   1,
			InitialUser:                 s.cfg.User,
			InitialQueryID:              req.id,
			InitialQueryStartTimeMicros: uint64(time.Now().UnixMicro()),
			OSUser:                      s.cfg.User,
			ClientHostname:              "localhost",
			ClientName:                  s.cfg.ClientName,
			VersionMajor:                1,
			VersionMinor:                0,
			Revision:                    proto.ClientRevision,
		},
		Settings:    req.settings,
		Stage:       proto.StageComplete,
		Compression: s.compressAlgo != 0,
		SQL:         req.sql,
	}

	buf := wire.NewWriter()
	defer buf.Release()

	proto.WriteQuery(buf, q, s.info.Revision)

	_, err := s.conn.Write(buf.Bytes())
	return err
}

// writeInput writes the Data-block half of spec §4.6 step 2-4: an empty
// schema-probe block, then (for an insert request) every block the caller
// produces on req.upload, then a final empty end-of-input block.
//
// A plain query (req.upload == nil) has no input rows to describe, so the
// probe block doubles as the end-of-input marker — a single empty Data
// packet rather than two back-to-back ones (see DESIGN.md).
func (s *Session) writeInput(req *request) error {
	st := column.State{Revision: s.info.Revision}

	if err := s.writeEmptyData(st); err != nil {
		return err
	}

	if req.upload == nil {
		return nil
	}

	for {
		select {
		case blk, ok := <-req.upload:
			if !ok {
				return s.writeEmptyData(st)
			}

			buf := wire.NewWriter()
			err := proto.WriteData(buf, st, "", blk, s.compressAlgo)
			if err != nil {
				buf.Release()
				return err
			}

			_, werr := s.conn.Write(buf.Bytes())
			buf.Release()
			if werr != nil {
				return werr
			}

		case <-req.ctx.Done():
			return s.writeEmptyData(st)
		}
	}
}

func (s *Session) writeEmptyData(st column.State) error {
	buf := wire.NewWriter()
	defer buf.Release()

	if err := proto.WriteData(buf, st, "", block.Block{}, s.compressAlgo); err != nil {
		return err
	}

	_, err := s.conn.Write(buf.Bytes())
	return err
}

func (s *Session) writeCancel() error {
	buf := wire.NewWriter()
	defer buf.Release()

	proto.WriteCancel(buf)

	_, err := s.conn.Write(buf.Bytes())
	return err
}

// readTagWithPoll reads the next packet tag, using a short read deadline so
// the caller can re-check cancellation between attempts instead of
// blocking indefinitely on a socket with no pending data. ok is false on a
// deadline timeout (not a real error); err is non-nil only for a genuine
// I/O or protocol failure.
func (s *Session) readTagWithPoll() (tag uint64, ok bool, err error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		return 0, false, err
	}

	tag, err = proto.ReadPacketTag(s.r)
	if err != nil {
		if ne, isNet := err.(net.Error); isNet && ne.Timeout() {
			return 0, false, nil
		}
		return 0, false, err
	}

	return tag, true, nil
}

// classifyIOErr maps a raw I/O error into the Io/ConnectionError taxonomy
// element of spec §6; a clean EOF or any net.OpError is treated as the
// connection having failed, never retried.
func classifyIOErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errs.ErrConnectionClosed, err)
	}
	if errors.Is(err, errs.ErrProtocol) || errors.Is(err, errs.ErrDeserialize) ||
		errors.Is(err, errs.ErrSerialize) || errors.Is(err, errs.ErrChecksumMismatch) ||
		errors.Is(err, errs.ErrFrameSize) || errors.Is(err, errs.ErrUnknownAlgo) {
		return err
	}

	return fmt.Errorf("%w: %v", errs.ErrConnectionClosed, err)
}
