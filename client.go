// Package klickhouse is a native-protocol client library for ClickHouse.
//
// It opens a long-lived TCP session, negotiates a protocol revision, then
// streams typed columnar blocks in both directions while presenting a
// typed row-oriented interface to callers. The bulk of this module's
// engineering lives in three packages fanned out from here:
//
//   - package compress: the LZ4/CityHash-128 transport envelope (§4.2)
//   - package column (plus chtype, block): the typed columnar wire codec (§3, §4.3-§4.5)
//   - package session: the background multiplexer actor owning the socket (§4.7)
//
// This file is a thin top-level wrapper around package session, the same
// shape the teacher's own mebo.go takes around package blob: the heavy
// lifting lives in the sub-packages, and root-level Connect/Option exist so
// a caller importing this module directly gets the common path without an
// extra import.
//
//	sess, err := klickhouse.Connect(ctx, "localhost:9000",
//		klickhouse.WithUser("default"),
//		klickhouse.WithDatabase("default"))
//	if err != nil { ... }
//	defer sess.Close()
//
//	row, err := sess.QueryOne(ctx, "SELECT 1")
package klickhouse

import (
	"context"

	"github.com/katanacap/klickhouse/session"
)

// Session is one TCP connection to a ClickHouse server plus its background
// multiplexer and negotiated state. See package session for the full
// implementation.
type Session = session.Session

// Option configures a Session at Connect time. See package session for the
// full With* option set.
type Option = session.Option

// Rows is a caller-side cursor over one query's streamed result blocks.
type Rows = session.Rows

// Connect dials addr, negotiates the protocol handshake, and starts the
// session's background multiplexer.
func Connect(ctx context.Context, addr string, opts ...Option) (*Session, error) {
	return session.Connect(ctx, addr, opts...)
}

// Re-exported functional options, so callers need only import this
// top-level package for the common path.
var (
	WithUser               = session.WithUser
	WithPassword           = session.WithPassword
	WithDatabase           = session.WithDatabase
	WithCompression        = session.WithCompression
	WithConnectTimeout     = session.WithConnectTimeout
	WithTCPKeepAlive       = session.WithTCPKeepAlive
	WithNoDelay            = session.WithNoDelay
	WithMaxPendingQueries  = session.WithMaxPendingQueries
	WithDownloadBufferSize = session.WithDownloadBufferSize
	WithUploadBufferSize   = session.WithUploadBufferSize
	WithClientName         = session.WithClientName
)
