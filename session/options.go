package session

import "time"

// Config holds every caller-tunable connection option named in spec §6's
// "Connection URL / options" list. It is built from a base of sane defaults
// and mutated by a chain of Option funcs passed to Connect.
//
// Grounded on the teacher's concrete (non-generic) functional-option idiom
// (blob.NumericEncoderOption / blob.WithLittleEndian in mebo.go and
// blob/numeric_encoder_config.go) rather than the teacher's own generic
// internal/options.Option[T] machinery — see DESIGN.md for why the generic
// variant was left unwired here.
type Config struct {
	User     string
	Password string
	Database string

	Compression bool

	TCPNoDelay       bool
	TCPKeepAlive     time.Duration
	ConnectTimeout   time.Duration
	MaxPendingQueries int

	DownloadBufferSize int
	UploadBufferSize   int

	ClientName string
}

// DefaultConfig returns the option set Connect starts from before applying
// caller Options.
func DefaultConfig() Config {
	return Config{
		User:               "default",
		Database:           "default",
		Compression:        true,
		TCPNoDelay:         true,
		TCPKeepAlive:       30 * time.Second,
		ConnectTimeout:     5 * time.Second,
		MaxPendingQueries:  128,
		DownloadBufferSize: 8,
		UploadBufferSize:   8,
		ClientName:         "klickhouse-go",
	}
}

// Option mutates a Config in place. Connect applies every Option in order
// over DefaultConfig's result.
type Option func(*Config)

// WithUser sets the authenticating user (default "default").
func WithUser(user string) Option {
	return func(c *Config) { c.User = user }
}

// WithPassword sets the authenticating password.
func WithPassword(password string) Option {
	return func(c *Config) { c.Password = password }
}

// WithDatabase sets the default database selected on the connection.
func WithDatabase(database string) Option {
	return func(c *Config) { c.Database = database }
}

// WithCompression enables or disables LZ4 compression of Data packet bodies.
func WithCompression(enabled bool) Option {
	return func(c *Config) { c.Compression = enabled }
}

// WithConnectTimeout bounds the initial TCP dial and handshake.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) { c.ConnectTimeout = d }
}

// WithTCPKeepAlive sets the TCP keep-alive probe interval. Zero disables it.
func WithTCPKeepAlive(d time.Duration) Option {
	return func(c *Config) { c.TCPKeepAlive = d }
}

// WithNoDelay toggles TCP_NODELAY on the underlying socket.
func WithNoDelay(enabled bool) Option {
	return func(c *Config) { c.TCPNoDelay = enabled }
}

// WithMaxPendingQueries bounds the submission queue depth; Execute-family
// calls beyond this bound block until a slot frees up.
func WithMaxPendingQueries(n int) Option {
	return func(c *Config) { c.MaxPendingQueries = n }
}

// WithDownloadBufferSize sets the bounded capacity of each request's
// inbound block channel — the back-pressure knob described in spec §5.
func WithDownloadBufferSize(n int) Option {
	return func(c *Config) { c.DownloadBufferSize = n }
}

// WithUploadBufferSize sets the bounded capacity of each insert request's
// outbound block channel.
func WithUploadBufferSize(n int) Option {
	return func(c *Config) { c.UploadBufferSize = n }
}

// WithClientName overrides the client_name advertised in the Hello packet.
func WithClientName(name string) Option {
	return func(c *Config) { c.ClientName = name }
}
