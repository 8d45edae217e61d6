package rpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/binary"
	"github.com/altuslabsxyz/nodebridge/internal/infrastructure/process"
	"github.com/altuslabsxyz/nodebridge/internal/paths"
)

// Runner runs one process. Client calls always use process.ModeWait.
// *process.Invoker implements it.
type Runner interface {
	Invoke(ctx context.Context, inv process.Invocation, mode process.Mode) (process.CapturedOutput, error)
}

// Resolver locates executables by name. *binary.Resolver implements it.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Client sends requests to a node through the client binary. A Client holds
// no per-call state and is safe for concurrent use.
type Client struct {
	target      string
	runner      Runner
	resolver    Resolver
	binaryName  string
	flags       []string
	cold        bool
	encoder     Encoder
	limiter     *rate.Limiter
	callTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the client executable name.
func WithBinary(name string) Option {
	return func(c *Client) { c.binaryName = name }
}

// WithFlags adds options placed before the method token, such as
// -datadir=<dir>.
func WithFlags(flags ...string) Option {
	return func(c *Client) { c.flags = append(c.flags, flags...) }
}

// WithColdTarget addresses calls to the cold node of the target chain:
//
//	-cold <target-identifier> <method> <positional-args...>
func WithColdTarget() Option {
	return func(c *Client) { c.cold = true }
}

// WithSpaceSentinel sets the character substituted for spaces in Message
// parameters.
func WithSpaceSentinel(sentinel string) Option {
	return func(c *Client) { c.encoder.SpaceSentinel = sentinel }
}

// WithRateLimit throttles how fast client processes are spawned.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithCallTimeout bounds every call. Zero means no timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) { c.callTimeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the chain named target. resolver may be nil,
// in which case the binary name is looked up in $PATH when a call runs.
func NewClient(target string, runner Runner, resolver Resolver, opts ...Option) *Client {
	c := &Client{
		target:     target,
		runner:     runner,
		resolver:   resolver,
		binaryName: paths.ClientBinary,
		encoder:    NewEncoder(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Target returns the chain identifier appended to every call.
func (c *Client) Target() string {
	return c.target
}

// Call encodes method and params, runs the client binary and decodes its
// output as T.
func Call[T any](ctx context.Context, c *Client, method string, params ...Param) Result[T] {
	argv, err := c.encoder.Encode(method, c.target, params...)
	if err != nil {
		return fail[T](asError(method, KindEncoding, err))
	}
	if c.cold {
		target := argv[len(argv)-1]
		argv = append([]string{"-cold", target}, argv[:len(argv)-1]...)
	}
	return CallArgv[T](ctx, c, method, argv)
}

// CallArgv runs the client binary with a prebuilt argument vector. It is used
// for commands that do not follow the method-first convention, such as
// stopping a cold node.
func CallArgv[T any](ctx context.Context, c *Client, method string, argv []string) Result[T] {
	out, callErr := c.execute(ctx, method, argv)
	if callErr != nil {
		return fail[T](callErr)
	}
	return Decode[T](method, out)
}

func (c *Client) execute(ctx context.Context, method string, argv []string) (process.CapturedOutput, *Error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return process.CapturedOutput{}, asError(method, KindCancelled, err)
		}
	}

	path := c.binaryName
	if c.resolver != nil {
		resolved, err := c.resolver.Resolve(c.binaryName)
		if err != nil {
			return process.CapturedOutput{}, Classify(method, err)
		}
		path = resolved
	}

	args := make([]string, 0, len(c.flags)+len(argv))
	args = append(args, c.flags...)
	args = append(args, argv...)
	inv := process.NewInvocation(path, args...)

	c.logger.Debug("calling node",
		"invocationID", inv.ID,
		"method", method,
		"target", c.target)

	out, err := c.runner.Invoke(ctx, inv, process.ModeWait)
	if err != nil {
		return out, Classify(method, err)
	}
	return out, nil
}

// Classify maps resolver and invoker failures onto the error taxonomy.
func Classify(method string, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return asError(method, KindCancelled, err)
	}
	if binary.IsNotFound(err) {
		return asError(method, KindExecutableNotFound, err)
	}
	var launchErr *process.LaunchError
	if errors.As(err, &launchErr) {
		if launchErr.ExecutableMissing() {
			return asError(method, KindExecutableNotFound, err)
		}
		return asError(method, KindLaunch, err)
	}
	return asError(method, KindLaunch, err)
}

// asError wraps err with kind unless it already is an *Error.
func asError(method string, kind ErrorKind, err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &Error{Kind: kind, Method: method, Message: err.Error(), Err: err}
}
