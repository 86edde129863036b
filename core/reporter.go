package core

import (
	"context"
	"errorwatch/config"
	"errorwatch/models"
	"io"
	"net/http"
	"sync"
	"time"
)

// Reporter captures errors raised in a host, enriches them and dispatches
// them to the console and remote sinks enabled at dispatch time.
type Reporter struct {
	mu   sync.RWMutex
	opts config.Options

	host     Host
	clock    *SessionClock
	enricher *Enricher
	console  *ConsoleSink
	remote   *RemoteSink

	inflight sync.WaitGroup
}

type reporterSettings struct {
	out      io.Writer
	client   *http.Client
	now      func() time.Time
	defaults config.Options
}

// Option customises a Reporter at construction
type Option func(*reporterSettings)

// WithConsoleOutput sends console reports to w instead of os.Stderr
func WithConsoleOutput(w io.Writer) Option {
	return func(s *reporterSettings) { s.out = w }
}

// WithHTTPClient delivers remote reports through client
func WithHTTPClient(client *http.Client) Option {
	return func(s *reporterSettings) { s.client = client }
}

// WithClock replaces time.Now for the session clock and record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *reporterSettings) { s.now = now }
}

// WithDefaults sets the configuration Init merges overrides into
func WithDefaults(opts config.Options) Option {
	return func(s *reporterSettings) { s.defaults = opts }
}

// New creates a Reporter bound to host. Nothing is captured until Init.
func New(host Host, opts ...Option) *Reporter {
	s := reporterSettings{
		now:      time.Now,
		defaults: config.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	clock := NewSessionClock(s.now)
	return &Reporter{
		opts:     s.defaults,
		host:     host,
		clock:    clock,
		enricher: NewEnricher(clock, host, s.now),
		console:  NewConsoleSink(s.out),
		remote:   NewRemoteSink(s.client),
	}
}

// Init merges overrides into the current configuration, restarts the
// session clock and (re)installs the error listener. Calling it again never
// registers a second listener.
func (r *Reporter) Init(overrides config.Overrides) {
	r.mu.Lock()
	r.opts = config.Merge(r.opts, overrides)
	r.mu.Unlock()

	r.clock.Start()

	r.host.RemoveErrorListener(r)
	r.host.AddErrorListener(r)
}

// Close stops capturing. In-flight deliveries still complete.
func (r *Reporter) Close() {
	r.host.RemoveErrorListener(r)
}

// Options returns a snapshot of the current configuration
func (r *Reporter) Options() config.Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts
}

// HandleError enriches ev and dispatches it
func (r *Reporter) HandleError(ev models.ErrorEvent) error {
	rec, err := r.enricher.Enrich(ev)
	if err != nil {
		return err
	}
	return r.Dispatch(rec)
}

// Dispatch routes rec to the enabled sinks. Remote delivery is started but
// not awaited. The only error is a remote sink enabled without a url.
func (r *Reporter) Dispatch(rec *models.ErrorRecord) error {
	opts := r.Options()

	if opts.DetailedErrors {
		r.console.Write(rec)
	}

	if opts.RemoteLogging.Enable {
		return r.deliver(rec, opts.RemoteLogging)
	}
	return nil
}

// Wait blocks until every started delivery has run its callback
func (r *Reporter) Wait() {
	r.inflight.Wait()
}

func (r *Reporter) deliver(rec *models.ErrorRecord, remote config.RemoteLogging) error {
	results, err := r.remote.Send(context.Background(), remote.URL, rec)
	if err != nil {
		return err
	}

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		notify(<-results, remote)
	}()
	return nil
}

// notify runs exactly one of the callbacks for res, if that callback is set
func notify(res DeliveryResult, remote config.RemoteLogging) {
	if res.OK() {
		if remote.SuccessCallback != nil {
			remote.SuccessCallback()
		}
		return
	}
	if remote.ErrorCallback != nil {
		remote.ErrorCallback()
	}
}
