// Package engine implements Charon's single-threaded cooperative event
// loop: one OS thread owns the UDP socket, the Store, and the control
// socket listener. No locks, no thread-safe collections, no task runtime.
package engine

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/styxlabs/charon/internal/dns/blocklist"
	"github.com/styxlabs/charon/internal/dns/codec"
	"github.com/styxlabs/charon/internal/dns/common/log"
	"github.com/styxlabs/charon/internal/dns/controlplane"
	"github.com/styxlabs/charon/internal/dns/domain"
	"github.com/styxlabs/charon/internal/dns/forwarder"
	"github.com/styxlabs/charon/internal/dns/store"
	"github.com/styxlabs/charon/internal/dns/zonewatch"
)

// defaultPollInterval bounds how long a single recvfrom blocks before the
// loop revisits the control socket and the TTL eviction sweep, per the
// concurrency model's "serviced at least every few hundred milliseconds"
// requirement.
const defaultPollInterval = 200 * time.Millisecond

// Options configures a new Engine.
type Options struct {
	UDPAddr       string
	ControlSocket string
	ZoneFile      string // empty disables zone-file hot reload
	Store         *store.Store
	Codec         codec.Codec
	Forwarder     *forwarder.Forwarder
	Blocklist     blocklist.Blocklist
	Logger        log.Logger
	BlockRCode    domain.RCode
	PollInterval  time.Duration
}

// Engine owns the UDP listener, the control-plane listener, and drives the
// three-tier query pipeline to completion once per datagram.
type Engine struct {
	conn         *net.UDPConn
	codec        codec.Codec
	store        *store.Store
	forwarder    *forwarder.Forwarder
	blocklist    blocklist.Blocklist
	controlPlane *controlplane.ControlPlane
	zonewatch    *zonewatch.Watcher
	zoneFile     string
	logger       log.Logger
	blockRCode   domain.RCode
	pollInterval time.Duration
}

// New binds the UDP socket and control socket and returns an Engine ready
// for Run. If opts.ZoneFile is non-empty, the zone file is loaded once
// immediately and then watched for changes.
func New(opts Options) (*Engine, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", opts.UDPAddr)
	if err != nil {
		return nil, fmt.Errorf("engine: resolving udp address %s: %w", opts.UDPAddr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("engine: binding udp socket on %s: %w", opts.UDPAddr, err)
	}

	bl := opts.Blocklist
	if bl == nil {
		bl = blocklist.Noop{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	cp, err := controlplane.New(opts.ControlSocket, controlplane.NewHandler(opts.Store, bl), log.Named(logger, "controlplane"))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("engine: starting control plane: %w", err)
	}

	var zw *zonewatch.Watcher
	if opts.ZoneFile != "" {
		if _, err := opts.Store.LoadZoneFile(opts.ZoneFile); err != nil {
			_ = conn.Close()
			_ = cp.Close()
			return nil, fmt.Errorf("engine: loading zone file %s: %w", opts.ZoneFile, err)
		}
		zw, err = zonewatch.New(opts.ZoneFile, log.Named(logger, "zonewatch"))
		if err != nil {
			_ = conn.Close()
			_ = cp.Close()
			return nil, fmt.Errorf("engine: watching zone file %s: %w", opts.ZoneFile, err)
		}
	}

	rcode := opts.BlockRCode
	if rcode == 0 {
		rcode = domain.RCodeNXDomain
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return &Engine{
		conn:         conn,
		codec:        opts.Codec,
		store:        opts.Store,
		forwarder:    opts.Forwarder,
		blocklist:    bl,
		controlPlane: cp,
		zonewatch:    zw,
		zoneFile:     opts.ZoneFile,
		logger:       log.Named(logger, "engine"),
		blockRCode:   rcode,
		pollInterval: poll,
	}, nil
}

// Close releases the UDP socket, the control socket, and the zone watcher.
func (e *Engine) Close() error {
	var errs []error
	if err := e.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.controlPlane.Close(); err != nil {
		errs = append(errs, err)
	}
	if e.zonewatch != nil {
		if err := e.zonewatch.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run drives the event loop until stop is closed. Each iteration: poll the
// control socket, evict expired cache entries, poll the zone watcher,
// receive at most one datagram (bounded by pollInterval), process it, and
// send the response.
func (e *Engine) Run(stop <-chan struct{}) error {
	buf := make([]byte, codec.MaxUDPMessage)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		e.controlPlane.Poll()
		e.store.EvictExpired(e.store.Now())
		if e.zonewatch != nil && e.zonewatch.Poll() {
			e.reloadZone()
		}

		if err := e.conn.SetReadDeadline(time.Now().Add(e.pollInterval)); err != nil {
			return fmt.Errorf("engine: set read deadline: %w", err)
		}
		n, addr, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			e.logger.Warn(map[string]any{"error": err.Error()}, "engine: udp read failed")
			continue
		}

		query := make([]byte, n)
		copy(query, buf[:n])

		resp := e.handleQuery(query)
		if resp == nil {
			continue
		}
		if _, err := e.conn.WriteToUDP(resp, addr); err != nil {
			e.logger.Warn(map[string]any{"error": err.Error(), "client": addr.String()}, "engine: udp write failed")
		}
	}
}

func (e *Engine) reloadZone() {
	e.store.ClearLocal()
	n, err := e.store.LoadZoneFile(e.zoneFile)
	if err != nil {
		e.logger.Error(map[string]any{"zone_file": e.zoneFile, "error": err.Error()}, "engine: zone reload failed")
		return
	}
	e.logger.Info(map[string]any{"zone_file": e.zoneFile, "records": n}, "engine: zone file reloaded")
}

// handleQuery runs the three-tier pipeline over one raw client datagram
// and returns the response bytes to send, or nil to drop silently.
func (e *Engine) handleQuery(raw []byte) []byte {
	h, err := codec.ParseHeader(raw)
	if err != nil {
		return nil // shorter than a header: drop silently
	}
	if h.QR || h.QDCount == 0 {
		return synthFailure(h, raw)
	}

	q, err := e.codec.DecodeQuery(raw)
	if err != nil {
		return synthFailure(h, raw)
	}

	if dec := e.blocklist.Decide(q.Name); dec.IsBlocked() {
		resp, err := synthBlocked(q, e.blockRCode)
		if err != nil {
			return synthFailureForQuestion(q)
		}
		return resp
	}

	if recs := e.store.LookupLocal(q.Name, q.Type); len(recs) > 0 {
		resp, err := synthLocal(q, recs)
		if err != nil {
			return synthFailureForQuestion(q)
		}
		return resp
	}

	if entries := e.store.LookupCache(q.Name, q.Type, e.store.Now()); len(entries) > 0 {
		resp, err := synthCached(q, entries, e.store.Now())
		if err != nil {
			return synthFailureForQuestion(q)
		}
		return resp
	}

	resp, err := e.forwarder.Forward(raw)
	if err != nil {
		fields := log.QueryFields(q.ID, q.Name, q.Type.String())
		fields["error"] = err.Error()
		e.logger.Warn(fields, "engine: forward failed")
		return synthFailureForQuestion(q)
	}
	e.cacheForwardedAnswer(resp)
	return resp
}

// cacheForwardedAnswer parses an upstream response and populates the
// cache with each RR's TTL, grouped by (name, type) so a multi-RRset
// answer (e.g. a CNAME chain) is cached as separate RRsets.
func (e *Engine) cacheForwardedAnswer(resp []byte) {
	_, answers, err := e.codec.DecodeResponse(resp)
	if err != nil || len(answers) == 0 {
		return
	}

	now := e.store.Now()
	order := make([]string, 0, len(answers))
	grouped := make(map[string][]domain.CacheEntry, len(answers))
	for _, a := range answers {
		entry := domain.NewCacheEntry(a.Name, a.Type, a.RData, a.TTL, now)
		key := entry.CacheKey()
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], entry)
	}
	for _, key := range order {
		e.store.ReplaceCache(grouped[key])
	}
}
