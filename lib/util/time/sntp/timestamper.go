package sntp

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

// NTPClient performs a single NTP query.
type NTPClient interface {
	QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error)
}

// DefaultNTPClient queries real servers with beevik/ntp.
type DefaultNTPClient struct{}

func (c *DefaultNTPClient) QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error) {
	return ntp.QueryWithOptions(host, options)
}

const (
	minQueryFrequency     = 5 * time.Minute
	defaultQueryFrequency = 11 * time.Minute
	defaultServerList     = "0.pool.ntp.org,1.pool.ntp.org,2.pool.ntp.org"
	defaultConcurring     = 3
	maxConcurring         = 4
	maxConsecutiveFails   = 10
	defaultTimeout        = 10 * time.Second
	maxVariance           = 10 * time.Second
	wellSyncedOffset      = 500 * time.Millisecond
	failureBackoff        = 30 * time.Second
	lostSyncBackoff       = 30 * time.Minute
	// minTriggerInterval bounds how often TimestampNow may start a cycle.
	minTriggerInterval = 10 * time.Second
)

// Config controls a Timestamper.
type Config struct {
	Servers           []string
	QueryFrequency    time.Duration
	ConcurringServers int
	Timeout           time.Duration
	MaxClockOffset    time.Duration
	Disabled          bool
}

// DefaultConfig returns the pool.ntp.org servers with the standard cadence.
func DefaultConfig() Config {
	return Config{
		Servers:           ParseServerList(defaultServerList),
		QueryFrequency:    defaultQueryFrequency,
		ConcurringServers: defaultConcurring,
		Timeout:           defaultTimeout,
		MaxClockOffset:    defaultMaxClockOffset,
	}
}

// ParseServerList splits a comma separated list and drops empty entries.
func ParseServerList(list string) []string {
	var servers []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// Timestamper keeps a trusted offset from the local clock by polling NTP
// servers in the background. It satisfies epoch.Clock.
type Timestamper struct {
	servers           []string
	listeners         []UpdateListener
	queryFrequency    time.Duration
	timeout           time.Duration
	maxClockOffset    time.Duration
	concurringServers int
	consecutiveFails  int
	disabled          bool
	initialized       bool
	wellSynced        bool
	isRunning         bool
	mutex             sync.Mutex
	stopChan          chan struct{}
	stopOnce          sync.Once
	waitGroup         sync.WaitGroup
	ntpClient         NTPClient
	limiter           *rate.Limiter
	timeOffset        time.Duration
	// closed once the first query cycle has finished, successful or not
	initChan chan struct{}
}

// NewTimestamper creates a stopped Timestamper. Out-of-range settings are
// clamped; a nil client means DefaultNTPClient.
func NewTimestamper(client NTPClient, cfg Config) *Timestamper {
	if client == nil {
		client = &DefaultNTPClient{}
	}
	rt := &Timestamper{
		servers:           append([]string(nil), cfg.Servers...),
		queryFrequency:    cfg.QueryFrequency,
		timeout:           cfg.Timeout,
		maxClockOffset:    cfg.MaxClockOffset,
		concurringServers: cfg.ConcurringServers,
		disabled:          cfg.Disabled,
		stopChan:          make(chan struct{}),
		ntpClient:         client,
		limiter:           rate.NewLimiter(rate.Every(minTriggerInterval), 1),
		initChan:          make(chan struct{}),
	}
	rt.validateConfigBounds()
	return rt
}

func (rt *Timestamper) validateConfigBounds() {
	if len(rt.servers) == 0 {
		rt.servers = ParseServerList(defaultServerList)
	}
	if rt.queryFrequency < minQueryFrequency {
		rt.queryFrequency = minQueryFrequency
	}
	if rt.timeout <= 0 {
		rt.timeout = defaultTimeout
	}
	if rt.maxClockOffset <= 0 {
		rt.maxClockOffset = defaultMaxClockOffset
	}
	if rt.concurringServers < 1 {
		rt.concurringServers = 1
	} else if rt.concurringServers > maxConcurring {
		rt.concurringServers = maxConcurring
	}
}

// Start launches the background loop. It is a no-op when disabled or
// already running.
func (rt *Timestamper) Start() {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	if rt.disabled || rt.isRunning {
		return
	}
	rt.isRunning = true
	rt.waitGroup.Add(1)
	go rt.run()
}

// Stop ends the background loop and waits for it to exit.
func (rt *Timestamper) Stop() {
	rt.mutex.Lock()
	if !rt.isRunning {
		rt.mutex.Unlock()
		return
	}
	rt.isRunning = false
	rt.mutex.Unlock()
	rt.stopOnce.Do(func() {
		close(rt.stopChan)
	})
	rt.waitGroup.Wait()
}

// Close stops the background loop so the Timestamper can be registered with
// util.RegisterCloser.
func (rt *Timestamper) Close() error {
	rt.Stop()
	return nil
}

func (rt *Timestamper) AddListener(listener UpdateListener) {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	rt.listeners = append(rt.listeners, listener)
}

// RemoveListener drops a listener, matching by ListenerID when available
// and by equality otherwise.
func (rt *Timestamper) RemoveListener(listener UpdateListener) {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	id, hasID := listener.(ListenerIdentifier)
	for i, l := range rt.listeners {
		match := l == listener
		if hasID {
			if other, ok := l.(ListenerIdentifier); ok {
				match = other.ListenerID() == id.ListenerID()
			}
		}
		if match {
			rt.listeners = append(rt.listeners[:i], rt.listeners[i+1:]...)
			return
		}
	}
}

// WaitForInitialization blocks until the first query cycle has completed or
// ctx is done.
func (rt *Timestamper) WaitForInitialization(ctx context.Context) error {
	select {
	case <-rt.initChan:
		return nil
	case <-ctx.Done():
		return oops.Wrapf(ctx.Err(), "waiting for NTP initialization")
	}
}

// TimestampNow schedules an immediate query cycle. It returns false when the
// timestamper is not running or a cycle was triggered too recently.
func (rt *Timestamper) TimestampNow() bool {
	rt.mutex.Lock()
	if !rt.initialized || !rt.isRunning || rt.disabled {
		rt.mutex.Unlock()
		return false
	}
	if !rt.limiter.Allow() {
		rt.mutex.Unlock()
		log.Debug("TimestampNow rate limited")
		return false
	}
	// Add under the lock that Stop takes before Wait, so Wait never races it.
	rt.waitGroup.Add(1)
	rt.mutex.Unlock()
	go func() {
		defer rt.waitGroup.Done()
		rt.performTimeQuery(context.Background())
	}()
	return true
}

// SyncOnce runs one query cycle in the caller's goroutine.
func (rt *Timestamper) SyncOnce(ctx context.Context) error {
	rt.mutex.Lock()
	disabled := rt.disabled
	rt.mutex.Unlock()
	if disabled {
		return oops.Errorf("NTP synchronization is disabled")
	}
	err := rt.queryTime(ctx)
	rt.markInitialized()
	return err
}

func (rt *Timestamper) run() {
	defer rt.waitGroup.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-rt.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	for {
		rt.mutex.Lock()
		running := rt.isRunning
		rt.mutex.Unlock()
		if !running {
			return
		}
		lastFailed := rt.performTimeQuery(ctx)
		if !rt.waitWithCancellation(rt.calculateSleepDuration(lastFailed)) {
			return
		}
	}
}

// performTimeQuery runs one cycle and reports whether it failed.
func (rt *Timestamper) performTimeQuery(ctx context.Context) bool {
	err := rt.queryTime(ctx)
	rt.markInitialized()
	if err != nil {
		log.WithError(err).Debug("NTP query cycle failed")
		rt.notifyFailure()
		return true
	}
	return false
}

func (rt *Timestamper) markInitialized() {
	rt.mutex.Lock()
	if rt.initialized {
		rt.mutex.Unlock()
		return
	}
	rt.initialized = true
	close(rt.initChan)
	listeners := append([]UpdateListener(nil), rt.listeners...)
	rt.mutex.Unlock()

	for _, l := range listeners {
		if ext, ok := l.(ExtendedUpdateListener); ok {
			ext.OnInitialized()
		}
	}
}

func (rt *Timestamper) notifyFailure() {
	rt.mutex.Lock()
	fails := rt.consecutiveFails + 1
	listeners := append([]UpdateListener(nil), rt.listeners...)
	rt.mutex.Unlock()

	for _, l := range listeners {
		ext, ok := l.(ExtendedUpdateListener)
		if !ok {
			continue
		}
		ext.OnSyncFailure(fails)
		if fails == maxConsecutiveFails {
			ext.OnSyncLost()
		}
	}
}

// calculateSleepDuration picks the delay before the next cycle: short after
// a failure, long after many, jittered and stretched when well synced.
func (rt *Timestamper) calculateSleepDuration(lastFailed bool) time.Duration {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	if lastFailed {
		rt.consecutiveFails++
		if rt.consecutiveFails >= maxConsecutiveFails {
			return lostSyncBackoff
		}
		return failureBackoff
	}
	rt.consecutiveFails = 0

	sleepTime := rt.queryFrequency + time.Duration(rand.Int63n(int64(rt.queryFrequency/2)))
	if rt.wellSynced {
		sleepTime *= 3
	}
	return sleepTime
}

func (rt *Timestamper) waitWithCancellation(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-rt.stopChan:
		return false
	}
}

// queryTime collects concurringServers agreeing samples and applies their
// median.
func (rt *Timestamper) queryTime(ctx context.Context) error {
	rt.mutex.Lock()
	servers := append([]string(nil), rt.servers...)
	concurring := rt.concurringServers
	rt.wellSynced = false
	rt.mutex.Unlock()

	found := make([]time.Duration, 0, concurring)
	for i := 0; i < concurring; i++ {
		if err := ctx.Err(); err != nil {
			return oops.Wrapf(err, "NTP query cancelled")
		}
		delta, err := rt.sampleWithRetry(servers)
		if err != nil {
			return err
		}
		if i == 0 {
			if !rt.validateFirstSample(delta) {
				return oops.Errorf("first NTP sample offset %s exceeds %s", delta, maxVariance)
			}
		} else if !validateAdditionalSample(delta, found[0]) {
			return oops.Errorf("NTP sample offset %s disagrees with %s", delta, found[0])
		}
		found = append(found, delta)
	}

	rt.stampTime(time.Now().Add(calculateMedian(found)))
	return nil
}

// sampleWithRetry tries up to len(servers) random servers before giving up.
func (rt *Timestamper) sampleWithRetry(servers []string) (time.Duration, error) {
	var lastErr error
	attempts := len(servers)
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		delta, err := rt.performSingleNTPQuery(servers)
		if err == nil {
			return delta, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

func (rt *Timestamper) performSingleNTPQuery(servers []string) (time.Duration, error) {
	server := selectRandomServer(servers)
	if server == "" {
		return 0, oops.Errorf("no NTP servers available")
	}

	response, err := rt.ntpClient.QueryWithOptions(server, ntp.QueryOptions{Timeout: rt.timeout})
	if err != nil {
		log.WithError(err).WithField("server", server).Debug("NTP query failed")
		return 0, oops.Wrapf(err, "query %s", server)
	}
	if !rt.validateResponse(response) {
		log.WithField("server", server).Debug("NTP response failed validation")
		return 0, oops.Errorf("NTP response validation failed for server %s", server)
	}
	return response.ClockOffset, nil
}

func selectRandomServer(servers []string) string {
	if len(servers) == 0 {
		return ""
	}
	return servers[rand.Intn(len(servers))]
}

func (rt *Timestamper) validateFirstSample(delta time.Duration) bool {
	if absDuration(delta) >= maxVariance {
		return false
	}
	if absDuration(delta) < wellSyncedOffset {
		rt.mutex.Lock()
		rt.wellSynced = true
		rt.mutex.Unlock()
	}
	return true
}

func validateAdditionalSample(delta, expected time.Duration) bool {
	return absDuration(delta-expected) <= maxVariance
}

// calculateMedian returns the median of deltas without reordering the input.
func calculateMedian(deltas []time.Duration) time.Duration {
	switch len(deltas) {
	case 0:
		return 0
	case 1:
		return deltas[0]
	}
	sorted := append([]time.Duration(nil), deltas...)
	for i := 1; i < len(sorted); i++ {
		key := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > key {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = key
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stampTime stores the offset, rounded to the second, and notifies listeners.
func (rt *Timestamper) stampTime(now time.Time) {
	rounded := now.Round(time.Second)

	rt.mutex.Lock()
	rt.timeOffset = time.Until(rounded)
	listeners := append([]UpdateListener(nil), rt.listeners...)
	offset := rt.timeOffset
	rt.mutex.Unlock()

	log.WithFields(logger.Fields{
		"offset":    offset.String(),
		"listeners": len(listeners),
	}).Debug("Applied NTP time offset")

	for _, l := range listeners {
		l.SetNow(rounded, 0)
	}
}

// Now returns the local time corrected by the last applied offset. It never
// blocks on the network.
func (rt *Timestamper) Now() time.Time {
	rt.mutex.Lock()
	offset := rt.timeOffset
	rt.mutex.Unlock()
	return time.Now().Add(offset)
}

// Offset returns the last applied correction.
func (rt *Timestamper) Offset() time.Duration {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	return rt.timeOffset
}

// WellSynced reports whether the last cycle found the local clock within
// 500ms of the servers.
func (rt *Timestamper) WellSynced() bool {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	return rt.wellSynced
}

// GetServers returns a copy of the server list.
func (rt *Timestamper) GetServers() []string {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	return append([]string(nil), rt.servers...)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
