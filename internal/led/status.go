package led

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/dongled/internal/events"
	"github.com/smazurov/dongled/internal/metrics"
)

// Mode is the steady-state display mode derived from profile connectivity.
type Mode int32

// Display modes.
const (
	ModeOff Mode = iota
	ModeAdvertising
	ModeConnected
)

// String returns the mode name for logs and metrics labels.
func (m Mode) String() string {
	switch m {
	case ModeAdvertising:
		return "advertising"
	case ModeConnected:
		return "connected"
	default:
		return "off"
	}
}

// LinkStatus is the connectivity query surface of the BLE profile tracker.
type LinkStatus interface {
	Connected() bool
	OpenForPairing() bool
}

// LayerSource reports the highest active keymap layer, 0 for base.
type LayerSource interface {
	HighestActiveLayer() int
}

// Timings holds the blink pattern periods. All are runtime-tunable except
// the boot step, which is only used once during Start.
type Timings struct {
	AdvertiseToggle time.Duration
	LayerStep       time.Duration
	BootStep        time.Duration
}

// DefaultTimings returns the stock pattern periods.
func DefaultTimings() Timings {
	return Timings{
		AdvertiseToggle: 100 * time.Millisecond,
		LayerStep:       400 * time.Millisecond,
		BootStep:        80 * time.Millisecond,
	}
}

const bootBlinkCycles = 3

// StatusController drives the status LED from profile connectivity state and
// transiently overrides it to flash the active keymap layer number.
//
// Three goroutine contexts touch the LED: the event handlers (never block),
// the advertising ticker goroutine (never blocks), and the blink worker (the
// only context allowed to sleep). Shared state is held in atomics; the wake
// channel has capacity 1 so redundant blink requests coalesce, keeping only
// the most recent count.
type StatusController struct {
	indicator Indicator
	link      LinkStatus
	layers    LayerSource
	bus       *events.Bus
	logger    *slog.Logger

	mode        atomic.Int32
	ledOn       atomic.Bool // last commanded value
	blinkActive atomic.Bool
	blinkCount  atomic.Int32
	wake        chan struct{}

	advToggleNs atomic.Int64
	layerStepNs atomic.Int64
	bootStep    time.Duration

	advMu   sync.Mutex
	advStop chan struct{} // nil while the advertising ticker is not running

	ctx        context.Context
	cancel     context.CancelFunc
	workerDone chan struct{}

	unsubProfile func()
	unsubLayer   func()
}

// NewStatusController creates a status controller. Call Start to configure
// the device and begin processing events.
func NewStatusController(indicator Indicator, link LinkStatus, layers LayerSource, bus *events.Bus, logger *slog.Logger, timings Timings) *StatusController {
	ctx, cancel := context.WithCancel(context.Background())
	c := &StatusController{
		indicator: indicator,
		link:      link,
		layers:    layers,
		bus:       bus,
		logger:    logger,
		wake:      make(chan struct{}, 1),
		bootStep:  timings.BootStep,
		ctx:       ctx,
		cancel:    cancel,
	}
	c.advToggleNs.Store(int64(timings.AdvertiseToggle))
	c.layerStepNs.Store(int64(timings.LayerStep))
	return c
}

// Start configures the indicator, runs the boot confirmation blink, applies
// the initial mode, and begins processing events.
//
// A configuration failure is reported as ErrDeviceUnavailable but does not
// stop the controller: the mode and override machinery keeps running with
// every LED write degraded to a no-op.
func (c *StatusController) Start() error {
	var initErr error
	if err := c.indicator.Configure(); err != nil {
		initErr = fmt.Errorf("configuring indicator: %w", err)
		c.logger.Warn("Status LED unavailable, continuing without visual output", "error", err)
	} else {
		c.bootBlink()
	}

	c.mode.Store(int32(c.computeMode()))
	c.applyMode()

	c.unsubProfile = c.bus.Subscribe(func(e events.ProfileChangedEvent) {
		c.handleProfileChanged(e)
	})
	c.unsubLayer = c.bus.Subscribe(func(e events.LayerStateChangedEvent) {
		c.handleLayerChanged(e)
	})

	c.workerDone = make(chan struct{})
	go c.runBlinker()

	c.logger.Info("Status controller started", "mode", c.Mode().String())
	return initErr
}

// Stop unsubscribes from events, terminates the blink worker, and turns the
// LED off.
func (c *StatusController) Stop() {
	if c.unsubProfile != nil {
		c.unsubProfile()
	}
	if c.unsubLayer != nil {
		c.unsubLayer()
	}

	c.cancel()
	if c.workerDone != nil {
		<-c.workerDone
	}

	c.stopAdvertise()
	c.set(false)
	c.logger.Info("Status controller stopped")
}

// Mode returns the current display mode.
func (c *StatusController) Mode() Mode {
	return Mode(c.mode.Load())
}

// BlinkActive reports whether a layer blink sequence currently owns the LED.
func (c *StatusController) BlinkActive() bool {
	return c.blinkActive.Load()
}

// LedOn returns the last commanded LED value.
func (c *StatusController) LedOn() bool {
	return c.ledOn.Load()
}

// SetTimings updates the advertising toggle and layer step periods.
// The next tick or blink step picks up the new values.
func (c *StatusController) SetTimings(advertiseToggle, layerStep time.Duration) {
	if advertiseToggle > 0 {
		c.advToggleNs.Store(int64(advertiseToggle))
	}
	if layerStep > 0 {
		c.layerStepNs.Store(int64(layerStep))
	}
}

// RequestLayerBlink records the number of cycles to blink and wakes the
// blink worker. Requests issued before the worker consumes a pending wake
// collapse into one sequence using the most recent count. Count 0 is a no-op.
func (c *StatusController) RequestLayerBlink(count int) {
	if count <= 0 {
		return
	}
	c.blinkCount.Store(int32(count))
	select {
	case c.wake <- struct{}{}:
	default:
		// A wake is already pending; the stored count wins.
		metrics.RecordBlinkCoalesced()
	}
}

// computeMode derives the display mode from the current profile state.
func (c *StatusController) computeMode() Mode {
	if c.link.Connected() {
		return ModeConnected
	}
	if c.link.OpenForPairing() {
		return ModeAdvertising
	}
	return ModeOff
}

// applyMode drives the LED according to the current mode, unless a layer
// blink sequence owns it.
//
// While a blink is active in Advertising mode the ticker is left running, so
// the ticker and the worker may both write the LED until the worker's stop
// request takes effect. This matches the firmware behavior; see the known
// race test before changing it.
func (c *StatusController) applyMode() {
	mode := c.Mode()

	if c.blinkActive.Load() {
		if mode != ModeAdvertising {
			c.stopAdvertise()
		}
		return
	}

	switch mode {
	case ModeAdvertising:
		c.startAdvertise()
	case ModeConnected:
		c.stopAdvertise()
		c.set(true)
	default:
		c.stopAdvertise()
		c.set(false)
	}
}

// handleProfileChanged recomputes the mode and reapplies the display pattern.
func (c *StatusController) handleProfileChanged(_ events.ProfileChangedEvent) {
	mode := c.computeMode()
	if Mode(c.mode.Swap(int32(mode))) != mode {
		c.logger.Debug("Display mode changed", "mode", mode.String())
		metrics.RecordModeChange(mode.String())
	}
	c.applyMode()
}

// handleLayerChanged requests a blink sequence for a newly activated layer.
// Deactivations, non-connected modes, and the base layer never blink.
func (c *StatusController) handleLayerChanged(e events.LayerStateChangedEvent) {
	if !e.Active {
		return
	}
	if c.Mode() != ModeConnected {
		return
	}
	layer := c.layers.HighestActiveLayer()
	if layer == 0 {
		return
	}
	c.RequestLayerBlink(layer)
}

// runBlinker is the blink worker loop, the only context allowed to sleep.
func (c *StatusController) runBlinker() {
	defer close(c.workerDone)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}

		count := int(c.blinkCount.Load())
		if count == 0 {
			continue
		}

		c.blinkActive.Store(true)
		c.stopAdvertise()

		completed := true
		for i := 0; i < count; i++ {
			c.set(false)
			if !c.sleep(c.layerStep()) {
				completed = false
				break
			}
			c.set(true)
			if !c.sleep(c.layerStep()) {
				completed = false
				break
			}
		}

		c.blinkActive.Store(false)
		if !completed {
			return
		}

		metrics.RecordBlinkSequence()
		c.applyMode()
	}
}

// startAdvertise launches the advertising ticker goroutine. Idempotent.
// The first phase is ON immediately, then the LED toggles every period.
func (c *StatusController) startAdvertise() {
	c.advMu.Lock()
	defer c.advMu.Unlock()

	if c.advStop != nil {
		return
	}
	stop := make(chan struct{})
	c.advStop = stop

	c.set(true)
	go c.advertise(stop)
}

// stopAdvertise terminates the advertising ticker. Idempotent. A tick that
// already fired may still land one toggle after this returns; with a 100 ms
// period that single flicker is acceptable.
func (c *StatusController) stopAdvertise() {
	c.advMu.Lock()
	defer c.advMu.Unlock()

	if c.advStop == nil {
		return
	}
	close(c.advStop)
	c.advStop = nil
}

// advertise toggles the LED until stopped. The body only flips the last
// commanded value; it must never block.
func (c *StatusController) advertise(stop chan struct{}) {
	ticker := time.NewTicker(c.advertiseToggle())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.set(!c.ledOn.Load())
			ticker.Reset(c.advertiseToggle())
		}
	}
}

// bootBlink runs the blocking startup confirmation pattern. It executes
// before any event processing begins, so no arbitration is needed.
func (c *StatusController) bootBlink() {
	for i := 0; i < bootBlinkCycles; i++ {
		c.set(true)
		time.Sleep(c.bootStep)
		c.set(false)
		time.Sleep(c.bootStep)
	}
}

// set writes the LED and records the last commanded value. A missing device
// makes this a no-op without updating the recorded value, matching the
// hardware write path.
func (c *StatusController) set(on bool) {
	if !c.indicator.Ready() {
		return
	}
	if err := c.indicator.Set(on); err != nil {
		c.logger.Warn("Indicator write failed", "on", on, "error", err)
		return
	}
	c.ledOn.Store(on)
	metrics.RecordIndicatorWrite()
}

// sleep blocks the worker for d, returning false if the controller stopped.
func (c *StatusController) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *StatusController) advertiseToggle() time.Duration {
	return time.Duration(c.advToggleNs.Load())
}

func (c *StatusController) layerStep() time.Duration {
	return time.Duration(c.layerStepNs.Load())
}
