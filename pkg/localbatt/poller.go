// Package localbatt reads the battery directly from the OS, used as a
// fallback telemetry source when UPower is not on the bus.
package localbatt

import (
	"sync"
	"time"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/power"
)

// Poller samples the first battery at a fixed interval and notifies
// subscribers when the percentage or discharge state changes.
type Poller struct {
	mu        sync.Mutex
	telemetry power.Telemetry
	subs      map[int]func()
	nextID    int

	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

var _ power.Battery = &Poller{}

// NewPoller reads the battery once and starts sampling.
func NewPoller(interval time.Duration) (*Poller, error) {
	p := &Poller{
		subs:     map[int]func(){},
		interval: interval,
		stop:     make(chan struct{}),
	}

	t, err := read()
	if err != nil {
		return nil, err
	}
	p.telemetry = t

	go p.loop()
	return p, nil
}

// Kind always reports a battery: the OS reader only enumerates batteries.
func (p *Poller) Kind() power.Kind { return power.KindBattery }

// Telemetry returns the last sampled snapshot.
func (p *Poller) Telemetry() power.Telemetry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.telemetry
}

// IconHints returns a generic battery icon: the OS reader has no icon names.
func (p *Poller) IconHints() []string { return []string{"battery"} }

// Subscribe registers fn for telemetry changes.
func (p *Poller) Subscribe(fn func()) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Close stops the sampling loop.
func (p *Poller) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			t, err := read()
			if err != nil {
				logrus.WithError(err).Debug("battery poll failed")
				continue
			}
			p.update(t)
		}
	}
}

func (p *Poller) update(t power.Telemetry) {
	p.mu.Lock()
	if t == p.telemetry {
		p.mu.Unlock()
		return
	}
	p.telemetry = t

	fns := make([]func(), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func read() (power.Telemetry, error) {
	batteries, err := battery.GetAll()
	if err != nil {
		return power.Telemetry{}, pkgerrors.Wrap(err, "failed to read batteries")
	}
	if len(batteries) == 0 {
		return power.Telemetry{}, pkgerrors.New("no batteries found")
	}

	// The first battery is the canonical one; multi-battery aggregation is
	// solved before telemetry reaches the notifier.
	bat := batteries[0]

	pct := 0.0
	if bat.Full > 0 {
		pct = bat.Current / bat.Full * 100
	}

	return power.Telemetry{
		Percentage:  pct,
		Discharging: bat.State == battery.Discharging,
	}, nil
}
