package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

// scriptedDirectory answers from fixed per-filter outcomes and records how it
// was called. Unscripted filters return an empty set.
type scriptedDirectory struct {
	mu          sync.Mutex
	results     map[directory.Filter][]*directory.Record
	errs        map[directory.Filter]error
	calls       map[directory.Filter]int
	inFlight    int
	maxInFlight int
	delay       time.Duration

	started chan directory.Filter
	release chan struct{}
}

func newScriptedDirectory() *scriptedDirectory {
	return &scriptedDirectory{
		results: make(map[directory.Filter][]*directory.Record),
		errs:    make(map[directory.Filter]error),
		calls:   make(map[directory.Filter]int),
	}
}

func (d *scriptedDirectory) on(f directory.Filter, records ...*directory.Record) *scriptedDirectory {
	d.results[f] = records
	return d
}

func (d *scriptedDirectory) fail(f directory.Filter, err error) *scriptedDirectory {
	d.errs[f] = err
	return d
}

// holdUntilReleased makes every query announce itself on started and block
// until release is closed.
func (d *scriptedDirectory) holdUntilReleased(n int) {
	d.started = make(chan directory.Filter, n)
	d.release = make(chan struct{})
}

func (d *scriptedDirectory) Query(ctx context.Context, f directory.Filter) ([]*directory.Record, error) {
	d.mu.Lock()
	d.calls[f]++
	d.inFlight++
	if d.inFlight > d.maxInFlight {
		d.maxInFlight = d.inFlight
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inFlight--
		d.mu.Unlock()
	}()

	if d.started != nil {
		d.started <- f
		<-d.release
	}
	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	if err, ok := d.errs[f]; ok {
		return nil, err
	}
	return d.results[f], nil
}

func (d *scriptedDirectory) callCount(f directory.Filter) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[f]
}

func (d *scriptedDirectory) totalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.calls {
		total += n
	}
	return total
}

func record(id, name, email, tel string) *directory.Record {
	rec := &directory.Record{ID: id}
	if name != "" {
		rec.Name = []directory.Entry{{Value: name}}
	}
	if email != "" {
		rec.Email = []directory.Entry{{Value: email}}
	}
	if tel != "" {
		rec.Tel = []directory.Entry{{Value: tel}}
	}
	return rec
}

// staticLocalizer returns the bracketed key, so tests can tell localized
// labels apart from data.
type staticLocalizer struct{}

func (staticLocalizer) Get(key string) string { return "[" + key + "]" }
