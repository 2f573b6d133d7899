package metrics

import (
	"sync"
	"time"
)

// Timer brackets a timed scope. Obtain one with StartTimer and arrange Stop
// with defer so error paths still record:
//
//	defer reg.StartTimer("render_video", nil).Stop()
//
// Stop records elapsed wall-clock time exactly once; later calls are no-ops.
type Timer struct {
	reg   *Registry
	name  string
	tags  map[string]string
	start time.Time
	once  sync.Once
}

// StartTimer begins timing a scope against name.
func (r *Registry) StartTimer(name string, tags map[string]string) *Timer {
	return &Timer{reg: r, name: name, tags: copyTags(tags), start: r.now()}
}

// Stop records the elapsed time since StartTimer. Only the first call records.
func (t *Timer) Stop() {
	t.once.Do(func() {
		t.reg.RecordTimer(t.name, t.reg.now().Sub(t.start), t.tags)
	})
}
