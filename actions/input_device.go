package actions

import (
	"time"

	"github.com/google/uuid"

	"github.com/wanmail/htmlunit"
)

// inputDevice holds the actions recorded for one input source.
type inputDevice struct {
	id      string
	actions []map[string]interface{}
}

func newInputDevice(id string) inputDevice {
	if id == "" {
		id = uuid.NewString()
	}
	return inputDevice{id: id}
}

// ID returns the input source ID.
func (d *inputDevice) ID() string {
	return d.id
}

func (d *inputDevice) add(action map[string]interface{}) {
	d.actions = append(d.actions, action)
}

func (d *inputDevice) pause(duration time.Duration) {
	d.add(map[string]interface{}{"type": htmlunit.ActionPause, "duration": millis(duration)})
}

func (d *inputDevice) clear() {
	d.actions = nil
}

// Len returns the number of recorded ticks.
func (d *inputDevice) Len() int {
	return len(d.actions)
}
