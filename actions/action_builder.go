package actions

import "github.com/wanmail/htmlunit"

// ActionBuilder holds one keyboard and one mouse and sends their actions
// to a WebDriver.
type ActionBuilder struct {
	driver  htmlunit.WebDriver
	Key     *KeyActions
	Pointer *PointerActions
}

// NewActionBuilder returns a builder for wd with a fresh keyboard and mouse.
func NewActionBuilder(wd htmlunit.WebDriver) *ActionBuilder {
	return &ActionBuilder{
		driver:  wd,
		Key:     NewKeyActions(nil),
		Pointer: NewPointerActions(nil),
	}
}

// align pads the shorter device with zero pauses so both have one action
// per tick.
func (ab *ActionBuilder) align() {
	k, p := ab.Key.source, ab.Pointer.source
	for k.Len() < p.Len() {
		k.pause(0)
	}
	for p.Len() < k.Len() {
		p.pause(0)
	}
}

// Sources returns the recorded input sources. Devices with no actions are
// left out.
func (ab *ActionBuilder) Sources() []htmlunit.InputSource {
	ab.align()
	var sources []htmlunit.InputSource
	if ab.Key.source.Len() > 0 {
		sources = append(sources, ab.Key.source.Source())
	}
	if ab.Pointer.source.Len() > 0 {
		sources = append(sources, ab.Pointer.source.Source())
	}
	return sources
}

// Perform sends the recorded actions and clears them.
func (ab *ActionBuilder) Perform() error {
	sources := ab.Sources()
	ab.Key.source.clear()
	ab.Pointer.source.clear()
	if len(sources) == 0 {
		return nil
	}
	return ab.driver.PerformActions(sources)
}

// ClearActions drops the recorded actions and releases every key and
// button held by the driver.
func (ab *ActionBuilder) ClearActions() error {
	ab.Key.source.clear()
	ab.Pointer.source.clear()
	return ab.driver.ReleaseActions()
}
