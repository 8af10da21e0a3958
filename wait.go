package htmlunit

import (
	"time"
)

// Condition is a predicate Wait polls until it returns true or an error.
type Condition func(wd WebDriver) (bool, error)

// Default wait settings.
const (
	DefaultWaitInterval = 100 * time.Millisecond
	DefaultWaitTimeout  = 60 * time.Second
)

// wait polls condition on wd. It is shared by the drivers' Wait methods.
func wait(wd WebDriver, condition Condition, timeout, interval time.Duration) error {
	start := time.Now()
	for {
		done, err := condition(wd)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if elapsed := time.Since(start); elapsed > timeout {
			return newError(ErrTimeout, "condition not met after %v", elapsed)
		}
		time.Sleep(interval)
	}
}

// WaitWithTimeoutAndInterval polls condition every interval until it holds,
// fails, or timeout passes.
func (d *Driver) WaitWithTimeoutAndInterval(condition Condition, timeout, interval time.Duration) error {
	return wait(d, condition, timeout, interval)
}

// WaitWithTimeout polls condition at the default interval.
func (d *Driver) WaitWithTimeout(condition Condition, timeout time.Duration) error {
	return wait(d, condition, timeout, DefaultWaitInterval)
}

// Wait polls condition at the default interval for the default timeout.
func (d *Driver) Wait(condition Condition) error {
	return wait(d, condition, DefaultWaitTimeout, DefaultWaitInterval)
}
