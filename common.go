package htmlunit

import (
	"fmt"

	"github.com/golang/glog"
)

var debugFlag = false

// SetDebug turns on tracing of session commands. Traces go to glog at
// INFO level.
func SetDebug(debug bool) {
	debugFlag = debug
}

func debugLog(format string, args ...interface{}) {
	if !debugFlag {
		return
	}
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
}
