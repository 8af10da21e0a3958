package htmlunit

import (
	"errors"
	"fmt"
	"net/http"
)

// Error contains information about a failure of a command. See the table of
// these strings at https://www.w3.org/TR/webdriver/#handling-errors .
//
// Errors of the same kind match with errors.Is, so callers can compare
// against the Err* values of this package.
type Error struct {
	// Err contains a general error string provided by the server.
	Err string `json:"error"`
	// Message is a detailed, human-readable message specific to the failure.
	Message string `json:"message"`
	// Stacktrace may contain the server-side stacktrace where the error occurred.
	Stacktrace string `json:"stacktrace"`
	// HTTPCode is the HTTP status code returned by the server.
	HTTPCode int `json:"-"`
	// LegacyCode is the "Response Status Code" defined in the legacy Selenium
	// WebDriver JSON wire protocol. This code is only produced by older
	// Selenium WebDriver versions, Chromedriver, and InternetExplorerDriver.
	LegacyCode int `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" || e.Message == e.Err {
		return e.Err
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == e.Err
}

// Error kinds.
var (
	ErrInvalidArgument        = &Error{Err: "invalid argument"}
	ErrInvalidSessionID       = &Error{Err: "invalid session id"}
	ErrNoSuchElement          = &Error{Err: "no such element"}
	ErrNoSuchAlert            = &Error{Err: "no such alert"}
	ErrNoSuchWindow           = &Error{Err: "no such window"}
	ErrNoSuchFrame            = &Error{Err: "no such frame"}
	ErrNoSuchCookie           = &Error{Err: "no such cookie"}
	ErrStaleElement           = &Error{Err: "stale element reference"}
	ErrInvalidSelector        = &Error{Err: "invalid selector"}
	ErrJavaScript             = &Error{Err: "javascript error"}
	ErrScriptTimeout          = &Error{Err: "script timeout"}
	ErrTimeout                = &Error{Err: "timeout"}
	ErrInvalidCookieDomain    = &Error{Err: "invalid cookie domain"}
	ErrUnsupportedOperation   = &Error{Err: "unsupported operation"}
	ErrElementNotInteractable = &Error{Err: "element not interactable"}
	ErrUnknownCommand         = &Error{Err: "unknown command"}
	ErrUnknownMethod          = &Error{Err: "unknown method"}
	ErrSessionNotCreated      = &Error{Err: "session not created"}
	ErrUnknown                = &Error{Err: "unknown error"}
)

// ErrNullValue is returned when a command produces no value, such as
// GetAttribute for an attribute the element does not have.
var ErrNullValue = errors.New("htmlunit: null value")

// httpCodes maps error kinds to the HTTP status a W3C server answers with.
var httpCodes = map[string]int{
	"invalid argument":         http.StatusBadRequest,
	"invalid selector":         http.StatusBadRequest,
	"invalid cookie domain":    http.StatusBadRequest,
	"element not interactable": http.StatusBadRequest,
	"invalid session id":       http.StatusNotFound,
	"no such element":          http.StatusNotFound,
	"no such alert":            http.StatusNotFound,
	"no such window":           http.StatusNotFound,
	"no such frame":            http.StatusNotFound,
	"no such cookie":           http.StatusNotFound,
	"stale element reference":  http.StatusNotFound,
	"unknown command":          http.StatusNotFound,
	"unknown method":           http.StatusMethodNotAllowed,
}

// HTTPStatus returns the HTTP status for an error kind.
func HTTPStatus(kind string) int {
	if code, ok := httpCodes[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// legacyErrors maps the legacy JSON wire protocol status codes to error
// kinds.
var legacyErrors = map[int]string{
	6:   "invalid session id",
	7:   "no such element",
	8:   "no such frame",
	9:   "unknown command",
	10:  "stale element reference",
	11:  "element not interactable",
	12:  "invalid element state",
	13:  "unknown error",
	15:  "element not selectable",
	17:  "javascript error",
	19:  "invalid selector",
	21:  "timeout",
	23:  "no such window",
	24:  "invalid cookie domain",
	25:  "unable to set cookie",
	26:  "unexpected alert open",
	27:  "no such alert",
	28:  "script timeout",
	29:  "invalid element coordinates",
	32:  "invalid selector",
	33:  "session not created",
	34:  "move target out of bounds",
	61:  "invalid argument",
	62:  "no such cookie",
	405: "unsupported operation",
}

// newError returns an error of the given kind with a formatted message.
func newError(kind *Error, format string, args ...interface{}) *Error {
	return &Error{
		Err:      kind.Err,
		Message:  fmt.Sprintf(format, args...),
		HTTPCode: HTTPStatus(kind.Err),
	}
}
