// Package seleniumtest provides tests to exercise package htmlunit. These
// tests are in a separate package so that both the embedded driver and the
// remote client talking to the WebDriver server can be validated with the
// same suite.
package seleniumtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	socks5 "github.com/armon/go-socks5"
	"github.com/google/go-cmp/cmp"

	"github.com/wanmail/htmlunit"
	"github.com/wanmail/htmlunit/actions"
	"github.com/wanmail/htmlunit/log"
)

// Config selects the driver under test. An empty Addr runs the suite
// against the embedded driver; otherwise Addr is the URL prefix of a
// WebDriver server. ServerURL is the base URL of a server running Handler.
type Config struct {
	Addr, ServerURL string
	SkipProxy       bool
}

func runTest(f func(*testing.T, Config), c Config) func(*testing.T) {
	return func(t *testing.T) {
		f(t, c)
	}
}

// NewRemote creates the driver under test.
var NewRemote = func(_ *testing.T, caps htmlunit.Capabilities, addr string) (htmlunit.WebDriver, error) {
	if addr == "" {
		d, err := htmlunit.NewDriverWithCapabilities(caps)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return htmlunit.NewRemote(caps, addr)
}

func newRemote(t *testing.T, caps htmlunit.Capabilities, c Config) htmlunit.WebDriver {
	wd, err := NewRemote(t, caps, c.Addr)
	if err != nil {
		t.Fatalf("NewRemote(%+v, %q) returned error: %v", caps, c.Addr, err)
	}
	return wd
}

func newTestCapabilities(t *testing.T, c Config) htmlunit.Capabilities {
	caps := htmlunit.Capabilities{
		"browserName": htmlunit.BrowserName,
	}
	caps.SetJavascriptEnabled(true)
	return caps
}

func quitRemote(t *testing.T, wd htmlunit.WebDriver) {
	if err := wd.Quit(); err != nil {
		t.Errorf("wd.Quit() returned error: %v", err)
	}
}

func getPage(t *testing.T, wd htmlunit.WebDriver, u string) {
	t.Helper()
	if err := wd.Get(u); err != nil {
		t.Fatalf("wd.Get(%q) returned error: %v", u, err)
	}
}

func RunCommonTests(t *testing.T, c Config) {
	t.Run("Status", runTest(testStatus, c))
	t.Run("DeleteSession", runTest(testDeleteSession, c))
	t.Run("Error", runTest(testError, c))
	t.Run("Capabilities", runTest(testCapabilities, c))
	t.Run("SetAsyncScriptTimeout", runTest(testSetAsyncScriptTimeout, c))
	t.Run("SetImplicitWaitTimeout", runTest(testSetImplicitWaitTimeout, c))
	t.Run("SetPageLoadTimeout", runTest(testSetPageLoadTimeout, c))
	t.Run("Windows", runTest(testWindows, c))
	t.Run("Get", runTest(testGet, c))
	t.Run("GetUnreachableHost", runTest(testGetUnreachableHost, c))
	t.Run("GetMalformedURL", runTest(testGetMalformedURL, c))
	t.Run("Navigation", runTest(testNavigation, c))
	t.Run("Title", runTest(testTitle, c))
	t.Run("PageSource", runTest(testPageSource, c))
	t.Run("FindElement", runTest(testFindElement, c))
	t.Run("FindElements", runTest(testFindElements, c))
	t.Run("FindElementMissing", runTest(testFindElementMissing, c))
	t.Run("SendKeys", runTest(testSendKeys, c))
	t.Run("Click", runTest(testClick, c))
	t.Run("Select", runTest(testSelect, c))
	t.Run("GetCookies", runTest(testGetCookies, c))
	t.Run("GetCookie", runTest(testGetCookie, c))
	t.Run("AddCookie", runTest(testAddCookie, c))
	t.Run("DeleteCookie", runTest(testDeleteCookie, c))
	t.Run("Location", runTest(testLocation, c))
	t.Run("LocationInView", runTest(testLocationInView, c))
	t.Run("Size", runTest(testSize, c))
	t.Run("ExecuteScript", runTest(testExecuteScript, c))
	t.Run("ExecuteScriptOnElement", runTest(testExecuteScriptOnElement, c))
	t.Run("ExecuteScriptWithNilArgs", runTest(testExecuteScriptWithNilArgs, c))
	t.Run("ExecuteScriptAsync", runTest(testExecuteScriptAsync, c))
	t.Run("Screenshot", runTest(testScreenshot, c))
	t.Run("Log", runTest(testLog, c))
	t.Run("IsSelected", runTest(testIsSelected, c))
	t.Run("IsDisplayed", runTest(testIsDisplayed, c))
	t.Run("GetAttributeNotFound", runTest(testGetAttributeNotFound, c))
	t.Run("KeyDownUp", runTest(testKeyDownUp, c))
	t.Run("Actions", runTest(testActions, c))
	t.Run("CSSProperty", runTest(testCSSProperty, c))
	if !c.SkipProxy {
		t.Run("Proxy", runTest(testProxy, c))
	}
	t.Run("SwitchFrame", runTest(testSwitchFrame, c))
	t.Run("SwitchParentFrame", runTest(testSwitchParentFrame, c))
	t.Run("Wait", runTest(testWait, c))
	t.Run("ActiveElement", runTest(testActiveElement, c))
	t.Run("AcceptAlert", runTest(testAcceptAlert, c))
	t.Run("DismissAlert", runTest(testDismissAlert, c))
	t.Run("ConfirmAndPrompt", runTest(testConfirmAndPrompt, c))
	t.Run("Quit", runTest(testQuit, c))
}

func testStatus(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	status, err := wd.Status()
	if err != nil {
		t.Fatalf("wd.Status() returned error: %v", err)
	}
	if !status.Ready {
		t.Fatalf("wd.Status() = %+v, want Ready", status)
	}
	if len(status.OS.Name) == 0 && status.Message == "" {
		t.Fatalf("OS.Name or Message not provided: %+v", status)
	}
}

func testDeleteSession(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	id := wd.SessionID()
	if c.Addr == "" {
		if err := wd.Quit(); err != nil {
			t.Fatalf("wd.Quit() returned error: %v", err)
		}
	} else if err := htmlunit.DeleteSession(c.Addr, id); err != nil {
		t.Fatalf("DeleteSession(%s, %s) returned error: %v", c.Addr, id, err)
	}

	_, err := wd.Title()
	if !errors.Is(err, htmlunit.ErrInvalidSessionID) {
		t.Fatalf("wd.Title() after deleting session %s returned error %v, want %v", id, err, htmlunit.ErrInvalidSessionID)
	}
}

func testError(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	_, err := wd.FindElement(htmlunit.ByID, "no-such-element")
	if err == nil {
		t.Fatal("wd.FindElement(htmlunit.ByID, 'no-such-element') did not return an error as expected")
	}

	var e *htmlunit.Error
	if !errors.As(err, &e) {
		t.Fatalf("wd.FindElement(htmlunit.ByID, 'no-such-element') returned an error that is not an *Error: %v", err)
	}
	if want := "no such element"; e.Err != want {
		t.Errorf("wd.FindElement(htmlunit.ByID, 'no-such-element'); err.Err = %q, want %q", e.Err, want)
	}
	if e.HTTPCode != http.StatusNotFound {
		t.Errorf("wd.FindElement(htmlunit.ByID, 'no-such-element'); err.HTTPCode = %d, want %d", e.HTTPCode, http.StatusNotFound)
	}
	if !errors.Is(err, htmlunit.ErrNoSuchElement) {
		t.Errorf("errors.Is(%v, ErrNoSuchElement) = false", err)
	}
}

func testCapabilities(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	caps, err := wd.Capabilities()
	if err != nil {
		t.Fatalf("wd.Capabilities() returned error: %v", err)
	}

	if name, _ := caps["browserName"].(string); name != htmlunit.BrowserName {
		t.Fatalf("bad browser name - %v (should be %s)", caps["browserName"], htmlunit.BrowserName)
	}
	if js, _ := caps[htmlunit.JavascriptEnabledKey].(bool); !js {
		t.Fatalf("caps[%q] = %v, want true", htmlunit.JavascriptEnabledKey, caps[htmlunit.JavascriptEnabledKey])
	}
}

func testSetAsyncScriptTimeout(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	if err := wd.SetAsyncScriptTimeout(200 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
}

func testSetImplicitWaitTimeout(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	if err := wd.SetImplicitWaitTimeout(200 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
}

func testSetPageLoadTimeout(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	if err := wd.SetPageLoadTimeout(200 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
}

func testWindows(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	firstHandle, err := wd.CurrentWindowHandle()
	if err != nil {
		t.Fatal(err)
	}
	if len(firstHandle) == 0 {
		t.Fatal("Empty handle")
	}

	const linkText = "other page"
	if _, err := wd.FindElement(htmlunit.ByLinkText, linkText); err != nil {
		t.Fatalf("wd.FindElement(%q, %q) returned error: %v", htmlunit.ByLinkText, linkText, err)
	}

	otherURL := c.ServerURL + "/other"
	if _, err := wd.ExecuteScript(fmt.Sprintf("window.open(%q)", otherURL), nil); err != nil {
		t.Fatalf("opening a new window via Javascript returned error: %v", err)
	}

	handles, err := wd.WindowHandles()
	if err != nil {
		t.Fatalf("wd.WindowHandles() returned error: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("len(wd.WindowHandles()) = %d, expected 2", len(handles))
	}
	var found bool
	var otherHandle string
	for _, h := range handles {
		if h == firstHandle {
			found = true
		} else {
			otherHandle = h
		}
	}
	if !found {
		t.Fatalf("wd.WindowHandles() returned %v, expected to include %q", handles, firstHandle)
	}
	if h, err := wd.CurrentWindowHandle(); err != nil || h != firstHandle {
		t.Fatalf("wd.CurrentWindowHandle() after window.open = %q, %v; want %q", h, err, firstHandle)
	}

	t.Run("SwitchWindow", func(t *testing.T) {
		if err := wd.SwitchWindow(otherHandle); err != nil {
			t.Fatalf("wd.SwitchWindow(otherHandle) returned error: %v", err)
		}
		if _, err := wd.FindElement(htmlunit.ByLinkText, linkText); err == nil {
			t.Fatalf("wd.FindElement(%q, %q) (after switching to the new window) returned nil, expected error", htmlunit.ByLinkText, linkText)
		}
		if u, err := wd.CurrentURL(); err != nil || u != otherURL {
			t.Fatalf("wd.CurrentURL() in the new window = %q, %v; want %q", u, err, otherURL)
		}
		if err := wd.SwitchWindow(firstHandle); err != nil {
			t.Fatalf("wd.SwitchWindow(firstHandle) returned error: %v", err)
		}
		if _, err := wd.FindElement(htmlunit.ByLinkText, linkText); err != nil {
			t.Fatalf("wd.FindElement(%q, %q) (after switching to the original window) returned error: %v", htmlunit.ByLinkText, linkText, err)
		}
	})

	t.Run("SwitchWindowUnknown", func(t *testing.T) {
		err := wd.SwitchWindow("no-such-window")
		if !errors.Is(err, htmlunit.ErrNoSuchWindow) {
			t.Fatalf("wd.SwitchWindow(%q) returned error %v, want %v", "no-such-window", err, htmlunit.ErrNoSuchWindow)
		}
	})

	t.Run("MaximizeWindow", func(t *testing.T) {
		if err := wd.MaximizeWindow(otherHandle); err != nil {
			t.Fatalf("error maximizing window: %s", err)
		}
	})

	t.Run("ResizeWindow", func(t *testing.T) {
		if err := wd.ResizeWindow(otherHandle, 200, 300); err != nil {
			t.Fatalf("error resizing window: %s", err)
		}
		size, err := wd.WindowSize(otherHandle)
		if err != nil {
			t.Fatalf("wd.WindowSize(otherHandle) returned error: %v", err)
		}
		if want := (&htmlunit.Size{Width: 200, Height: 300}); !reflect.DeepEqual(size, want) {
			t.Fatalf("wd.WindowSize(otherHandle) = %+v, want %+v", size, want)
		}
	})

	t.Run("WindowPosition", func(t *testing.T) {
		if err := wd.SetWindowPosition(otherHandle, 10, 20); err != nil {
			t.Fatalf("wd.SetWindowPosition(otherHandle, 10, 20) returned error: %v", err)
		}
		pos, err := wd.WindowPosition(otherHandle)
		if err != nil {
			t.Fatalf("wd.WindowPosition(otherHandle) returned error: %v", err)
		}
		if want := (&htmlunit.Point{X: 10, Y: 20}); !reflect.DeepEqual(pos, want) {
			t.Fatalf("wd.WindowPosition(otherHandle) = %+v, want %+v", pos, want)
		}
	})

	t.Run("CloseWindow", func(t *testing.T) {
		if err := wd.CloseWindow(otherHandle); err != nil {
			t.Fatalf("wd.CloseWindow(otherHandle) returned error: %v", err)
		}
		handles, err := wd.WindowHandles()
		if err != nil {
			t.Fatalf("wd.WindowHandles() returned error: %v", err)
		}
		if len(handles) != 1 {
			t.Fatalf("len(wd.WindowHandles()) = %d, expected 1", len(handles))
		}
	})
}

func testGet(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	newURL, err := wd.CurrentURL()
	if err != nil {
		t.Fatal(err)
	}

	if newURL != c.ServerURL+"/" {
		t.Fatalf("%s != %s/", newURL, c.ServerURL)
	}
}

func testGetUnreachableHost(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	// The reserved .invalid TLD never resolves.
	const u = "http://no-such-host.invalid/some/path?q=1"
	if err := wd.Get(u); err != nil {
		t.Fatalf("wd.Get(%q) returned error: %v", u, err)
	}
	got, err := wd.CurrentURL()
	if err != nil {
		t.Fatalf("wd.CurrentURL() returned error: %v", err)
	}
	if got != u {
		t.Fatalf("wd.CurrentURL() = %q, want %q", got, u)
	}
}

func testGetMalformedURL(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	for _, u := range []string{"not a url", "http://"} {
		if err := wd.Get(u); !errors.Is(err, htmlunit.ErrInvalidArgument) {
			t.Errorf("wd.Get(%q) returned error %v, want %v", u, err, htmlunit.ErrInvalidArgument)
		}
	}
}

func testNavigation(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	url1 := c.ServerURL
	getPage(t, wd, url1)

	url2 := c.ServerURL + "/other"
	getPage(t, wd, url2)

	if err := wd.Back(); err != nil {
		t.Fatal(err)
	}
	u, err := wd.CurrentURL()
	if err != nil {
		t.Fatalf("wd.CurrentURL() returned error: %v", err)
	}
	if u != url1+"/" {
		t.Fatalf("back got me to %s (expected %s/)", u, url1)
	}
	if err := wd.Forward(); err != nil {
		t.Fatal(err)
	}
	u, err = wd.CurrentURL()
	if err != nil {
		t.Fatalf("wd.CurrentURL() returned error: %v", err)
	}
	if u != url2 {
		t.Fatalf("forward got me to %s (expected %s)", u, url2)
	}

	if err := wd.Refresh(); err != nil {
		t.Fatal(err)
	}
	u, err = wd.CurrentURL()
	if err != nil {
		t.Fatalf("wd.CurrentURL() returned error: %v", err)
	}
	if u != url2 {
		t.Fatalf("refresh got me to %s (expected %s)", u, url2)
	}
}

func testTitle(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	title, err := wd.Title()
	if err != nil {
		t.Fatal(err)
	}

	expectedTitle := "Go HtmlUnit Test Suite"
	if title != expectedTitle {
		t.Fatalf("Bad title %s, should be %s", title, expectedTitle)
	}
}

func testPageSource(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	source, err := wd.PageSource()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(source, "The home page.") {
		t.Fatalf("Bad source\n%s", source)
	}
}

func testFindElement(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	for _, tc := range []struct {
		by, query string
	}{
		{htmlunit.ByName, "submit"},
		{htmlunit.ByCSSSelector, "input[name=submit]"},
		{htmlunit.ByXPATH, "/html/body/form/input[2]"},
		{htmlunit.ByLinkText, "search"},
		{htmlunit.ByPartialLinkText, "sear"},
		{htmlunit.ByID, "submit"},
	} {
		t.Run(tc.by, func(t *testing.T) {
			getPage(t, wd, c.ServerURL)
			elem, err := wd.FindElement(tc.by, tc.query)
			if err != nil {
				t.Fatalf("wd.FindElement(%q, %q) returned error: %v", tc.by, tc.query, err)
			}
			evaluateElement(t, wd, elem)
		})
	}
}

func evaluateElement(t *testing.T, wd htmlunit.WebDriver, elem htmlunit.WebElement) {
	if err := elem.Click(); err != nil {
		t.Fatalf("wd.FindElement().Click() returned error: %v", err)
	}

	u, err := wd.CurrentURL()
	if err != nil {
		t.Fatalf("wd.CurrentURL() returned error: %v", err)
	}

	if !strings.Contains(u, "/search") {
		t.Fatalf("After element click, got URL %q, want /search", u)
	}
}

func testFindElements(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	elems, err := wd.FindElements(htmlunit.ByName, "submit")
	if err != nil {
		t.Fatal(err)
	}

	if len(elems) != 1 {
		t.Fatalf("Wrong number of elements %d (should be 1)", len(elems))
	}

	none, err := wd.FindElements(htmlunit.ByName, "no-such-name")
	if err != nil {
		t.Fatalf("wd.FindElements(htmlunit.ByName, %q) returned error: %v", "no-such-name", err)
	}
	if len(none) != 0 {
		t.Fatalf("wd.FindElements(htmlunit.ByName, %q) returned %d elements, want 0", "no-such-name", len(none))
	}

	evaluateElement(t, wd, elems[0])
}

func testFindElementMissing(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	form, err := wd.FindElement(htmlunit.ByTagName, "form")
	if err != nil {
		t.Fatalf("wd.FindElement(htmlunit.ByTagName, %q) returned error: %v", "form", err)
	}
	// The links live outside the form.
	if _, err := form.FindElement(htmlunit.ByLinkText, "search"); !errors.Is(err, htmlunit.ErrNoSuchElement) {
		t.Fatalf("form.FindElement(htmlunit.ByLinkText, %q) returned error %v, want %v", "search", err, htmlunit.ErrNoSuchElement)
	}

	if err := wd.SetImplicitWaitTimeout(300 * time.Millisecond); err != nil {
		t.Fatalf("wd.SetImplicitWaitTimeout() returned error: %v", err)
	}
	start := time.Now()
	if _, err := wd.FindElement(htmlunit.ByID, "never-there"); !errors.Is(err, htmlunit.ErrNoSuchElement) {
		t.Fatalf("wd.FindElement(htmlunit.ByID, %q) returned error %v, want %v", "never-there", err, htmlunit.ErrNoSuchElement)
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Fatalf("wd.FindElement with an implicit wait returned after %s, want at least 300ms", elapsed)
	}
}

func testSendKeys(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	input, err := wd.FindElement(htmlunit.ByName, "q")
	if err != nil {
		t.Fatal(err)
	}
	const query = "golang"
	if err := input.SendKeys(query + htmlunit.EnterKey); err != nil {
		t.Fatal(err)
	}

	source, err := wd.PageSource()
	if err != nil {
		t.Fatalf("wd.PageSource() returned error: %v", err)
	}

	if !strings.Contains(source, searchContents) {
		t.Fatalf("Can't find %q on page after searching for %q", searchContents, query)
	}

	if !strings.Contains(source, query) {
		t.Fatalf("Can't find search query %q in source", query)
	}
}

func testClick(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	const searchBoxName = "q"
	input, err := wd.FindElement(htmlunit.ByName, searchBoxName)
	if err != nil {
		t.Fatalf("wd.FindElement(%q, %q) returned error: %v", htmlunit.ByName, searchBoxName, err)
	}
	const query = "golang"
	if err = input.SendKeys(query); err != nil {
		t.Fatalf("input.SendKeys(%q) returned error: %v", query, err)
	}

	const selectTag = "select"
	sel, err := wd.FindElement(htmlunit.ByCSSSelector, selectTag)
	if err != nil {
		t.Fatalf("wd.FindElement(%q, %q) returned error: %v", htmlunit.ByCSSSelector, selectTag, err)
	}
	if err = sel.Click(); err != nil {
		t.Fatalf("sel.Click() returned error: %v", err)
	}
	option, err := sel.FindElement(htmlunit.ByID, "secondValue")
	if err != nil {
		t.Fatalf("sel.FindElement(%q, %q) returned error: %v", htmlunit.ByID, "secondValue", err)
	}
	if err = option.Click(); err != nil {
		t.Fatalf("option.Click() returned error: %v", err)
	}

	const buttonID = "submit"
	button, err := wd.FindElement(htmlunit.ByID, buttonID)
	if err != nil {
		t.Fatalf("wd.FindElement(%q, %q) returned error: %v", htmlunit.ByID, buttonID, err)
	}
	if err := wd.SetPageLoadTimeout(2 * time.Second); err != nil {
		t.Fatalf("wd.SetPageLoadTimeout() returned error: %v", err)
	}
	if err = button.Click(); err != nil {
		t.Fatalf("button.Click() returned error: %v", err)
	}

	source, err := wd.PageSource()
	if err != nil {
		t.Fatalf("wd.PageSource() returned error: %v", err)
	}

	if !strings.Contains(source, searchContents) {
		t.Fatalf("Can't find %q on page after searching for %q", searchContents, query)
	}
	if want := "Select value is: second_value"; !strings.Contains(source, want) {
		t.Fatalf("Can't find %q on page after selecting the second option", want)
	}
}

func testSelect(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	el, err := wd.FindElement(htmlunit.ByName, "s")
	if err != nil {
		t.Fatalf("wd.FindElement(htmlunit.ByName, %q) returned error: %v", "s", err)
	}
	sel, err := htmlunit.Select(el)
	if err != nil {
		t.Fatalf("htmlunit.Select() returned error: %v", err)
	}
	if sel.IsMultiple() {
		t.Fatal("sel.IsMultiple() = true, want false")
	}

	selectedValue := func() string {
		t.Helper()
		o, err := sel.FirstSelectedOption()
		if err != nil {
			t.Fatalf("sel.FirstSelectedOption() returned error: %v", err)
		}
		v, err := o.GetAttribute("value")
		if err != nil {
			t.Fatalf("option.GetAttribute(%q) returned error: %v", "value", err)
		}
		return v
	}

	if got := selectedValue(); got != "first_value" {
		t.Fatalf("initially selected value = %q, want %q", got, "first_value")
	}
	if err := sel.SelectByVisibleText("  Second   Value "); err != nil {
		t.Fatalf("sel.SelectByVisibleText() returned error: %v", err)
	}
	if got := selectedValue(); got != "second_value" {
		t.Fatalf("selected value after SelectByVisibleText = %q, want %q", got, "second_value")
	}
	if err := sel.SelectByIndex(0); err != nil {
		t.Fatalf("sel.SelectByIndex(0) returned error: %v", err)
	}
	if got := selectedValue(); got != "first_value" {
		t.Fatalf("selected value after SelectByIndex(0) = %q, want %q", got, "first_value")
	}
	if err := sel.SelectByValue("second_value"); err != nil {
		t.Fatalf("sel.SelectByValue() returned error: %v", err)
	}
	if got := selectedValue(); got != "second_value" {
		t.Fatalf("selected value after SelectByValue = %q, want %q", got, "second_value")
	}
	if err := sel.SelectByValue("third_value"); !errors.Is(err, htmlunit.ErrNoSuchElement) {
		t.Fatalf("sel.SelectByValue(%q) returned error %v, want %v", "third_value", err, htmlunit.ErrNoSuchElement)
	}
	if err := sel.DeselectAll(); !errors.Is(err, htmlunit.ErrUnsupportedOperation) {
		t.Fatalf("sel.DeselectAll() on a single select returned error %v, want %v", err, htmlunit.ErrUnsupportedOperation)
	}

	input, err := wd.FindElement(htmlunit.ByName, "q")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := htmlunit.Select(input); !errors.Is(err, htmlunit.ErrInvalidArgument) {
		t.Fatalf("htmlunit.Select(<input>) returned error %v, want %v", err, htmlunit.ErrInvalidArgument)
	}
}

func testGetCookie(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	cookies, err := wd.GetCookies()
	if err != nil {
		t.Fatalf("wd.GetCookies() returned error: %v", err)
	}

	if len(cookies) == 0 {
		t.Fatal("wd.GetCookies() returned no cookies")
	}

	if len(cookies[0].Name) == 0 {
		t.Fatalf("Empty cookie name: %+v", cookies[0])
	}

	got, err := wd.GetCookie(cookies[0].Name)
	if err != nil {
		t.Fatalf("wd.GetCookie(%q) returned error: %v", cookies[0].Name, err)
	}
	if !reflect.DeepEqual(got, &cookies[0]) {
		t.Fatalf("wd.GetCookie(%q) = %+v, want %+v", cookies[0].Name, got, cookies[0])
	}

	missing, err := wd.GetCookie("no-such-cookie")
	if err != nil {
		t.Fatalf("wd.GetCookie(%q) returned error: %v", "no-such-cookie", err)
	}
	if missing != nil {
		t.Fatalf("wd.GetCookie(%q) = %+v, want nil", "no-such-cookie", missing)
	}
}

func testGetCookies(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	cookies, err := wd.GetCookies()
	if err != nil {
		t.Fatal(err)
	}

	if len(cookies) != 3 {
		t.Fatalf("wd.GetCookies() returned %d cookies, want 3: %+v", len(cookies), cookies)
	}

	for _, ck := range cookies {
		if !strings.HasPrefix(ck.Name, "cookie-") {
			t.Fatalf("unexpected cookie %+v", ck)
		}
	}
}

func testAddCookie(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	want := &htmlunit.Cookie{
		Name:   "the nameless cookie",
		Value:  "I have nothing",
		Expiry: math.MaxUint32,
		Domain: "127.0.0.1",
	}
	if err := wd.AddCookie(want); err != nil {
		t.Fatal(err)
	}

	// Added implicitly by the browser.
	want.Path = "/"

	cookies, err := wd.GetCookies()
	if err != nil {
		t.Fatal(err)
	}
	var got *htmlunit.Cookie
	for i := range cookies {
		if cookies[i].Name == want.Name {
			got = &cookies[i]
			break
		}
	}
	if got == nil {
		t.Fatalf("wd.GetCookies() = %v, missing cookie %q", cookies, want.Name)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wd.GetCookies() returned diff (-want/+got):\n%s", diff)
	}

	t.Run("OtherDomain", func(t *testing.T) {
		err := wd.AddCookie(&htmlunit.Cookie{Name: "foreign", Value: "x", Domain: "example.com"})
		if !errors.Is(err, htmlunit.ErrInvalidCookieDomain) {
			t.Fatalf("wd.AddCookie() for another domain returned error %v, want %v", err, htmlunit.ErrInvalidCookieDomain)
		}
	})
}

func testDeleteCookie(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	cookies, err := wd.GetCookies()
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) == 0 {
		t.Fatal("No cookies")
	}
	if err := wd.DeleteCookie(cookies[0].Name); err != nil {
		t.Fatal(err)
	}
	newCookies, err := wd.GetCookies()
	if err != nil {
		t.Fatal(err)
	}
	if len(newCookies) != len(cookies)-1 {
		t.Fatal("Cookie not deleted")
	}

	for _, ck := range newCookies {
		if ck.Name == cookies[0].Name {
			t.Fatal("Deleted cookie found")
		}
	}

	if err := wd.DeleteAllCookies(); err != nil {
		t.Fatalf("wd.DeleteAllCookies() returned error: %v", err)
	}
	if left, err := wd.GetCookies(); err != nil || len(left) != 0 {
		t.Fatalf("wd.GetCookies() after DeleteAllCookies = %v, %v; want none", left, err)
	}
}

func testLocation(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	button, err := wd.FindElement(htmlunit.ByID, "submit")
	if err != nil {
		t.Fatal(err)
	}

	loc, err := button.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.X < 0 || loc.Y < 0 {
		t.Fatalf("Bad location: %v\n", loc)
	}
}

func testLocationInView(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	button, err := wd.FindElement(htmlunit.ByID, "submit")
	if err != nil {
		t.Fatal(err)
	}

	loc, err := button.LocationInView()
	if err != nil {
		t.Fatal(err)
	}
	if loc.X < 0 || loc.Y < 0 {
		t.Fatalf("Bad location: %v\n", loc)
	}
}

func testSize(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	button, err := wd.FindElement(htmlunit.ByID, "submit")
	if err != nil {
		t.Fatal(err)
	}

	size, err := button.Size()
	if err != nil {
		t.Fatal(err)
	}

	if size.Width == 0 || size.Height == 0 {
		t.Fatalf("Bad size: %v\n", size)
	}
}

func testExecuteScript(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	script := "return arguments[0] + arguments[1]"
	args := []interface{}{1, 2}
	reply, err := wd.ExecuteScript(script, args)
	if err != nil {
		t.Fatal(err)
	}

	result, ok := reply.(float64)
	if !ok {
		t.Fatalf("Not a number reply: %T", reply)
	}

	if result != 3 {
		t.Fatalf("Bad result %d (expected 3)", int(result))
	}

	t.Run("Error", func(t *testing.T) {
		_, err := wd.ExecuteScript("throw new Error('boom')", nil)
		if !errors.Is(err, htmlunit.ErrJavaScript) {
			t.Fatalf("wd.ExecuteScript(throw) returned error %v, want %v", err, htmlunit.ErrJavaScript)
		}
	})

	t.Run("Element", func(t *testing.T) {
		reply, err := wd.ExecuteScript("return document.getElementById('chuk')", nil)
		if err != nil {
			t.Fatal(err)
		}
		el, ok := reply.(htmlunit.WebElement)
		if !ok {
			t.Fatalf("wd.ExecuteScript() returned %T, want a WebElement", reply)
		}
		if tag, err := el.TagName(); err != nil || tag != "input" {
			t.Fatalf("el.TagName() = %q, %v; want %q", tag, err, "input")
		}
	})
}

func testExecuteScriptWithNilArgs(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	script := "return document.readyState"
	if _, err := wd.ExecuteScript(script, nil); err != nil {
		t.Fatal(err)
	}
}

func testExecuteScriptOnElement(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	input, err := wd.FindElement(htmlunit.ByName, "q")
	if err != nil {
		t.Fatal(err)
	}

	const query = "golang"
	if err := input.SendKeys(query); err != nil {
		t.Fatal(err)
	}

	we, err := wd.FindElement(htmlunit.ByXPATH, "//input[@type='submit']")
	if err != nil {
		t.Fatal(err)
	}

	script := "arguments[0].click()"
	args := []interface{}{we}

	if _, err = wd.ExecuteScript(script, args); err != nil {
		t.Fatal(err)
	}

	source, err := wd.PageSource()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(source, searchContents) {
		t.Fatalf("Can't find %q on page after searching for %q", searchContents, query)
	}
}

func testExecuteScriptAsync(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	const script = `var done = arguments[arguments.length - 1];
setTimeout(function() { done(123); }, 10);`
	reply, err := wd.ExecuteScriptAsync(script, nil)
	if err != nil {
		t.Fatalf("wd.ExecuteScriptAsync() returned error: %v", err)
	}
	if n, ok := reply.(float64); !ok || n != 123 {
		t.Fatalf("wd.ExecuteScriptAsync() = %v (%T), want 123", reply, reply)
	}

	if err := wd.SetAsyncScriptTimeout(200 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := wd.ExecuteScriptAsync("var x = 1;", nil); !errors.Is(err, htmlunit.ErrScriptTimeout) {
		t.Fatalf("wd.ExecuteScriptAsync() without a callback returned error %v, want %v", err, htmlunit.ErrScriptTimeout)
	}
}

func testScreenshot(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	if _, err := wd.Screenshot(); !errors.Is(err, htmlunit.ErrUnsupportedOperation) {
		t.Fatalf("wd.Screenshot() returned error %v, want %v", err, htmlunit.ErrUnsupportedOperation)
	}
}

func testLog(t *testing.T, c Config) {
	caps := newTestCapabilities(t, c)
	caps.SetLogLevel(log.Browser, log.All)

	wd := newRemote(t, caps, c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL+"/log")
	logs, err := wd.Log(log.Browser)
	if err != nil {
		t.Fatalf("wd.Log(Browser) returned error: %v", err)
	}
	if len(logs) == 0 {
		t.Fatalf("empty reply from wd.Log(Browser)")
	}
	levels := make(map[log.Level]bool)
	for _, l := range logs {
		if len(l.Level) == 0 || l.Timestamp.Unix() == 0 || len(l.Message) == 0 {
			t.Errorf("wd.Log(Browser) returned malformed message: %+v", l)
		}
		if time.Since(l.Timestamp) > time.Hour {
			t.Errorf("Message has timestamp %s > 1 hour ago: %v", l.Timestamp, l)
		}
		levels[l.Level] = true
	}
	for _, want := range []log.Level{log.Info, log.Severe} {
		if !levels[want] {
			t.Errorf("wd.Log(Browser) = %+v, missing a %s entry", logs, want)
		}
	}

	if _, err := wd.Log(log.Performance); !errors.Is(err, htmlunit.ErrInvalidArgument) {
		t.Errorf("wd.Log(Performance) returned error %v, want %v", err, htmlunit.ErrInvalidArgument)
	}
}

func testIsSelected(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	elem, err := wd.FindElement(htmlunit.ByID, "chuk")
	if err != nil {
		t.Fatal("Can't find element")
	}
	selected, err := elem.IsSelected()
	if err != nil {
		t.Fatal("Can't get selection")
	}

	if selected {
		t.Fatal("Already selected")
	}

	if err := elem.Click(); err != nil {
		t.Fatal("Can't click")
	}

	selected, err = elem.IsSelected()
	if err != nil {
		t.Fatal("Can't get selection")
	}

	if !selected {
		t.Fatal("Not selected")
	}
}

func testIsDisplayed(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	for id, want := range map[string]bool{
		"chuk":   true,
		"hidden": false,
	} {
		elem, err := wd.FindElement(htmlunit.ByID, id)
		if err != nil {
			t.Fatalf("wd.FindElement(htmlunit.ByID, %s) return error %v", id, err)
		}
		displayed, err := elem.IsDisplayed()
		if err != nil {
			t.Fatalf("elem.IsDisplayed() returned error: %v", err)
		}
		if displayed != want {
			t.Fatalf("%s: elem.IsDisplayed() = %t, want %t", id, displayed, want)
		}
	}
}

func testGetAttributeNotFound(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	elem, err := wd.FindElement(htmlunit.ByID, "chuk")
	if err != nil {
		t.Fatal("Can't find element")
	}

	if _, err = elem.GetAttribute("no-such-attribute"); !errors.Is(err, htmlunit.ErrNullValue) {
		t.Fatalf("elem.GetAttribute(%q) returned error %v, want %v", "no-such-attribute", err, htmlunit.ErrNullValue)
	}
}

func testActiveElement(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	e, err := wd.ActiveElement()
	if err != nil {
		t.Fatalf("wd.ActiveElement() returned error: %v", err)
	}
	name, err := e.GetAttribute("name")
	if err != nil {
		t.Fatalf("wd.ActiveElement().GetAttribute() returned error: %v", err)
	}
	if name != "q" {
		t.Fatalf("wd.ActiveElement().GetAttribute() returned element with name = %q, expected name = 'q'", name)
	}

	box, err := wd.FindElement(htmlunit.ByID, "chuk")
	if err != nil {
		t.Fatal(err)
	}
	if err := box.Click(); err != nil {
		t.Fatal(err)
	}
	e, err = wd.ActiveElement()
	if err != nil {
		t.Fatalf("wd.ActiveElement() returned error: %v", err)
	}
	if id, err := e.GetAttribute("id"); err != nil || id != "chuk" {
		t.Fatalf("wd.ActiveElement() after clicking the checkbox has id %q, %v; want %q", id, err, "chuk")
	}
}

func testKeyDownUp(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	e, err := wd.FindElement(htmlunit.ByLinkText, "other page")
	if err != nil {
		t.Fatalf("error finding other page link: %v", err)
	}

	if err := wd.KeyDown(htmlunit.ControlKey); err != nil {
		t.Fatalf("error pressing control key down: %v", err)
	}
	if err := e.Click(); err != nil {
		t.Fatalf("error clicking the other page link: %v", err)
	}
	if err := wd.KeyUp(htmlunit.ControlKey); err != nil {
		t.Fatalf("error releasing control key: %v", err)
	}
}

func testActions(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL+"/actions")

	text, err := wd.FindElement(htmlunit.ByID, "text")
	if err != nil {
		t.Fatal(err)
	}
	box, err := wd.FindElement(htmlunit.ByID, "box")
	if err != nil {
		t.Fatal(err)
	}

	err = actions.New(wd).
		Click(text).
		KeyDown(htmlunit.ShiftKey).
		SendKeys("changed ").
		KeyUp(htmlunit.ShiftKey).
		Click(box).
		Perform()
	if err != nil {
		t.Fatalf("actions.Perform() returned error: %v", err)
	}

	value, err := text.GetAttribute("value")
	if err != nil {
		t.Fatalf("text.GetAttribute(%q) returned error: %v", "value", err)
	}
	if want := "default textCHANGED "; value != want {
		t.Fatalf("text value = %q, want %q", value, want)
	}
	checked, err := box.IsSelected()
	if err != nil {
		t.Fatalf("box.IsSelected() returned error: %v", err)
	}
	if !checked {
		t.Fatal("box.IsSelected() = false after clicking it")
	}
	if err := wd.ReleaseActions(); err != nil {
		t.Fatalf("wd.ReleaseActions() returned error: %v", err)
	}
}

func testCSSProperty(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)

	e, err := wd.FindElement(htmlunit.ByLinkText, "other page")
	if err != nil {
		t.Fatalf("error finding other page link: %v", err)
	}

	color, err := e.CSSProperty("color")
	if err != nil {
		t.Fatalf(`e.CSSProperty("color") returned error: %v`, err)
	}
	if want := "rgb(0, 0, 238)"; color != want {
		t.Fatalf(`e.CSSProperty("color") = %q, want %q`, color, want)
	}
}

const proxyPageContents = "You are viewing a proxied page"

// addrRewriter rewrites all requested addresses to the one specified by the
// URL.
type addrRewriter struct{ u *url.URL }

func (a *addrRewriter) Rewrite(ctx context.Context, _ *socks5.Request) (context.Context, *socks5.AddrSpec) {
	port, err := strconv.Atoi(a.u.Port())
	if err != nil {
		panic(err)
	}
	return ctx, &socks5.AddrSpec{
		FQDN: a.u.Hostname(),
		Port: port,
	}
}

func testProxy(t *testing.T, c Config) {
	// A different web server that should be used if proxying is enabled.
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, proxyPageContents)
	}))
	defer s.Close()

	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatalf("url.Parse(%q) returned error: %v", s.URL, err)
	}

	t.Run("HTTP", func(t *testing.T) {
		caps := newTestCapabilities(t, c)
		caps.AddProxy(htmlunit.Proxy{
			Type: htmlunit.Manual,
			HTTP: u.Host,
		})
		runTestProxy(t, c, caps)
	})

	t.Run("SOCKS", func(t *testing.T) {
		socks, err := socks5.New(&socks5.Config{
			Rewriter: &addrRewriter{u},
		})
		if err != nil {
			t.Fatalf("socks5.New(_) returned error: %v", err)
		}
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("net.Listen(_, _) return error: %v", err)
		}

		// Serve SOCKS connections, but don't fail the test once the listener
		// is closed at the end of execution.
		done := make(chan struct{})
		go func() {
			err := socks.Serve(l)
			select {
			case <-done:
				return
			default:
			}
			if err != nil {
				t.Errorf("socks.Serve(_) returned error: %v", err)
			}
		}()
		defer func() {
			close(done)
			l.Close()
		}()

		caps := newTestCapabilities(t, c)
		caps.AddProxy(htmlunit.Proxy{
			Type:         htmlunit.Manual,
			SOCKS:        l.Addr().String(),
			SOCKSVersion: 5,
		})

		runTestProxy(t, c, caps)
	})
}

func runTestProxy(t *testing.T, c Config, caps htmlunit.Capabilities) {
	wd := newRemote(t, caps, c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL)
	source, err := wd.PageSource()
	if err != nil {
		t.Fatalf("wd.PageSource() returned error: %v", err)
	}

	if !strings.Contains(source, proxyPageContents) {
		if strings.Contains(source, "Go HtmlUnit Test Suite") {
			t.Fatal("Got non-proxied page.")
		}
		t.Fatalf("Got page: %s\n\nExpected: %q", source, proxyPageContents)
	}
}

const (
	iframeID      = "iframeID"
	iframeName    = "iframeName"
	insideFrameID = "chuk"
	outsideDivID  = "outsideOfFrame"
)

// checkInFrame reports a failure unless the current context is the iframe
// of framePage.
func checkInFrame(t *testing.T, wd htmlunit.WebDriver, how string) {
	t.Helper()
	if _, err := wd.FindElement(htmlunit.ByID, insideFrameID); err != nil {
		t.Fatalf("After switching frames using %s, wd.FindElement(htmlunit.ByID, %q) returned error: %v", how, insideFrameID, err)
	}
	if _, err := wd.FindElement(htmlunit.ByID, outsideDivID); err == nil {
		t.Fatalf("After switching frames using %s, wd.FindElement(htmlunit.ByID, %q) returned nil, expected an error", how, outsideDivID)
	}
}

func checkInTop(t *testing.T, wd htmlunit.WebDriver, how string) {
	t.Helper()
	if _, err := wd.FindElement(htmlunit.ByID, outsideDivID); err != nil {
		t.Fatalf("After switching frames using %s, wd.FindElement(htmlunit.ByID, %q) returned error: %v", how, outsideDivID, err)
	}
}

func testSwitchFrame(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL+"/frame")

	if err := wd.SwitchFrame(iframeID); err != nil {
		t.Fatalf("wd.SwitchFrame(%q) returned error: %v", iframeID, err)
	}
	checkInFrame(t, wd, "an ID")

	if err := wd.SwitchFrame(nil); err != nil {
		t.Fatalf("wd.SwitchFrame(nil) returned error: %v", err)
	}
	checkInTop(t, wd, "nil")

	iframe, err := wd.FindElement(htmlunit.ByID, iframeID)
	if err != nil {
		t.Fatalf("error finding iframe: %v", err)
	}
	if err := wd.SwitchFrame(iframe); err != nil {
		t.Fatalf("wd.SwitchFrame(iframe) returned error: %v", err)
	}
	checkInFrame(t, wd, "a WebElement")

	if err := wd.SwitchFrame(""); err != nil {
		t.Fatalf(`wd.SwitchFrame("") returned error: %v`, err)
	}
	checkInTop(t, wd, `""`)

	if err := wd.SwitchFrame(iframeName); err != nil {
		t.Fatalf("wd.SwitchFrame(%q) returned error: %v", iframeName, err)
	}
	checkInFrame(t, wd, "a name")

	if err := wd.SwitchFrame(nil); err != nil {
		t.Fatalf("wd.SwitchFrame(nil) returned error: %v", err)
	}
	if err := wd.SwitchFrame(0); err != nil {
		t.Fatalf("wd.SwitchFrame(0) returned error: %v", err)
	}
	checkInFrame(t, wd, "an index")

	if err := wd.SwitchFrame(nil); err != nil {
		t.Fatalf("wd.SwitchFrame(nil) returned error: %v", err)
	}
	if err := wd.SwitchFrame("no-such-frame"); !errors.Is(err, htmlunit.ErrNoSuchFrame) {
		t.Fatalf("wd.SwitchFrame(%q) returned error %v, want %v", "no-such-frame", err, htmlunit.ErrNoSuchFrame)
	}
}

func testSwitchParentFrame(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL+"/frame")

	if err := wd.SwitchFrame(iframeID); err != nil {
		t.Fatalf("wd.SwitchFrame(%q) returned error: %v", iframeID, err)
	}
	checkInFrame(t, wd, "an ID")
	if err := wd.SwitchParentFrame(); err != nil {
		t.Fatalf("wd.SwitchParentFrame() returned error: %v", err)
	}
	checkInTop(t, wd, "the parent")
	if err := wd.SwitchFrame(iframeID); err != nil {
		t.Fatalf("wd.SwitchFrame(%q) returned error: %v", iframeID, err)
	}
	checkInFrame(t, wd, "an ID again")

	// Navigation resets the context to the top frame.
	getPage(t, wd, c.ServerURL+"/frame")
	checkInTop(t, wd, "a navigation")
	if err := wd.SwitchFrame(iframeID); err != nil {
		t.Fatalf("wd.SwitchFrame(%q) returned error: %v", iframeID, err)
	}
	checkInFrame(t, wd, "an ID after navigating")
}

func testWait(t *testing.T, c Config) {
	const newTitle = "Title changed."
	titleChangeCondition := func(wd htmlunit.WebDriver) (bool, error) {
		title, err := wd.Title()
		if err != nil {
			return false, err
		}

		return title == newTitle, nil
	}

	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	titleURL := c.ServerURL + "/title"

	getPage(t, wd, titleURL)

	if err := wd.Wait(titleChangeCondition); err != nil {
		t.Fatalf("wd.Wait(titleChangeCondition) returned error: %v", err)
	}

	getPage(t, wd, titleURL)

	err := wd.WaitWithTimeout(titleChangeCondition, 500*time.Millisecond)
	if !errors.Is(err, htmlunit.ErrTimeout) {
		t.Fatalf("wd.WaitWithTimeout(titleChangeCondition) returned error %v, want %v", err, htmlunit.ErrTimeout)
	}
}

func testAcceptAlert(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL+"/alert")

	alertText, err := wd.AlertText()
	if err != nil {
		t.Fatalf("wd.AlertText() returned error: %v", err)
	}

	if alertText != "Hello world" {
		t.Fatalf("Expected 'Hello world' but got '%s'", alertText)
	}

	if err := wd.AcceptAlert(); err != nil {
		t.Fatalf("wd.AcceptAlert() returned error: %v", err)
	}
	if _, err := wd.AlertText(); !errors.Is(err, htmlunit.ErrNoSuchAlert) {
		t.Fatalf("wd.AlertText() after accepting returned error %v, want %v", err, htmlunit.ErrNoSuchAlert)
	}
}

func testDismissAlert(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL+"/alert")

	if err := wd.DismissAlert(); err != nil {
		t.Fatalf("wd.DismissAlert() returned error: %v", err)
	}
	if err := wd.DismissAlert(); !errors.Is(err, htmlunit.ErrNoSuchAlert) {
		t.Fatalf("second wd.DismissAlert() returned error %v, want %v", err, htmlunit.ErrNoSuchAlert)
	}
}

func testConfirmAndPrompt(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	defer quitRemote(t, wd)

	getPage(t, wd, c.ServerURL+"/dialogs")

	click := func(id string) string {
		t.Helper()
		b, err := wd.FindElement(htmlunit.ByID, id)
		if err != nil {
			t.Fatalf("wd.FindElement(htmlunit.ByID, %q) returned error: %v", id, err)
		}
		if err := b.Click(); err != nil {
			t.Fatalf("clicking %q returned error: %v", id, err)
		}
		out, err := wd.FindElement(htmlunit.ByID, "out")
		if err != nil {
			t.Fatal(err)
		}
		text, err := out.Text()
		if err != nil {
			t.Fatal(err)
		}
		return text
	}

	if got := click("confirm"); got != "true" {
		t.Fatalf("first confirm returned %q, want %q", got, "true")
	}
	if text, err := wd.AlertText(); err != nil || text != "Sure?" {
		t.Fatalf("wd.AlertText() = %q, %v; want %q", text, err, "Sure?")
	}
	if err := wd.SetAlertText("text"); !errors.Is(err, htmlunit.ErrElementNotInteractable) {
		t.Fatalf("wd.SetAlertText() on a confirm returned error %v, want %v", err, htmlunit.ErrElementNotInteractable)
	}
	if err := wd.DismissAlert(); err != nil {
		t.Fatalf("wd.DismissAlert() returned error: %v", err)
	}
	if got := click("confirm"); got != "false" {
		t.Fatalf("confirm after a dismiss returned %q, want %q", got, "false")
	}
	if err := wd.AcceptAlert(); err != nil {
		t.Fatalf("wd.AcceptAlert() returned error: %v", err)
	}

	if got := click("prompt"); got != "anon" {
		t.Fatalf("first prompt returned %q, want the default %q", got, "anon")
	}
	if text, err := wd.AlertText(); err != nil || text != "Name?" {
		t.Fatalf("wd.AlertText() = %q, %v; want %q", text, err, "Name?")
	}
	if err := wd.SetAlertText("gopher"); err != nil {
		t.Fatalf("wd.SetAlertText() returned error: %v", err)
	}
	if err := wd.AcceptAlert(); err != nil {
		t.Fatalf("wd.AcceptAlert() returned error: %v", err)
	}
	if got := click("prompt"); got != "gopher" {
		t.Fatalf("prompt after SetAlertText returned %q, want %q", got, "gopher")
	}
	if err := wd.DismissAlert(); err != nil {
		t.Fatalf("wd.DismissAlert() returned error: %v", err)
	}
	if got := click("prompt"); got != "null" {
		t.Fatalf("prompt after a dismiss returned %q, want %q", got, "null")
	}
}

func testQuit(t *testing.T, c Config) {
	wd := newRemote(t, newTestCapabilities(t, c), c)
	getPage(t, wd, c.ServerURL)
	if err := wd.Quit(); err != nil {
		t.Fatalf("wd.Quit() returned error: %v", err)
	}

	if err := wd.Get(c.ServerURL); err == nil {
		t.Fatal("wd.Get() after Quit returned nil, want an error")
	}
	if _, err := wd.FindElement(htmlunit.ByID, "chuk"); err == nil {
		t.Fatal("wd.FindElement() after Quit returned nil, want an error")
	}
	if _, err := wd.WindowHandles(); err == nil {
		t.Fatal("wd.WindowHandles() after Quit returned nil, want an error")
	}
}

var homePage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite</title>
</head>
<body>
	The home page. <br />
	<form action="/search">
		<input name="q" autofocus />
		<input name="submit" type="submit" id="submit" /> <br />
		<input id="chuk" type="checkbox" /> A checkbox.
		<select name="s">
			<option value="first_value">First Value</option>
			<option id="secondValue" value="second_value">Second Value</option>
		</select>
	</form>
	Link to the <a href="/other" style="color: rgb(0, 0, 238)">other page</a>.

	<a href="/log">тест</a>
	<a href="/search">search</a>
	<div id="hidden" style="display: none">Hidden text.</div>
</body>
</html>
`

var otherPage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Other Page</title>
</head>
<body>
	The other page.
</body>
</html>
`

const searchContents = "The Go Programming Language"

// searchPage takes the query and the select value.
var searchPage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Search Page</title>
</head>
<body>
	You searched for "%s". I'll pretend I've found:
	<p>
	"` + searchContents + `"
	</p>
	Select value is: %s
</body>
</html>
`

var logPage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Log Page</title>
	<script>
		console.log("console log");
		throw "exception log";
	</script>
</head>
<body>
	Log test page.
</body>
</html>
`

var framePage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Frame Page</title>
</head>
<body>
	This page contains a frame.

	<iframe id="iframeID" name="iframeName" src="/"></iframe>
	<div id="outsideOfFrame"></div>
</body>
</html>
`

var titleChangePage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Title Change Page</title>
</head>
<body>
	This page will change a title after 1 second.

	<script>
		setTimeout(function() { document.title = 'Title changed.' }, 1000);
	</script>
</body>
</html>
`

var alertPage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Alert Appear Page</title>
</head>
<body>
	An alert will popup.

	<script>
		alert('Hello world');
	</script>
</body>
</html>
`

var dialogsPage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Dialogs Page</title>
	<script>
		function show(v) { document.getElementById('out').textContent = String(v); }
	</script>
</head>
<body>
	<button id="confirm" onclick="show(confirm('Sure?'))">confirm</button>
	<button id="prompt" onclick="show(prompt('Name?', 'anon'))">prompt</button>
	<div id="out"></div>
</body>
</html>
`

var actionsPage = `
<html>
<head>
	<title>Go HtmlUnit Test Suite - Actions Page</title>
</head>
<body>
	<input id="text" type="text" value="default text" />
	<input id="box" type="checkbox" />
</body>
</html>
`

// Handler serves the pages the suite drives. Every response sets the
// cookies cookie-0 to cookie-2.
var Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	page, ok := map[string]string{
		"/":        homePage,
		"/other":   otherPage,
		"/search":  searchPage,
		"/log":     logPage,
		"/frame":   framePage,
		"/title":   titleChangePage,
		"/alert":   alertPage,
		"/dialogs": dialogsPage,
		"/actions": actionsPage,
	}[path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if path == "/search" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		page = fmt.Sprintf(page, r.Form.Get("q"), r.Form.Get("s"))
	}
	for i := 0; i < 3; i++ {
		http.SetCookie(w, &http.Cookie{
			Name:  fmt.Sprintf("cookie-%d", i),
			Value: fmt.Sprintf("value-%d", i),
		})
	}
	fmt.Fprint(w, page)
})
