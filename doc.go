/*
Package htmlunit provides a WebDriver session over an embedded headless
browser, and a client for remote W3C WebDriver servers.

The embedded Driver parses pages with golang.org/x/net/html, finds elements
by CSS selector, XPath and the other WebDriver strategies, and runs page
scripts with goja when JavaScript is enabled. Windows, frames, cookies,
dialogs and history are simulated; nothing is rendered.

Example usage:

	package main

	import (
		"fmt"

		"github.com/wanmail/htmlunit"
	)

	// Errors are ignored for brevity.

	func main() {
		wd := htmlunit.NewDriver(true)
		defer wd.Quit()

		wd.Get("http://localhost:8080/search")

		q, _ := wd.FindElement(htmlunit.ByName, "q")
		q.SendKeys("golang" + htmlunit.EnterKey)

		title, _ := wd.Title()
		fmt.Println(title)
	}

The same code runs against a server started with the htmlunitd command, or
any other W3C WebDriver server, by replacing NewDriver with NewRemote.
*/
package htmlunit
