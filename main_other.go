//go:build !windows

package main

// The WebView2 runtime check only applies to Windows.
func ensureWebView2() error {
	return nil
}
