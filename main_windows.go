//go:build windows

package main

import (
	"multivision/backend"
)

func ensureWebView2() error {
	return backend.EnsureWebView2Available()
}
