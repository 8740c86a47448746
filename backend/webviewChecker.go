//go:build windows

package backend

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sqweek/dialog"
	"golang.org/x/sys/windows/registry"
)

const (
	minimumWebView2Version = "86.0.616.0"
	webView2InstallKeyPath = "Software\\Microsoft\\EdgeUpdate\\ClientState\\"
	webView2DownloadURL    = "https://developer.microsoft.com/microsoft-edge/webview2/"
)

// WebView2 channel UUIDs, checked stable first.
var webView2Channels = []struct {
	uuid string
	name string
}{
	{"{F3017226-FE2A-4295-8BDF-00C3A9A7E4C5}", "stable"},
	{"{2CD8A007-E189-409D-A2C8-9AF4EF3C72AA}", "beta"},
	{"{0D50BFEC-CD6A-4F9A-964C-C7416E3ACB10}", "dev"},
	{"{65C35B14-6C1D-4122-AC46-7148CC9D6497}", "canary"},
}

type webView2Version struct {
	parts   [4]int
	channel string
	path    string
}

func (v webView2Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.parts[0], v.parts[1], v.parts[2], v.parts[3])
}

func (v webView2Version) atLeast(other webView2Version) bool {
	for i := range v.parts {
		if v.parts[i] != other.parts[i] {
			return v.parts[i] > other.parts[i]
		}
	}
	return true
}

func parseWebView2Version(versionStr string) (webView2Version, error) {
	fields := strings.Split(versionStr, ".")
	if len(fields) != 4 {
		return webView2Version{}, fmt.Errorf("invalid version format: %s", versionStr)
	}
	var v webView2Version
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return webView2Version{}, fmt.Errorf("invalid version component %q in %s", field, versionStr)
		}
		v.parts[i] = n
	}
	return v, nil
}

// findWebView2 probes the registry for a WebView2 runtime that satisfies the
// minimum version, checking HKLM and HKCU in both registry views.
func findWebView2() (*webView2Version, error) {
	minimum, err := parseWebView2Version(minimumWebView2Version)
	if err != nil {
		return nil, err
	}

	for _, channel := range webView2Channels {
		keyPath := webView2InstallKeyPath + channel.uuid
		for _, rootKey := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
			for _, access := range []uint32{registry.READ, registry.READ | registry.WOW64_32KEY} {
				version, err := checkWebView2Key(rootKey, keyPath, access)
				if err != nil {
					continue
				}
				if version.atLeast(minimum) {
					version.channel = channel.name
					return version, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("WebView2 not found or version too old")
}

func checkWebView2Key(rootKey registry.Key, keyPath string, access uint32) (*webView2Version, error) {
	regKey, err := registry.OpenKey(rootKey, keyPath, access)
	if err != nil {
		return nil, err
	}
	defer regKey.Close()

	installDir, _, err := regKey.GetStringValue("EBWebView")
	if err != nil {
		return nil, err
	}
	if installDir == "" {
		return nil, fmt.Errorf("empty EBWebView value")
	}

	version, err := parseWebView2Version(filepath.Base(installDir))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(installDir); err != nil {
		return nil, fmt.Errorf("WebView2 path does not exist: %s", installDir)
	}
	version.path = installDir
	return &version, nil
}

// EnsureWebView2Available verifies the WebView2 runtime is installed before
// the window is created. When it is missing the user is pointed at the
// download page and the application exits.
func EnsureWebView2Available() error {
	log.Println("Checking WebView2 availability...")

	version, err := findWebView2()
	if err != nil {
		log.Printf("WebView2 not found: %v", err)
		dialog.Message("WebView2 Runtime is required to run this application.\n\nPlease install it from:\n%s", webView2DownloadURL).
			Title("WebView2 Runtime Required").
			Error()
		return fmt.Errorf("WebView2 runtime is not available: %w", err)
	}

	log.Printf("WebView2 is available: %s (%s channel) at %s", version, version.channel, version.path)
	return nil
}
