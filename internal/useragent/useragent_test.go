package useragent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInput(t *testing.T) {
	info := Parse("")

	assert.Equal(t, Unknown, info.DeviceType)
	assert.Equal(t, Unknown, info.Browser)
	assert.Nil(t, info.BrowserVersion)
	assert.Equal(t, Unknown, info.OS)
	assert.Nil(t, info.OSVersion)
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"garbage",
		"Mozilla/5.0",
		"\x00\x01\xff\xfe binary junk",
		"chrome/ firefox/ safari/ version/",
		"windows nt",
		"mac os x",
		strings.Repeat("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 ", 500),
	}

	for _, ua := range inputs {
		info := Parse(ua)
		assert.NotEmpty(t, info.DeviceType)
		assert.NotEmpty(t, info.Browser)
		assert.NotEmpty(t, info.OS)
	}
}

func TestDeviceTypePriority(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"mobile beats tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700) Mobile Tablet Safari/537.36", DeviceMobile},
		{"plain tablet", "Mozilla/5.0 (Linux; Silk/3.0) Tablet PlayBook", DeviceTablet},
		{"desktop default", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", DeviceDesktop},
		{"iphone is mobile", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", DeviceMobile},
		{"blackberry is mobile", "BlackBerry9700/5.0.0.743", DeviceMobile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.ua).DeviceType)
		})
	}
}

func TestBrowserDisambiguation(t *testing.T) {
	// Edge carries a Chrome token but must classify as Edge.
	edge := Parse("Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/91.0.4472.124 Safari/537.36 Edg/91.0.864.59")
	assert.Equal(t, "Edge", edge.Browser)
	require.NotNil(t, edge.BrowserVersion)
	assert.Equal(t, "91.0.864.59", *edge.BrowserVersion)

	// Chrome carries a Safari token but must classify as Chrome.
	chrome := Parse("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/91.0.4472.114 Safari/605.1")
	assert.Equal(t, "Chrome", chrome.Browser)

	safari := Parse("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/16.5 Safari/605.1.15")
	assert.Equal(t, "Safari", safari.Browser)
	require.NotNil(t, safari.BrowserVersion)
	assert.Equal(t, "16.5", *safari.BrowserVersion)
}

func TestBrowserVersionExtraction(t *testing.T) {
	tests := []struct {
		ua          string
		wantBrowser string
		wantVersion string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; rv:115.0) Gecko/20100101 Firefox/115.0", "Firefox", "115.0"},
		{"Opera/9.80 (Windows NT 6.1) Presto/2.12.388 Version/12.18", "Opera", "12.18"},
		{"Mozilla/4.0 (compatible; MSIE 8.0; Windows NT 6.1)", "IE", "8.0"},
		{"Mozilla/5.0 (Windows NT 10.0; Trident/7.0; rv:11.0) like Gecko", "IE", "11.0"},
	}

	for _, tt := range tests {
		info := Parse(tt.ua)
		assert.Equal(t, tt.wantBrowser, info.Browser, tt.ua)
		require.NotNil(t, info.BrowserVersion, tt.ua)
		assert.Equal(t, tt.wantVersion, *info.BrowserVersion, tt.ua)
	}
}

func TestBrowserUnknown(t *testing.T) {
	info := Parse("curl/8.4.0")
	assert.Equal(t, Unknown, info.Browser)
	assert.Nil(t, info.BrowserVersion)
}

func TestWindowsVersionMapping(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"Windows NT 10.0", "10/11"},
		{"Windows NT 6.3", "8.1"},
		{"Windows NT 6.2", "8"},
		{"Windows NT 6.1", "7"},
		{"Windows NT 6.0", "Vista"},
		{"Windows NT 5.1", "XP"},
	}

	for _, tt := range tests {
		info := Parse("Mozilla/5.0 (" + tt.token + "; Win64; x64) Chrome/120.0")
		assert.Equal(t, "Windows", info.OS)
		require.NotNil(t, info.OSVersion, tt.token)
		assert.Equal(t, tt.want, *info.OSVersion, tt.token)
	}

	// Unmapped NT version keeps OS but drops the version.
	old := Parse("Mozilla/5.0 (Windows NT 4.0) Chrome/1.0")
	assert.Equal(t, "Windows", old.OS)
	assert.Nil(t, old.OSVersion)
}

func TestMacOSVersionUnderscores(t *testing.T) {
	info := Parse("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/16.5 Safari/605.1.15")

	assert.Equal(t, "macOS", info.OS)
	require.NotNil(t, info.OSVersion)
	assert.Equal(t, "10.15.7", *info.OSVersion)
}

func TestAndroidAndLinux(t *testing.T) {
	android := Parse("Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36")
	assert.Equal(t, "Android", android.OS)
	require.NotNil(t, android.OSVersion)
	assert.Equal(t, "13", *android.OSVersion)

	ubuntu := Parse("Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0")
	assert.Equal(t, "Linux", ubuntu.OS)
	require.NotNil(t, ubuntu.OSVersion)
	assert.Equal(t, "ubuntu", *ubuntu.OSVersion)

	plain := Parse("Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0")
	assert.Equal(t, "Linux", plain.OS)
	assert.Nil(t, plain.OSVersion)
}

func TestEndToEndAndroidChrome(t *testing.T) {
	info := Parse("Mozilla/5.0 (Linux; Android 13) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36")

	assert.Equal(t, DeviceMobile, info.DeviceType)
	assert.Equal(t, "Chrome", info.Browser)
	require.NotNil(t, info.BrowserVersion)
	assert.Equal(t, "120.0", *info.BrowserVersion)
	assert.Equal(t, "Android", info.OS)
	require.NotNil(t, info.OSVersion)
	assert.Equal(t, "13", *info.OSVersion)
}
