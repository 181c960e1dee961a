// Package useragent classifies raw User-Agent header values into a coarse
// device/browser/OS breakdown for visitor analytics. It is a prioritized
// cascade of substring and regex checks, not a full UA grammar — good enough
// for dashboard stats, and it never fails on garbage input.
package useragent

import (
	"regexp"
	"strings"
)

const Unknown = "unknown"

// DeviceInfo is the parsed classification of a User-Agent string.
// DeviceType, Browser and OS are always set (Unknown when undetectable);
// the version fields are nil when no version could be extracted.
type DeviceInfo struct {
	DeviceType     string  `json:"device_type"`
	Browser        string  `json:"browser"`
	BrowserVersion *string `json:"browser_version"`
	OS             string  `json:"os"`
	OSVersion      *string `json:"os_version"`
}

// Device types
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

var (
	reEdgeVersion    = regexp.MustCompile(`edg/([\d.]+)`)
	reChromeVersion  = regexp.MustCompile(`chrome/([\d.]+)`)
	reFirefoxVersion = regexp.MustCompile(`firefox/([\d.]+)`)
	reSafariVersion  = regexp.MustCompile(`version/([\d.]+)`)
	reOperaVersion   = regexp.MustCompile(`opr/([\d.]+)`)
	reIEVersion      = regexp.MustCompile(`(?:msie |rv:)([\d.]+)`)
	reMacOSVersion   = regexp.MustCompile(`mac os x ([\d_]+)`)
	reIOSVersion     = regexp.MustCompile(`os ([\d_]+)`)
	reAndroidVersion = regexp.MustCompile(`android ([\d.]+)`)
)

var mobileMarkers = []string{"mobile", "android", "iphone", "ipod", "blackberry", "iemobile", "opera mini"}
var tabletMarkers = []string{"tablet", "ipad", "playbook", "silk"}

// Parse converts a raw User-Agent header into a DeviceInfo. It is pure and
// total: any input, including the empty string or binary garbage, yields a
// well-formed result and never a panic.
func Parse(ua string) DeviceInfo {
	if ua == "" {
		return DeviceInfo{
			DeviceType: Unknown,
			Browser:    Unknown,
			OS:         Unknown,
		}
	}

	lower := strings.ToLower(ua)

	return DeviceInfo{
		DeviceType:     detectDeviceType(lower),
		Browser:        detectBrowser(lower),
		BrowserVersion: detectBrowserVersion(lower),
		OS:             detectOS(lower),
		OSVersion:      detectOSVersion(lower),
	}
}

// detectDeviceType checks mobile markers before tablet markers, so an Android
// tablet UA that carries the literal "Mobile" token classifies as mobile.
// That ambiguity is inherent to substring matching and is kept on purpose.
func detectDeviceType(lower string) string {
	if containsAny(lower, mobileMarkers) {
		return DeviceMobile
	}
	if containsAny(lower, tabletMarkers) {
		return DeviceTablet
	}
	return DeviceDesktop
}

// detectBrowser order matters: Chromium-based browsers embed each other's
// tokens, so Edge must win over Chrome and Chrome over Safari.
func detectBrowser(lower string) string {
	switch {
	case strings.Contains(lower, "edg/"):
		return "Edge"
	case strings.Contains(lower, "chrome/") && !strings.Contains(lower, "edg"):
		return "Chrome"
	case strings.Contains(lower, "firefox/"):
		return "Firefox"
	case strings.Contains(lower, "safari/") && !strings.Contains(lower, "chrome"):
		return "Safari"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera/"):
		return "Opera"
	case strings.Contains(lower, "msie") || strings.Contains(lower, "trident/"):
		return "IE"
	default:
		return Unknown
	}
}

func detectBrowserVersion(lower string) *string {
	switch detectBrowser(lower) {
	case "Edge":
		return firstGroup(reEdgeVersion, lower)
	case "Chrome":
		return firstGroup(reChromeVersion, lower)
	case "Firefox":
		return firstGroup(reFirefoxVersion, lower)
	case "Safari":
		return firstGroup(reSafariVersion, lower)
	case "Opera":
		if v := firstGroup(reOperaVersion, lower); v != nil {
			return v
		}
		return firstGroup(reSafariVersion, lower)
	case "IE":
		return firstGroup(reIEVersion, lower)
	default:
		return nil
	}
}

func detectOS(lower string) string {
	switch {
	case strings.Contains(lower, "windows"):
		return "Windows"
	case strings.Contains(lower, "mac os x") || strings.Contains(lower, "macintosh"):
		return "macOS"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ipod"):
		return "iOS"
	case strings.Contains(lower, "android"):
		return "Android"
	case strings.Contains(lower, "linux"):
		return "Linux"
	default:
		return Unknown
	}
}

// windowsVersions maps NT version tokens to marketing names. NT 10.0 covers
// both Windows 10 and 11, which cannot be told apart from the UA alone.
var windowsVersions = []struct {
	token string
	name  string
}{
	{"windows nt 10.0", "10/11"},
	{"windows nt 6.3", "8.1"},
	{"windows nt 6.2", "8"},
	{"windows nt 6.1", "7"},
	{"windows nt 6.0", "Vista"},
	{"windows nt 5.1", "XP"},
}

var linuxDistros = []string{"ubuntu", "fedora", "debian"}

func detectOSVersion(lower string) *string {
	switch detectOS(lower) {
	case "Windows":
		for _, w := range windowsVersions {
			if strings.Contains(lower, w.token) {
				name := w.name
				return &name
			}
		}
		return nil
	case "macOS":
		return underscoresToDots(firstGroup(reMacOSVersion, lower))
	case "iOS":
		return underscoresToDots(firstGroup(reIOSVersion, lower))
	case "Android":
		return firstGroup(reAndroidVersion, lower)
	case "Linux":
		for _, distro := range linuxDistros {
			if strings.Contains(lower, distro) {
				d := distro
				return &d
			}
		}
		return nil
	default:
		return nil
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// firstGroup returns the first capture group of the match, or nil when the
// pattern does not match. A match with an empty group also yields nil.
func firstGroup(re *regexp.Regexp, s string) *string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 || m[1] == "" {
		return nil
	}
	return &m[1]
}

func underscoresToDots(v *string) *string {
	if v == nil {
		return nil
	}
	dotted := strings.ReplaceAll(*v, "_", ".")
	return &dotted
}
