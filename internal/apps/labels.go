// Package apps turns platform application identifiers into the short
// activity labels friends see.
package apps

import "strings"

const (
	IdleLabel    = "Idle 😴"
	OfflineLabel = "Offline 💤"
)

// labels is the one table of known identifiers. TikTok ships under two
// identifiers depending on region; both map to the same label.
var labels = map[string]string{
	"com.android.chrome":                "Browsing Chrome 🌐",
	"com.google.android.youtube":        "Watching YouTube 📺",
	"com.spotify.music":                 "Listening to Spotify 🎵",
	"com.instagram.android":             "Scrolling Instagram 📸",
	"com.whatsapp":                      "Chatting on WhatsApp 💬",
	"com.netflix.mediaclient":           "Watching Netflix 🎬",
	"com.anonymous.peep":                "Using Peep 👁️",
	"com.twitter.android":               "Scrolling X 𝕏",
	"com.google.android.apps.maps":      "Navigating Maps 🗺️",
	"com.google.android.gm":             "Checking Gmail 📧",
	"com.facebook.katana":               "On Facebook 👥",
	"com.zhiliaoapp.musically":          "Watching TikTok 🎵",
	"com.tiktok":                        "Watching TikTok 🎵",
	"com.snapchat.android":              "Using Snapchat 👻",
	"com.discord":                       "Chatting on Discord 💬",
	"com.linkedin.android":              "Networking on LinkedIn 💼",
	"com.reddit.frontpage":              "Browsing Reddit 🔥",
	"com.amazon.mShop.android.shopping": "Shopping on Amazon 🛒",
	"com.google.android.dialer":         "On a Call 📞",
	"com.android.contacts":              "Looking at Contacts 📇",
}

// FriendlyName returns the label for an application identifier. Unknown
// identifiers get a generic label built from their last dotted segment.
func FriendlyName(packageName string) string {
	packageName = strings.TrimSpace(packageName)
	if packageName == "" {
		return IdleLabel
	}
	if label, ok := labels[packageName]; ok {
		return label
	}
	return "Using " + lastSegment(packageName) + " 📱"
}

func lastSegment(packageName string) string {
	if i := strings.LastIndexByte(packageName, '.'); i >= 0 {
		return packageName[i+1:]
	}
	return packageName
}
