package identity

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// avatarSizeMarker is the suffix Twitter inserts before the file extension of
// profile image URLs to select the 48x48 rendition. Removing it yields the
// original-size image.
const avatarSizeMarker = "_normal"

// CanonicalAvatarURL strips the size marker from a profile image URL so the
// stored avatar always points at the full-size rendition. URLs without the
// marker come back unchanged.
func CanonicalAvatarURL(avatarURL string) string {
	trimmed := strings.TrimSpace(avatarURL)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, avatarSizeMarker) {
		return trimmed
	}
	base := path.Base(trimmed)
	ext := path.Ext(base)
	if ext != "" && strings.HasSuffix(trimmed, avatarSizeMarker+ext) {
		return strings.TrimSuffix(trimmed, avatarSizeMarker+ext) + ext
	}
	return strings.ReplaceAll(trimmed, avatarSizeMarker, "")
}

// Profile is the normalized shape of a provider account payload. Only the
// fields the linking flow stores are kept; everything else stays in Raw.
type Profile struct {
	UserID      string
	Handle      string
	DisplayName string
	AvatarURL   string
	Raw         map[string]any
}

// NormalizeProfile maps a raw verify-credentials payload into a Profile. The
// avatar URL is canonicalized; HTTPS image URLs are preferred when present.
func NormalizeProfile(payload map[string]any) (Profile, error) {
	handle := strings.TrimSpace(readString(payload["screen_name"]))
	if handle == "" {
		return Profile{}, fmt.Errorf("identity: payload is missing screen_name")
	}
	avatar := strings.TrimSpace(readString(payload["profile_image_url_https"]))
	if avatar == "" {
		avatar = strings.TrimSpace(readString(payload["profile_image_url"]))
	}
	return Profile{
		UserID:      strings.TrimSpace(readString(payload["id_str"])),
		Handle:      handle,
		DisplayName: strings.TrimSpace(readString(payload["name"])),
		AvatarURL:   CanonicalAvatarURL(avatar),
		Raw:         copyMap(payload),
	}, nil
}

func copyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func readString(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	case json.Number:
		return strings.TrimSpace(typed.String())
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	default:
		if value == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
