package git

import (
	"net/url"
	"strings"
)

// IsRemoteURL reports whether ref looks like a clonable git remote
// (http(s), ssh, git protocol, or scp-style git@host:path).
func IsRemoteURL(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if isSCPLike(ref) {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ssh", "git":
		return u.Host != ""
	}
	return false
}

// RepositorySlug returns "owner/repo" for a remote of the form
// https://host/owner/repo(.git) or git@host:owner/repo(.git).
// Anything else yields an empty string.
func RepositorySlug(ref string) string {
	ref = strings.TrimSpace(ref)
	if !IsRemoteURL(ref) {
		return ""
	}

	var path string
	if isSCPLike(ref) {
		path = ref[strings.Index(ref, ":")+1:]
	} else {
		u, err := url.Parse(ref)
		if err != nil {
			return ""
		}
		path = u.Path
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "/" + parts[1]
}

// isSCPLike matches user@host:path without a scheme.
func isSCPLike(ref string) bool {
	if strings.Contains(ref, "://") {
		return false
	}
	at := strings.Index(ref, "@")
	colon := strings.Index(ref, ":")
	return at > 0 && colon > at+1 && colon < len(ref)-1
}
