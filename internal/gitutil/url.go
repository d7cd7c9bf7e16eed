package gitutil

import (
	"net/url"
	"regexp"
	"strings"
)

// URLKind classifies a repository location.
type URLKind int

const (
	KindUnsupported URLKind = iota
	KindHTTP
	KindSSH
	KindLocal
)

var scpLikeRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+@[A-Za-z0-9_.-]+:[^/].*$`)

// Classify reports how a repository location would be reached.
// file:// is intentionally unsupported.
func Classify(raw string) URLKind {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return KindUnsupported
	case strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "http://"):
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return KindHTTP
		}
		return KindUnsupported
	case strings.HasPrefix(raw, "ssh://"), scpLikeRegex.MatchString(raw):
		return KindSSH
	case strings.Contains(raw, "://"):
		return KindUnsupported
	default:
		return KindLocal
	}
}

// RepositoryName extracts "owner/repo" from an HTTPS or SSH remote URL.
func RepositoryName(raw string) (string, bool) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")

	// HTTPS – https://github.com/owner/repo.git
	if u, err := url.Parse(raw); err == nil && u.Host != "" && u.Path != "" {
		switch u.Scheme {
		case "http", "https", "ssh":
			name := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/"), ".git")
			return name, name != ""
		}
	}
	// SSH – git@github.com:owner/repo.git
	if scpLikeRegex.MatchString(raw) {
		parts := strings.SplitN(raw, ":", 2)
		name := strings.TrimSuffix(parts[1], ".git")
		return name, name != ""
	}
	return "", false
}

// Redact strips credentials embedded in an HTTP(S) URL so it can be logged.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User("redacted")
	return u.String()
}
