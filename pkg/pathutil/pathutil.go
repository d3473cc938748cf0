// Package pathutil provides pure path, filename and domain helpers for
// download routing
package pathutil

import (
	"net/url"
	"strings"
)

// Filename extracts the last path segment from a possibly path-qualified
// filename, accepting both slash styles.
func Filename(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Extension returns the lowercased extension of a filename without the dot.
// A name with no dot has no extension.
func Extension(filename string) string {
	filename = Filename(filename)
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// NormalizeDomain reduces a download URL to a bare lowercase hostname:
// scheme, path and port stripped, leading "www." removed. Unparseable URLs
// degrade to "unknown" rather than failing resolution.
func NormalizeDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "unknown"
	}
	return host
}

// IsAbsolute reports whether a folder value is an absolute filesystem path:
// a Windows drive path, a UNC path, or a rooted Unix path.
func IsAbsolute(path string) bool {
	if len(path) >= 3 && isDriveLetter(path[0]) && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		return true
	}
	if strings.HasPrefix(path, "\\\\") {
		return true
	}
	return strings.HasPrefix(path, "/")
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// SanitizeSegment strips characters the browser refuses in relative download
// paths and neutralizes parent-directory sequences.
func SanitizeSegment(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		switch r {
		case '<', '>', ':', '"', '|', '?', '*', '\\':
			continue
		default:
			b.WriteRune(r)
		}
	}

	s := b.String()
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", "")
	}
	return strings.Trim(s, " .")
}

// NormalizeFolder converts a stored folder value to forward slashes with no
// leading, trailing or doubled separators.
func NormalizeFolder(folder string) string {
	folder = strings.ReplaceAll(folder, "\\", "/")
	folder = strings.TrimSpace(folder)
	for strings.Contains(folder, "//") {
		folder = strings.ReplaceAll(folder, "//", "/")
	}
	return strings.Trim(folder, "/")
}

// BuildRelativePath joins a rule folder with a download's filename, producing
// the relative path handed to the browser. An empty folder or the literal
// "Downloads" means the downloads root, so the bare filename is returned.
// Segments that sanitize to nothing are dropped; if every segment empties out
// the filename alone is used.
func BuildRelativePath(folder, rawFilename string) string {
	filename := Filename(rawFilename)
	folder = NormalizeFolder(folder)

	if folder == "" || strings.EqualFold(folder, "Downloads") {
		return filename
	}

	var segments []string
	for _, segment := range strings.Split(folder, "/") {
		cleaned := SanitizeSegment(segment)
		if cleaned != "" {
			segments = append(segments, cleaned)
		}
	}

	if len(segments) == 0 {
		return filename
	}
	return strings.Join(segments, "/") + "/" + filename
}

// JoinAbsolute appends a filename to an absolute destination folder using
// the folder's own separator style, so Windows destinations stay Windows
// paths when handed to the companion helper.
func JoinAbsolute(folder, filename string) string {
	sep := "/"
	if strings.Contains(folder, "\\") {
		sep = "\\"
	}
	folder = strings.TrimRight(folder, "/\\")
	return folder + sep + filename
}

// Breadcrumb represents one element of a display path
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Breadcrumbs splits a relative folder path into navigable display elements,
// always rooted at Downloads.
func Breadcrumbs(path string) []Breadcrumb {
	breadcrumbs := []Breadcrumb{{Name: "Downloads", Path: ""}}

	cleaned := NormalizeFolder(path)
	if cleaned == "" {
		return breadcrumbs
	}

	current := ""
	for _, part := range strings.Split(cleaned, "/") {
		if part == "" {
			continue
		}
		if current == "" {
			current = part
		} else {
			current = current + "/" + part
		}
		breadcrumbs = append(breadcrumbs, Breadcrumb{Name: part, Path: current})
	}

	return breadcrumbs
}
