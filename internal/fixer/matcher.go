package fixer

import "regexp"

// gifPattern matches the legacy Gfycat CDN links. Scheme, host and the .gif
// extension are matched case-insensitively; the slug must be lowercase letters only.
var gifPattern = regexp.MustCompile(`^(?i:https?)://(?i:(zippy|fat|giant)\.gfycat\.com)/([a-z]+)\.(?i:gif)$`) //nolint: gochecknoglobals,lll

// Match reports whether url is a direct Gfycat GIF link and returns its slug.
func Match(url string) (string, bool) {
	m := gifPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}

	return m[2], true
}
