// Package stringutil holds small string helpers shared by log call sites.
package stringutil

// hashLogWidth caps how much of a hash a log line carries.
const hashLogWidth = 16

// ShortenLog abbreviates a hash for logging, keeping both ends so entries
// stay distinguishable across lines.
func ShortenLog(hash string) string {
	if len(hash) <= hashLogWidth {
		return hash
	}
	keep := hashLogWidth / 2
	return hash[:keep] + "..." + hash[len(hash)-keep:]
}
