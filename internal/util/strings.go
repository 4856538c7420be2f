package util

// Truncate bounds s to at most max characters. Persisted output and error
// text go through this before hitting the store; the cap is a contract of the
// run ledger, not an incidental courtesy.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
