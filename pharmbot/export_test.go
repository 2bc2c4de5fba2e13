package pharmbot

// Sanitize exports sanitize for testing.
func Sanitize(s string) string {
	return sanitize(s)
}
