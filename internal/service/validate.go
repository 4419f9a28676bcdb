package service

import (
	"regexp"
	"time"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

// validDate reports whether s parses as YYYY-MM-DD.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// formatDate renders a date-only value for JSON.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
