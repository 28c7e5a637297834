package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/spec-kit/barbershop-api/internal/domain"
)

// normalizeCPF strips the usual punctuation and validates the two check digits.
func normalizeCPF(raw string) (string, bool) {
	digits := strings.NewReplacer(".", "", "-", "", " ", "").Replace(raw)
	if len(digits) != 11 {
		return "", false
	}

	allSame := true
	for i := 0; i < 11; i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
		if digits[i] != digits[0] {
			allSame = false
		}
	}
	if allSame {
		return "", false
	}

	if cpfCheckDigit(digits[:9]) != digits[9] || cpfCheckDigit(digits[:10]) != digits[10] {
		return "", false
	}
	return digits, true
}

func cpfCheckDigit(prefix string) byte {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * weight
		weight--
	}
	rem := sum * 10 % 11
	if rem == 10 {
		rem = 0
	}
	return byte('0' + rem)
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return "", false
	}
	return email, true
}

// parseDate accepts DD/MM/YYYY and returns the canonical text and the day in loc.
func parseDate(raw string, loc *time.Location) (string, time.Time, bool) {
	day, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return "", time.Time{}, false
	}
	return day.Format(domain.DateLayout), day, true
}

// parseHour accepts H:MM or HH:MM (24h) and returns HH:MM.
func parseHour(raw string) (string, bool) {
	t, err := time.Parse(domain.HourLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return t.Format(domain.HourLayout), true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
