package validator

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrInvalidShareCount = errors.New("invalid share count")
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	symbolRegex   = regexp.MustCompile(`^[A-Z.\-]{1,10}$`)
)

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

// NormalizeSymbol upper-cases and validates a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolRegex.MatchString(normalized) {
		return "", ErrInvalidSymbol
	}
	return normalized, nil
}

// ParseShares accepts only whole share counts of at least one.
func ParseShares(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	shares, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || shares < 1 {
		return 0, ErrInvalidShareCount
	}
	return shares, nil
}
