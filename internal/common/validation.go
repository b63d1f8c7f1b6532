package common

import (
	"regexp"
	"strings"
)

var (
	gstinPattern  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	ifscPattern   = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
	phoneStrip    = regexp.MustCompile(`[^\d+]`)
	leadingZeros  = regexp.MustCompile(`^0+`)
	e164Pattern   = regexp.MustCompile(`^\+[1-9]\d{9,14}$`)
)

// DefaultCountryCode is prefixed to numbers without an international prefix.
const DefaultCountryCode = "+91"

// NormalizeGSTIN uppercases and trims a GST number and checks the statutory format.
func NormalizeGSTIN(gstin string) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(gstin))
	if clean == "" {
		return "", ValidationField("gst_number", "GST number is required")
	}
	if len(clean) != 15 {
		return "", ValidationField("gst_number", "GST number must be exactly 15 characters")
	}
	if !gstinPattern.MatchString(clean) {
		return "", ValidationField("gst_number", "Invalid GST number format")
	}
	return clean, nil
}

// NormalizeIFSC uppercases and trims an IFSC code and checks its format.
func NormalizeIFSC(code string) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(code))
	if clean == "" {
		return "", ValidationField("ifsc_code", "IFSC code is required")
	}
	if len(clean) != 11 {
		return "", ValidationField("ifsc_code", "IFSC code must be exactly 11 characters")
	}
	if !ifscPattern.MatchString(clean) {
		return "", ValidationField("ifsc_code", "Invalid IFSC code format")
	}
	return clean, nil
}

// NormalizeAccountNumber trims a bank account number and checks it is 9-20 digits.
func NormalizeAccountNumber(number string) (string, error) {
	clean := strings.TrimSpace(number)
	if clean == "" {
		return "", ValidationField("account_number", "Account number is required")
	}
	if !digitsPattern.MatchString(clean) {
		return "", ValidationField("account_number", "Account number must contain only digits")
	}
	if len(clean) < 9 || len(clean) > 20 {
		return "", ValidationField("account_number", "Account number must be between 9 and 20 digits")
	}
	return clean, nil
}

// SanitizePhoneNumber converts a phone number to the international form the
// payment gateway expects. countryCode is used when the number has no prefix.
func SanitizePhoneNumber(phone, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	cleaned := phoneStrip.ReplaceAllString(strings.TrimSpace(phone), "")
	if cleaned == "" {
		return "", ValidationField("phone", "Phone is required")
	}

	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = countryCode + leadingZeros.ReplaceAllString(cleaned, "")
	}

	if !e164Pattern.MatchString(cleaned) {
		return "", ValidationField("phone", "Invalid phone number format")
	}
	return cleaned, nil
}
