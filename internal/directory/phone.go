package directory

import "strings"

// NormalizePhone reduces a phone number to digits in international form.
// A single leading zero is a trunk prefix and is replaced with countryCode.
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "00") {
		return digits[2:]
	}
	if countryCode != "" && strings.HasPrefix(digits, "0") {
		return countryCode + digits[1:]
	}
	return digits
}

// PhoneSuffix returns the last n digits of a normalised number, or the whole
// number when it is shorter.
func PhoneSuffix(normalized string, n int) string {
	if n <= 0 || len(normalized) <= n {
		return normalized
	}
	return normalized[len(normalized)-n:]
}

// PhonesMatch compares two raw phone numbers by their trailing digits.
func PhonesMatch(a, b, countryCode string, digits int) bool {
	na, nb := NormalizePhone(a, countryCode), NormalizePhone(b, countryCode)
	if na == "" || nb == "" {
		return false
	}
	if len(na) < digits || len(nb) < digits {
		return na == nb
	}
	return PhoneSuffix(na, digits) == PhoneSuffix(nb, digits)
}
