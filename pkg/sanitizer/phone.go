package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone returns phone in E.164 form. Numbers without a country code
// are interpreted in defaultRegion. Unparseable input yields "".
func NormalizePhone(phone, defaultRegion string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	parsedNumber, err := phonenumbers.Parse(phone, strings.ToUpper(defaultRegion))
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(parsedNumber) {
		return ""
	}
	return phonenumbers.Format(parsedNumber, phonenumbers.E164)
}
