package common

import "strings"

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
