package postservice

import (
	"time"

	"github.com/fennwick/pressroom/internal/common"
)

// Accepted publication date formats. The editor submits RFC 3339; the plain
// date form is kept for hand-written API calls.
var dateFormats = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateDate(v *common.Validator, date string) time.Time {
	if date == "" {
		v.AddError("date", "must be provided")
		return time.Time{}
	}

	t, ok := parseDate(date)
	if !ok {
		v.AddError("date", "invalid date format, expected an ISO timestamp or YYYY-MM-DD")
	}
	return t
}
