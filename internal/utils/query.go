package utils

import (
	"net/url"
	"strings"
	"time"
)

// QueryDate parses a YYYY-MM-DD query value in loc. ok is false when the
// key is missing; err is set when present but malformed.
func QueryDate(q url.Values, key string, loc *time.Location) (t time.Time, ok bool, err error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return time.Time{}, false, nil
	}
	t, err = time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, true, err
	}
	return t, true, nil
}
