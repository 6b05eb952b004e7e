package rest

import "time"

type ResponseError struct {
	Message string `json:"message"`
}

// parseTimeRange reads optional from/to bounds in RFC3339 or date-only
// form. Zero times mean an unbounded side.
func parseTimeRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if fromRaw != "" {
		if from, err = parseTime(fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toRaw != "" {
		if to, err = parseTime(toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	return from, to, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", raw)
}
