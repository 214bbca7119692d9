package stats

import "errors"

var ErrInvalidPeriod = errors.New("invalid period, expected YYYY-MM-DD dates with from <= to")
