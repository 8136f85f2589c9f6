package compliance

import "errors"

var ErrInvalidPeriod = errors.New("validity days must be positive")
