package billing

import (
	"errors"
	"fmt"
)

var (
	ErrQuotaExceeded        = errors.New("plan quota exceeded")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

func ErrQuotaExceededFor(qt QuotaType, usage, limit int) error {
	return fmt.Errorf("%w: %s usage=%d limit=%d", ErrQuotaExceeded, qt, usage, limit)
}
