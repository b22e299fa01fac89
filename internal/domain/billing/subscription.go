package billing

import (
	"fmt"
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription is a tenant's current plan assignment. One per tenant; owned
// by the billing subsystem and read-only to the authorization engine.
type Subscription struct {
	tenantID    uint
	planID      string
	status      SubscriptionStatus
	startDate   time.Time
	expiresAt   *time.Time
	cancelledAt *time.Time
}

func NewSubscription(tenantID uint, planID string, startDate time.Time, expiresAt *time.Time) (*Subscription, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if planID == "" {
		return nil, fmt.Errorf("plan id is required")
	}
	return &Subscription{
		tenantID:  tenantID,
		planID:    planID,
		status:    SubscriptionStatusActive,
		startDate: startDate,
		expiresAt: expiresAt,
	}, nil
}

func ReconstructSubscription(tenantID uint, planID string, status SubscriptionStatus,
	startDate time.Time, expiresAt, cancelledAt *time.Time) (*Subscription, error) {

	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	return &Subscription{
		tenantID:    tenantID,
		planID:      planID,
		status:      status,
		startDate:   startDate,
		expiresAt:   expiresAt,
		cancelledAt: cancelledAt,
	}, nil
}

func (s *Subscription) TenantID() uint {
	return s.tenantID
}

func (s *Subscription) PlanID() string {
	return s.planID
}

func (s *Subscription) Status() SubscriptionStatus {
	return s.status
}

func (s *Subscription) StartDate() time.Time {
	return s.startDate
}

func (s *Subscription) ExpiresAt() *time.Time {
	return s.expiresAt
}

func (s *Subscription) CancelledAt() *time.Time {
	return s.cancelledAt
}

// IsActive reports whether the subscription still entitles the tenant to its
// plan at the given instant. Cancelled subscriptions stay active until their
// paid period runs out.
func (s *Subscription) IsActive(now time.Time) bool {
	switch s.status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusCancelled:
	default:
		return false
	}
	if s.expiresAt != nil && !now.Before(*s.expiresAt) {
		return false
	}
	if s.status == SubscriptionStatusCancelled && s.expiresAt == nil {
		return false
	}
	return true
}
