package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
)

const (
	ResourceRequest      = "request"
	ResourceLeaveBalance = "leave-balance"

	ActionApprove     = "approve"
	ActionReviewQueue = "review-queue"
	ActionReadAny     = "read-any"
	ActionAccrue      = "accrue"
	ActionInitialize  = "initialize"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(roles []string, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService(enforcer *casbin.Enforcer) Service {
	return &service{enforcer: enforcer}
}

// Enforce allows the operation if any of the actor's roles carries the
// requested permission.
func (s *service) Enforce(roles []string, resource, action string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, role := range roles {
		allowed, err := s.enforcer.Enforce(role, resource, action)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}
