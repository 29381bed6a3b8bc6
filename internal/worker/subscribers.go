package worker

import (
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/service"
)

// StartEventSubscribers wires the in-process event consumers: outbound
// notifications and the policy hour recompute that follows calendar edits.
func StartEventSubscribers(dispatcher events.Dispatcher, notifications *service.NotificationService, policies *service.SLAPolicyService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if policies != nil {
		policies.RegisterHandlers(dispatcher)
	}
}
