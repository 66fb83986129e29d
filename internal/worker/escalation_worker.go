package worker

import (
	"github.com/support-kit/case-assistant/internal/service"
)

// StartEscalationWorker registers escalation event handlers.
func StartEscalationWorker(escalationService *service.EscalationService) {
	if escalationService == nil {
		return
	}
	escalationService.RegisterHandlers()
}
