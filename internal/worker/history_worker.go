package worker

import (
	"github.com/spec-kit/sla-service/internal/service"
)

// StartHistoryWorker registers the SLA audit trail handlers.
func StartHistoryWorker(historyService *service.HistoryService) {
	if historyService == nil {
		return
	}
	historyService.RegisterHandlers()
}
