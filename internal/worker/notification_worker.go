package worker

import (
	"github.com/spec-kit/it-helpdesk/internal/notify"
)

// StartNotificationWorker registers notification handlers on the dispatcher.
func StartNotificationWorker(notificationService *notify.Service) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
