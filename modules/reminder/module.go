package reminder

import (
	"lawlink-api/modules/reminder/service"
)

// Init wires the reminder sweep. The module has no HTTP surface; it runs
// from the background worker.
func Init(store service.ReminderStore, recipients service.RecipientResolver, notifier service.Notifier) *service.ReminderService {
	return service.NewReminderService(store, recipients, notifier)
}
