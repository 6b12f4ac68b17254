package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(AppointmentReminderTask.TaskID(), AppointmentReminderTask.HandleExecution)
	RegisterHandler(ReconcilePendingPaymentsTask.TaskID(), ReconcilePendingPaymentsTask.HandleExecution)
}
