package tasks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lexmarket_echo/internal/models"
)

// AppointmentReminderTaskDef emails both parties ahead of a consultation.
// One task per appointment, created when the booking is confirmed.
type AppointmentReminderTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *AppointmentReminderTaskDef) TaskID() string {
	return TaskAppointmentReminder
}

// HandleExecution sends the reminder emails for one appointment
func (t *AppointmentReminderTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	apptID, ok := argUint(task.Arguments, "appointment_id")
	if !ok {
		return nil, fmt.Errorf("appointment_id argument missing")
	}

	var appt models.Appointment
	if err := deps.DB.WithContext(ctx).Preload("Client").Preload("Lawyer").First(&appt, apptID).Error; err != nil {
		return nil, fmt.Errorf("appointment %d not found: %w", apptID, err)
	}

	// Cancelled or rescheduled consultations keep their stale task; skip it.
	if appt.Status == models.AppointmentStatusCancelled || appt.Status == models.AppointmentStatusRescheduled {
		deps.Logger.Info("skipping reminder for inactive appointment",
			zap.Uint("appointment_id", appt.ID),
			zap.String("status", string(appt.Status)),
		)
		return map[string]interface{}{"skipped": true, "status": string(appt.Status)}, nil
	}

	when := appt.ScheduledAt.Format("02-01-2006 15:04")

	linkLine := ""
	if appt.MeetingLink != "" {
		linkLine = fmt.Sprintf(`<p>Enlace de la reunión: <a href="%s">%s</a></p>`, appt.MeetingLink, appt.MeetingLink)
	}

	deps.Notifier.Fire(ctx, appt.Client.Email,
		"Recordatorio: tu consulta es mañana",
		fmt.Sprintf("<p>Tu consulta con %s es el %s.</p>%s", appt.Lawyer.FullName(), when, linkLine))

	deps.Notifier.Fire(ctx, appt.Lawyer.Email,
		"Recordatorio: consulta agendada mañana",
		fmt.Sprintf("<p>Tienes una consulta con %s el %s.</p>%s", appt.Client.FullName(), when, linkLine))

	return map[string]interface{}{
		"appointment_id": appt.ID,
		"recipients":     2,
	}, nil
}

// AppointmentReminderTask is the singleton instance of AppointmentReminderTaskDef
var AppointmentReminderTask = &AppointmentReminderTaskDef{}
