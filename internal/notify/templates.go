package notify

import (
	"fmt"

	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
)

// notificationKindFor maps a domain event to the notification kind persisted
// on its records.
func notificationKindFor(kind events.EventKind) (domain.NotificationKind, bool) {
	switch kind {
	case events.EventTaskAssigned:
		return domain.NotificationTaskAssigned, true
	case events.EventTaskCompleted:
		return domain.NotificationTaskCompletedForApproval, true
	case events.EventTaskApproved:
		return domain.NotificationTaskApproved, true
	case events.EventTaskRejected:
		return domain.NotificationTaskRejected, true
	case events.EventCommentAdded:
		return domain.NotificationNewComment, true
	case events.EventTaskUnassigned:
		return domain.NotificationTaskUnassigned, true
	case events.EventWorkLogAdded:
		return domain.NotificationNewWorkLog, true
	}
	return "", false
}

// renderMessage produces the in-app message for one recipient. An explicit
// mention elevates the wording for comment events.
func renderMessage(event *events.TaskEvent, mentioned bool) string {
	trigger := event.TriggeredBy.DisplayName
	title := event.Task.Title

	switch event.Kind {
	case events.EventTaskAssigned:
		return fmt.Sprintf("%s assigned you to the task %q", trigger, title)
	case events.EventTaskCompleted:
		return fmt.Sprintf("%s completed the task %q and is awaiting approval", trigger, title)
	case events.EventTaskApproved:
		return fmt.Sprintf("%s approved the task %q", trigger, title)
	case events.EventTaskRejected:
		return fmt.Sprintf("%s sent the task %q back for more work", trigger, title)
	case events.EventCommentAdded:
		if mentioned {
			return fmt.Sprintf("%s mentioned you in a comment on %q", trigger, title)
		}
		return fmt.Sprintf("%s commented on the task %q", trigger, title)
	case events.EventTaskUnassigned:
		return fmt.Sprintf("%s removed you from the task %q", trigger, title)
	case events.EventWorkLogAdded:
		return fmt.Sprintf("%s logged hours on the task %q", trigger, title)
	}
	return fmt.Sprintf("%s updated the task %q", trigger, title)
}

// renderEmail wraps the in-app message into a minimal email. The in-app
// record is the source of truth; the email just points back at it.
func renderEmail(event *events.TaskEvent, profile domain.UserProfile, message, link string) EmailMessage {
	subject := fmt.Sprintf("[TaskHub] %s", message)
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>%s.</p><p><a href=%q>Open the task</a></p>`,
		profile.DisplayName,
		message,
		link,
	)

	return EmailMessage{
		To:       profile.Email,
		ToName:   profile.DisplayName,
		Subject:  subject,
		HTMLBody: body,
	}
}
