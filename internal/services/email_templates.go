package services

import (
	"fmt"
	"sort"
	"strings"

	"teamboard/internal/models"
)

// EmailTemplate is a rendered subject/content pair for a SEND_EMAIL action.
type EmailTemplate struct {
	Subject string
	Content string
}

// buildEmailTemplate selects and interpolates the message for a SEND_EMAIL
// action. Templates are keyed by the trigger that fired the rule, not by the
// action, so a generic email action on a due-date rule reads like a due-date
// notice. Triggers without a specific template get the generic fallback.
func buildEmailTemplate(trigger models.TriggerType, evt EventContext, board *models.Board) EmailTemplate {
	boardTitle := "your board"
	if board != nil && board.Title != "" {
		boardTitle = board.Title
	}
	cardTitle := contextString(evt, "title")

	switch trigger {
	case models.TriggerCardCreated:
		listTitle := contextString(evt, "listTitle")
		return EmailTemplate{
			Subject: fmt.Sprintf("New card on %s", boardTitle),
			Content: fmt.Sprintf(
				"<h2>New card created</h2><p>Card <strong>%s</strong> was added to <strong>%s</strong> on board <strong>%s</strong>.</p>",
				cardTitle, listTitle, boardTitle),
		}
	case models.TriggerCardMoved:
		src := contextString(evt, "sourceListTitle")
		dst := contextString(evt, "destinationListTitle")
		return EmailTemplate{
			Subject: fmt.Sprintf("Card moved on %s", boardTitle),
			Content: fmt.Sprintf(
				"<h2>Card moved</h2><p>Card <strong>%s</strong> moved from <strong>%s</strong> to <strong>%s</strong> on board <strong>%s</strong>.</p>",
				cardTitle, src, dst, boardTitle),
		}
	case models.TriggerCardUpdated:
		return EmailTemplate{
			Subject: fmt.Sprintf("Card updated on %s", boardTitle),
			Content: fmt.Sprintf(
				"<h2>Card updated</h2><p>Card <strong>%s</strong> on board <strong>%s</strong> changed: %s.</p>",
				cardTitle, boardTitle, updatedFields(evt)),
		}
	case models.TriggerTaskCompleted:
		taskTitle := contextString(evt, "taskTitle")
		return EmailTemplate{
			Subject: fmt.Sprintf("Task completed on %s", boardTitle),
			Content: fmt.Sprintf(
				"<h2>Task completed</h2><p>Task <strong>%s</strong> on card <strong>%s</strong> (board <strong>%s</strong>) is done.</p>",
				taskTitle, cardTitle, boardTitle),
		}
	default:
		return EmailTemplate{
			Subject: "Board Notification",
			Content: fmt.Sprintf(
				"<h2>Board notification</h2><p>Activity on card <strong>%s</strong> on board <strong>%s</strong>.</p>",
				cardTitle, boardTitle),
		}
	}
}

func contextString(evt EventContext, key string) string {
	if evt == nil {
		return ""
	}
	s, _ := evt[key].(string)
	return s
}

// updatedFields renders the "updates" context entry (changed field -> new
// value) as a stable, comma-separated field list.
func updatedFields(evt EventContext) string {
	updates, ok := evt["updates"].(map[string]interface{})
	if !ok || len(updates) == 0 {
		return "details updated"
	}
	fields := make([]string, 0, len(updates))
	for k := range updates {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}
