package store

import (
	"fmt"
	"strings"

	"github.com/yukikurage/toondo/internal/models"
)

// Activity actions recorded on checklist items.
const (
	ActionCreated             = "created item"
	ActionMarkedComplete      = "marked as complete"
	ActionMarkedIncomplete    = "marked as incomplete"
	ActionUpdatedTitle        = "updated title"
	ActionUpdatedDescription  = "updated description"
	ActionUpdatedDueDate      = "updated due date"
	ActionUpdatedAssignee     = "updated assignee"
	ActionUpdatedImage        = "updated image"
	DetailsClearedDescription = "cleared description"
	DetailsClearedDueDate     = "cleared due date"
	DetailsClearedAssignee    = "cleared assignee"
	DetailsClearedImage       = "cleared image"
)

// Assignee identifies the user a checklist item is assigned to.
type Assignee struct {
	ID        string
	Name      string
	AvatarURL string
}

// Completed reports the derived completion state of a checklist.
func Completed(items []models.ChecklistItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Completed {
			return false
		}
	}
	return true
}

func (e *Engine) logEntry(actor Actor, action, details string) models.ActivityLogEntry {
	return models.ActivityLogEntry{
		ID:        e.NewID(),
		Timestamp: e.timestamp(),
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
	}
}

// prepend adds entry at the front of the item log, newest first.
func prepend(item *models.ChecklistItem, entry models.ActivityLogEntry) {
	log := make([]models.ActivityLogEntry, 0, len(item.ActivityLog)+1)
	log = append(log, entry)
	item.ActivityLog = append(log, item.ActivityLog...)
}

// AddItem appends a checklist item and reopens the task.
func (e *Engine) AddItem(s Snapshot, actor Actor, taskID, title string) (Snapshot, models.ChecklistItem, error) {
	var created models.ChecklistItem
	next, err := e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		v, err := requireTitle(title)
		if err != nil {
			return err
		}
		created = models.ChecklistItem{
			ID:          e.NewID(),
			Title:       v,
			Label:       []models.Label{},
			Comments:    []models.Comment{},
			ActivityLog: []models.ActivityLogEntry{e.logEntry(actor, ActionCreated, v)},
		}
		t.ChecklistItems = append(t.ChecklistItems, created)
		t.Completed = false
		return nil
	})
	if err != nil {
		return s, models.ChecklistItem{}, err
	}
	return next, created, nil
}

// ToggleItem flips an item's completion and recomputes the task.
func (e *Engine) ToggleItem(s Snapshot, actor Actor, taskID, itemID string) (Snapshot, error) {
	return e.mutateItem(s, actor, taskID, itemID, func(t *models.Task, item *models.ChecklistItem) error {
		item.Completed = !item.Completed
		action := ActionMarkedIncomplete
		if item.Completed {
			action = ActionMarkedComplete
		}
		prepend(item, e.logEntry(actor, action, item.Title))
		t.Completed = Completed(t.ChecklistItems)
		return nil
	})
}

// DeleteItem removes an item and recomputes the task.
func (e *Engine) DeleteItem(s Snapshot, actor Actor, taskID, itemID string) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		j := t.ItemIndex(itemID)
		if j < 0 {
			return fmt.Errorf("%w: checklist item %s", ErrNotFound, itemID)
		}
		items := make([]models.ChecklistItem, 0, len(t.ChecklistItems)-1)
		items = append(items, t.ChecklistItems[:j]...)
		items = append(items, t.ChecklistItems[j+1:]...)
		t.ChecklistItems = items
		t.Completed = Completed(items)
		return nil
	})
}

// UpdateItemTitle renames an item.
func (e *Engine) UpdateItemTitle(s Snapshot, actor Actor, taskID, itemID, title string) (Snapshot, error) {
	return e.mutateItem(s, actor, taskID, itemID, func(_ *models.Task, item *models.ChecklistItem) error {
		v, err := requireTitle(title)
		if err != nil {
			return err
		}
		if item.Title == v {
			return nil
		}
		details := fmt.Sprintf("changed title from %q to %q", item.Title, v)
		item.Title = v
		prepend(item, e.logEntry(actor, ActionUpdatedTitle, details))
		return nil
	})
}

// UpdateItemDescription replaces an item's description.
func (e *Engine) UpdateItemDescription(s Snapshot, actor Actor, taskID, itemID, description string) (Snapshot, error) {
	v := strings.TrimSpace(description)
	return e.mutateItem(s, actor, taskID, itemID, func(_ *models.Task, item *models.ChecklistItem) error {
		if item.Description == v {
			return nil
		}
		item.Description = v
		details := DetailsClearedDescription
		if v != "" {
			details = fmt.Sprintf("changed description to %q", preview(v))
		}
		prepend(item, e.logEntry(actor, ActionUpdatedDescription, details))
		return nil
	})
}

// SetItemDueDate sets or clears (nil) an item's due date.
func (e *Engine) SetItemDueDate(s Snapshot, actor Actor, taskID, itemID string, date *string) (Snapshot, error) {
	return e.mutateItem(s, actor, taskID, itemID, func(_ *models.Task, item *models.ChecklistItem) error {
		v, err := NormalizeDate(date)
		if err != nil {
			return err
		}
		if sameOptional(item.DueDate, v) {
			return nil
		}
		item.DueDate = v
		details := DetailsClearedDueDate
		if v != nil {
			details = "set due date to " + *v
		}
		prepend(item, e.logEntry(actor, ActionUpdatedDueDate, details))
		return nil
	})
}

// AssignItemUser assigns the item to a user, or clears the assignee when nil.
func (e *Engine) AssignItemUser(s Snapshot, actor Actor, taskID, itemID string, assignee *Assignee) (Snapshot, error) {
	var id *string
	if assignee != nil {
		id = optional(&assignee.ID)
	}
	return e.mutateItem(s, actor, taskID, itemID, func(_ *models.Task, item *models.ChecklistItem) error {
		if sameOptional(item.AssignedUserID, id) {
			return nil
		}
		details := DetailsClearedAssignee
		if id == nil {
			item.AssignedUserID = nil
			item.AssignedUserName = nil
			item.AssignedUserAvatarURL = nil
		} else {
			name := assignee.Name
			avatar := assignee.AvatarURL
			item.AssignedUserID = id
			item.AssignedUserName = optional(&name)
			item.AssignedUserAvatarURL = optional(&avatar)
			if item.AssignedUserName != nil {
				details = "assigned to " + *item.AssignedUserName
			} else {
				details = "assigned to " + *id
			}
		}
		prepend(item, e.logEntry(actor, ActionUpdatedAssignee, details))
		return nil
	})
}

// SetItemImage sets or clears (nil url) an item's image. The hint is stored
// alongside the URL and does not count as a change on its own.
func (e *Engine) SetItemImage(s Snapshot, actor Actor, taskID, itemID string, url, hint *string) (Snapshot, error) {
	u := optional(url)
	h := optional(hint)
	if u == nil {
		h = nil
	}
	return e.mutateItem(s, actor, taskID, itemID, func(_ *models.Task, item *models.ChecklistItem) error {
		if sameOptional(item.ImageURL, u) {
			item.ImageAIHint = h
			return nil
		}
		item.ImageURL = u
		item.ImageAIHint = h
		details := DetailsClearedImage
		if u != nil {
			details = "set image to " + *u
		}
		prepend(item, e.logEntry(actor, ActionUpdatedImage, details))
		return nil
	})
}

// SetItemLabels replaces the item's label set. Label changes are not logged.
func (e *Engine) SetItemLabels(s Snapshot, actor Actor, taskID, itemID string, labels []models.Label) (Snapshot, error) {
	return e.mutateItem(s, actor, taskID, itemID, func(_ *models.Task, item *models.ChecklistItem) error {
		v, err := NormalizeLabels(labels)
		if err != nil {
			return err
		}
		if sameLabelSet(item.Label, v) {
			return nil
		}
		item.Label = v
		return nil
	})
}

// AddItemComment appends a comment to an item.
func (e *Engine) AddItemComment(s Snapshot, actor Actor, taskID, itemID, text string) (Snapshot, models.Comment, error) {
	var created models.Comment
	next, err := e.mutateItem(s, actor, taskID, itemID, func(_ *models.Task, item *models.ChecklistItem) error {
		v := strings.TrimSpace(text)
		if v == "" {
			return fmt.Errorf("%w: comment text is required", ErrValidationFailed)
		}
		created = models.Comment{
			ID:              e.NewID(),
			AuthorName:      actor.Name,
			AuthorAvatarURL: actor.AvatarURL,
			Text:            v,
			Timestamp:       e.timestamp(),
		}
		item.Comments = append(item.Comments, created)
		return nil
	})
	if err != nil {
		return s, models.Comment{}, err
	}
	return next, created, nil
}
