package models

// Label is a category tag from the fixed palette.
type Label string

const (
	LabelRed    Label = "red"
	LabelOrange Label = "orange"
	LabelYellow Label = "yellow"
	LabelGreen  Label = "green"
	LabelBlue   Label = "blue"
	LabelPurple Label = "purple"
)

// LabelPalette lists every allowed label in display order.
var LabelPalette = []Label{LabelRed, LabelOrange, LabelYellow, LabelGreen, LabelBlue, LabelPurple}

// Valid reports whether l belongs to the palette.
func (l Label) Valid() bool {
	for _, p := range LabelPalette {
		if l == p {
			return true
		}
	}
	return false
}

// ChecklistItem is a sub-item of a task with its own completion state and audit trail.
type ChecklistItem struct {
	ID                    string             `json:"id"`
	Title                 string             `json:"title"`
	Description           string             `json:"description"`
	Completed             bool               `json:"completed"`
	DueDate               *string            `json:"dueDate"`
	AssignedUserID        *string            `json:"assignedUserId"`
	AssignedUserName      *string            `json:"assignedUserName"`
	AssignedUserAvatarURL *string            `json:"assignedUserAvatarUrl"`
	ImageURL              *string            `json:"imageUrl"`
	ImageAIHint           *string            `json:"imageAiHint"`
	Label                 []Label            `json:"label"`
	Comments              []Comment          `json:"comments"`
	ActivityLog           []ActivityLogEntry `json:"activityLog"`
}

// Comment is a free-text note attached to a checklist item.
type Comment struct {
	ID              string `json:"id"`
	AuthorName      string `json:"authorName"`
	AuthorAvatarURL string `json:"authorAvatarUrl"`
	Text            string `json:"text"`
	Timestamp       string `json:"timestamp"`
}

// ActivityLogEntry records one change to a checklist item.
type ActivityLogEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	ActorName string `json:"actorName"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// Clone returns a deep copy of the item.
func (i ChecklistItem) Clone() ChecklistItem {
	out := i
	out.DueDate = cloneString(i.DueDate)
	out.AssignedUserID = cloneString(i.AssignedUserID)
	out.AssignedUserName = cloneString(i.AssignedUserName)
	out.AssignedUserAvatarURL = cloneString(i.AssignedUserAvatarURL)
	out.ImageURL = cloneString(i.ImageURL)
	out.ImageAIHint = cloneString(i.ImageAIHint)
	out.Label = append([]Label{}, i.Label...)
	out.Comments = append([]Comment{}, i.Comments...)
	out.ActivityLog = append([]ActivityLogEntry{}, i.ActivityLog...)
	return out
}
