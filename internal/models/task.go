package models

// Task is a user-owned to-do card.
type Task struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Completed          bool            `json:"completed"`
	DueDate            *string         `json:"dueDate"`
	BackgroundImageURL *string         `json:"backgroundImageUrl"`
	CreatedAt          string          `json:"createdAt"`
	Order              int             `json:"order"`
	UserID             string          `json:"userId"`
	UserDisplayName    string          `json:"userDisplayName"`
	UserAvatarURL      string          `json:"userAvatarUrl"`
	AssignedRoles      []string        `json:"assignedRoles"`
	Applicants         []Applicant     `json:"applicants"`
	ChecklistItems     []ChecklistItem `json:"checklistItems"`
}

// ApplicantStatus is the review state of a role application.
type ApplicantStatus string

const (
	ApplicantPending  ApplicantStatus = "pending"
	ApplicantAccepted ApplicantStatus = "accepted"
	ApplicantRejected ApplicantStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApplicantStatus) Valid() bool {
	switch s {
	case ApplicantPending, ApplicantAccepted, ApplicantRejected:
		return true
	}
	return false
}

// Applicant is a candidate proposed for a named role on a task.
type Applicant struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Role   string          `json:"role"`
	Status ApplicantStatus `json:"status"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.DueDate = cloneString(t.DueDate)
	out.BackgroundImageURL = cloneString(t.BackgroundImageURL)
	out.AssignedRoles = append([]string{}, t.AssignedRoles...)
	out.Applicants = append([]Applicant{}, t.Applicants...)
	out.ChecklistItems = make([]ChecklistItem, len(t.ChecklistItems))
	for i, item := range t.ChecklistItems {
		out.ChecklistItems[i] = item.Clone()
	}
	return out
}

// ItemIndex returns the position of the checklist item with the given ID, or -1.
func (t Task) ItemIndex(itemID string) int {
	for i := range t.ChecklistItems {
		if t.ChecklistItems[i].ID == itemID {
			return i
		}
	}
	return -1
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
