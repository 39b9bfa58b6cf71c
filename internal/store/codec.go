package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/models"
)

// Raw shapes accept records written by older versions, where any field may be
// missing. They are only used while decoding.
type rawTask struct {
	ID                 *string        `json:"id"`
	Title              *string        `json:"title"`
	Description        *string        `json:"description"`
	DueDate            *string        `json:"dueDate"`
	BackgroundImageURL *string        `json:"backgroundImageUrl"`
	CreatedAt          *string        `json:"createdAt"`
	Order              *float64       `json:"order"`
	UserID             *string        `json:"userId"`
	UserDisplayName    *string        `json:"userDisplayName"`
	UserAvatarURL      *string        `json:"userAvatarUrl"`
	AssignedRoles      []string       `json:"assignedRoles"`
	Applicants         []rawApplicant `json:"applicants"`
	ChecklistItems     []rawItem      `json:"checklistItems"`
}

type rawApplicant struct {
	ID     *string `json:"id"`
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

type rawItem struct {
	ID                    *string                   `json:"id"`
	Title                 *string                   `json:"title"`
	Description           *string                   `json:"description"`
	Completed             *bool                     `json:"completed"`
	DueDate               *string                   `json:"dueDate"`
	AssignedUserID        *string                   `json:"assignedUserId"`
	AssignedUserName      *string                   `json:"assignedUserName"`
	AssignedUserAvatarURL *string                   `json:"assignedUserAvatarUrl"`
	ImageURL              *string                   `json:"imageUrl"`
	ImageAIHint           *string                   `json:"imageAiHint"`
	Label                 json.RawMessage           `json:"label"`
	Comments              []rawComment              `json:"comments"`
	ActivityLog           []models.ActivityLogEntry `json:"activityLog"`
}

type rawComment struct {
	ID              *string `json:"id"`
	AuthorName      *string `json:"authorName"`
	AuthorAvatarURL *string `json:"authorAvatarUrl"`
	Text            *string `json:"text"`
	Timestamp       *string `json:"timestamp"`
}

type rawUser struct {
	ID           *string `json:"id"`
	Username     *string `json:"username"`
	PasswordHash *string `json:"passwordHash"`
	DisplayName  *string `json:"displayName"`
	AvatarURL    *string `json:"avatarUrl"`
}

// EncodeTasks serializes the snapshot as a JSON array of tasks.
func EncodeTasks(s Snapshot) ([]byte, error) {
	tasks := s.Tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	return json.Marshal(tasks)
}

// DecodeTasks parses a stored task collection and resolves every optional or
// legacy field to an explicit default. On malformed input it returns an empty
// snapshot together with ErrPersistenceCorrupt.
func DecodeTasks(data []byte) (Snapshot, error) {
	empty := Snapshot{Tasks: []models.Task{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return empty, nil
	}

	var raw []rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return empty, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}

	ids := collectIDs(raw)
	tasks := make([]models.Task, 0, len(raw))
	for i, r := range raw {
		tasks = append(tasks, normalizeTask(i, r, ids))
	}
	return Snapshot{Tasks: tasks}, nil
}

// idSet holds every ID present in a stored collection so generated fallbacks
// never collide with a real one.
type idSet map[string]struct{}

func collectIDs(raw []rawTask) idSet {
	ids := make(idSet)
	add := func(id *string) {
		if id != nil {
			ids[*id] = struct{}{}
		}
	}
	for _, t := range raw {
		add(t.ID)
		for _, a := range t.Applicants {
			add(a.ID)
		}
		for _, item := range t.ChecklistItems {
			add(item.ID)
			for _, c := range item.Comments {
				add(c.ID)
			}
			for _, entry := range item.ActivityLog {
				if entry.ID != "" {
					ids[entry.ID] = struct{}{}
				}
			}
		}
	}
	return ids
}

// id returns the stored value, or the first free "<prefix>-<n>" at or after n.
func (ids idSet) id(value *string, prefix string, n int) string {
	if value != nil {
		return *value
	}
	for {
		candidate := fmt.Sprintf("%s-%d", prefix, n)
		if _, taken := ids[candidate]; !taken {
			ids[candidate] = struct{}{}
			return candidate
		}
		n++
	}
}

// completed is always derived from the checklist; a stored task-level flag
// is ignored.
func normalizeTask(i int, r rawTask, ids idSet) models.Task {
	t := models.Task{
		ID:                 ids.id(r.ID, "legacy-task", i),
		Title:              str(r.Title, ""),
		Description:        str(r.Description, ""),
		DueDate:            lenientDate(r.DueDate),
		BackgroundImageURL: optional(r.BackgroundImageURL),
		CreatedAt:          str(r.CreatedAt, ""),
		Order:              i,
		UserID:             str(r.UserID, ""),
		UserDisplayName:    str(r.UserDisplayName, ""),
		UserAvatarURL:      str(r.UserAvatarURL, ""),
		AssignedRoles:      []string{},
		Applicants:         []models.Applicant{},
		ChecklistItems:     []models.ChecklistItem{},
	}
	if r.Order != nil && *r.Order >= 0 && !math.IsNaN(*r.Order) && !math.IsInf(*r.Order, 0) {
		t.Order = int(math.Round(*r.Order))
	}

	for _, role := range r.AssignedRoles {
		if role = strings.TrimSpace(role); role != "" {
			t.AssignedRoles = append(t.AssignedRoles, role)
		}
	}

	acceptedRoles := make(map[string]bool)
	for k, a := range r.Applicants {
		status := models.ApplicantStatus(str(a.Status, string(models.ApplicantPending)))
		if !status.Valid() {
			status = models.ApplicantPending
		}
		role := str(a.Role, "")
		if status == models.ApplicantAccepted {
			if acceptedRoles[role] {
				status = models.ApplicantPending
			}
			acceptedRoles[role] = true
		}
		t.Applicants = append(t.Applicants, models.Applicant{
			ID:     ids.id(a.ID, "legacy-applicant", k),
			Name:   str(a.Name, ""),
			Role:   role,
			Status: status,
		})
	}

	for j, ri := range r.ChecklistItems {
		t.ChecklistItems = append(t.ChecklistItems, normalizeItem(j, ri, ids))
	}
	t.Completed = Completed(t.ChecklistItems)
	return t
}

func normalizeItem(j int, r rawItem, ids idSet) models.ChecklistItem {
	item := models.ChecklistItem{
		ID:                    ids.id(r.ID, "legacy-item", j),
		Title:                 str(r.Title, ""),
		Description:           str(r.Description, ""),
		Completed:             r.Completed != nil && *r.Completed,
		DueDate:               lenientDate(r.DueDate),
		AssignedUserID:        optional(r.AssignedUserID),
		AssignedUserName:      optional(r.AssignedUserName),
		AssignedUserAvatarURL: optional(r.AssignedUserAvatarURL),
		ImageURL:              optional(r.ImageURL),
		ImageAIHint:           optional(r.ImageAIHint),
		Label:                 decodeLabels(r.Label),
		Comments:              []models.Comment{},
		ActivityLog:           []models.ActivityLogEntry{},
	}
	if item.AssignedUserID == nil {
		item.AssignedUserName = nil
		item.AssignedUserAvatarURL = nil
	}
	if item.ImageURL == nil {
		item.ImageAIHint = nil
	}

	for k, c := range r.Comments {
		item.Comments = append(item.Comments, models.Comment{
			ID:              ids.id(c.ID, "legacy-comment", k),
			AuthorName:      str(c.AuthorName, ""),
			AuthorAvatarURL: str(c.AuthorAvatarURL, ""),
			Text:            str(c.Text, ""),
			Timestamp:       str(c.Timestamp, ""),
		})
	}
	for k, entry := range r.ActivityLog {
		if entry.ID == "" {
			entry.ID = ids.id(nil, "legacy-log", k)
		}
		item.ActivityLog = append(item.ActivityLog, entry)
	}
	return item
}

// decodeLabels accepts the current array form as well as the older single
// string form. Unknown labels are dropped.
func decodeLabels(raw json.RawMessage) []models.Label {
	out := []models.Label{}
	if len(raw) == 0 {
		return out
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil || single == "" {
			return out
		}
		values = []string{single}
	}

	seen := make(map[models.Label]struct{}, len(values))
	for _, v := range values {
		l := models.Label(strings.ToLower(strings.TrimSpace(v)))
		if !l.Valid() {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
		if len(out) == constants.MaxLabelsPerItem {
			break
		}
	}
	return out
}

// lenientDate keeps a stored date when it is valid ISO-8601 and drops it
// otherwise.
func lenientDate(value *string) *string {
	v, err := NormalizeDate(value)
	if err != nil {
		return nil
	}
	return v
}

func str(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

// EncodeUsers serializes the user collection.
func EncodeUsers(users []models.User) ([]byte, error) {
	if users == nil {
		users = []models.User{}
	}
	return json.Marshal(users)
}

// DecodeUsers parses a stored user collection, defaulting missing fields.
func DecodeUsers(data []byte) ([]models.User, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.User{}, nil
	}

	var raw []rawUser
	if err := json.Unmarshal(data, &raw); err != nil {
		return []models.User{}, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}

	users := make([]models.User, 0, len(raw))
	for i, r := range raw {
		u := models.User{
			ID:           str(r.ID, fmt.Sprintf("legacy-user-%d", i)),
			Username:     str(r.Username, ""),
			PasswordHash: str(r.PasswordHash, ""),
			DisplayName:  str(r.DisplayName, ""),
			AvatarURL:    str(r.AvatarURL, ""),
		}
		if u.DisplayName == "" {
			u.DisplayName = u.Username
		}
		users = append(users, u)
	}
	return users, nil
}
