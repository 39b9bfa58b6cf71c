package dto

import (
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/utils"
)

// ActivityLogEntryDTO represents one activity entry in API responses
type ActivityLogEntryDTO struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	ActorName string `json:"actor_name"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID              string `json:"id"`
	AuthorName      string `json:"author_name"`
	AuthorAvatarURL string `json:"author_avatar_url"`
	Text            string `json:"text"`
	Timestamp       string `json:"timestamp"`
}

// ChecklistItemDTO represents a checklist item in API responses
type ChecklistItemDTO struct {
	ID                    string                `json:"id"`
	Title                 string                `json:"title"`
	Description           string                `json:"description"`
	Completed             bool                  `json:"completed"`
	DueDate               *string               `json:"due_date"`
	AssignedUserID        *string               `json:"assigned_user_id"`
	AssignedUserName      *string               `json:"assigned_user_name"`
	AssignedUserAvatarURL *string               `json:"assigned_user_avatar_url"`
	ImageURL              *string               `json:"image_url"`
	ImageAIHint           *string               `json:"image_ai_hint"`
	Labels                []models.Label        `json:"labels"`
	Comments              []CommentDTO          `json:"comments"`
	ActivityLog           []ActivityLogEntryDTO `json:"activity_log"`
}

// ApplicantDTO represents an applicant in API responses
type ApplicantDTO struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Role   string                 `json:"role"`
	Status models.ApplicantStatus `json:"status"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Completed          bool               `json:"completed"`
	DueDate            *string            `json:"due_date"`
	BackgroundImageURL *string            `json:"background_image_url"`
	CreatedAt          string             `json:"created_at"`
	Order              int                `json:"order"`
	UserID             string             `json:"user_id"`
	UserDisplayName    string             `json:"user_display_name"`
	UserAvatarURL      string             `json:"user_avatar_url"`
	IsOwner            bool               `json:"is_owner"`
	AssignedRoles      []string           `json:"assigned_roles"`
	Applicants         []ApplicantDTO     `json:"applicants"`
	ChecklistItems     []ChecklistItemDTO `json:"checklist_items"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO as seen by viewerID
func ToTaskDTO(task models.Task, viewerID string) TaskDTO {
	dto := TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		Completed:          task.Completed,
		DueDate:            task.DueDate,
		BackgroundImageURL: task.BackgroundImageURL,
		CreatedAt:          task.CreatedAt,
		Order:              task.Order,
		UserID:             task.UserID,
		UserDisplayName:    task.UserDisplayName,
		UserAvatarURL:      task.UserAvatarURL,
		IsOwner:            task.UserID == viewerID,
		AssignedRoles:      append([]string{}, task.AssignedRoles...),
		Applicants:         make([]ApplicantDTO, 0, len(task.Applicants)),
		ChecklistItems:     make([]ChecklistItemDTO, 0, len(task.ChecklistItems)),
	}
	for _, a := range task.Applicants {
		dto.Applicants = append(dto.Applicants, ToApplicantDTO(a))
	}
	for _, item := range task.ChecklistItems {
		dto.ChecklistItems = append(dto.ChecklistItems, ToChecklistItemDTO(item))
	}
	return dto
}

// ToTaskDTOs converts a list of tasks
func ToTaskDTOs(tasks []models.Task, viewerID string) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskDTO(t, viewerID))
	}
	return out
}

// ToApplicantDTO converts an Applicant model to ApplicantDTO
func ToApplicantDTO(a models.Applicant) ApplicantDTO {
	return ApplicantDTO{
		ID:     a.ID,
		Name:   a.Name,
		Role:   a.Role,
		Status: a.Status,
	}
}

// ToChecklistItemDTO converts a ChecklistItem model to ChecklistItemDTO
func ToChecklistItemDTO(item models.ChecklistItem) ChecklistItemDTO {
	dto := ChecklistItemDTO{
		ID:                    item.ID,
		Title:                 item.Title,
		Description:           item.Description,
		Completed:             item.Completed,
		DueDate:               item.DueDate,
		AssignedUserID:        item.AssignedUserID,
		AssignedUserName:      item.AssignedUserName,
		AssignedUserAvatarURL: item.AssignedUserAvatarURL,
		ImageURL:              item.ImageURL,
		ImageAIHint:           item.ImageAIHint,
		Labels:                append([]models.Label{}, item.Label...),
		Comments:              make([]CommentDTO, 0, len(item.Comments)),
		ActivityLog:           make([]ActivityLogEntryDTO, 0, len(item.ActivityLog)),
	}
	for _, c := range item.Comments {
		dto.Comments = append(dto.Comments, ToCommentDTO(c))
	}
	for _, e := range item.ActivityLog {
		dto.ActivityLog = append(dto.ActivityLog, ActivityLogEntryDTO{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			ActorName: e.ActorName,
			Action:    e.Action,
			Details:   e.Details,
		})
	}
	return dto
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(c models.Comment) CommentDTO {
	return CommentDTO{
		ID:              c.ID,
		AuthorName:      c.AuthorName,
		AuthorAvatarURL: c.AuthorAvatarURL,
		Text:            c.Text,
		Timestamp:       c.Timestamp,
	}
}
