package store

import (
	"fmt"
	"strings"

	"github.com/yukikurage/toondo/internal/models"
)

// AddApplicant proposes a candidate for a role on the task.
func (e *Engine) AddApplicant(s Snapshot, actor Actor, taskID, name, role string) (Snapshot, models.Applicant, error) {
	var created models.Applicant
	next, err := e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		n := strings.TrimSpace(name)
		r := strings.TrimSpace(role)
		if n == "" || r == "" {
			return fmt.Errorf("%w: applicant name and role are required", ErrValidationFailed)
		}
		created = models.Applicant{
			ID:     e.NewID(),
			Name:   n,
			Role:   r,
			Status: models.ApplicantPending,
		}
		t.Applicants = append(t.Applicants, created)
		return nil
	})
	if err != nil {
		return s, models.Applicant{}, err
	}
	return next, created, nil
}

// AcceptApplicant accepts an applicant. Any other applicant already accepted for
// the same role goes back to pending.
func (e *Engine) AcceptApplicant(s Snapshot, actor Actor, taskID, applicantID string) (Snapshot, error) {
	return e.mutateApplicant(s, actor, taskID, applicantID, func(t *models.Task, k int) {
		role := t.Applicants[k].Role
		for i := range t.Applicants {
			if i != k && t.Applicants[i].Role == role && t.Applicants[i].Status == models.ApplicantAccepted {
				t.Applicants[i].Status = models.ApplicantPending
			}
		}
		t.Applicants[k].Status = models.ApplicantAccepted
	})
}

// RejectApplicant marks an applicant as rejected.
func (e *Engine) RejectApplicant(s Snapshot, actor Actor, taskID, applicantID string) (Snapshot, error) {
	return e.mutateApplicant(s, actor, taskID, applicantID, func(t *models.Task, k int) {
		t.Applicants[k].Status = models.ApplicantRejected
	})
}

// RemoveApplicant drops an applicant from the task.
func (e *Engine) RemoveApplicant(s Snapshot, actor Actor, taskID, applicantID string) (Snapshot, error) {
	return e.mutateApplicant(s, actor, taskID, applicantID, func(t *models.Task, k int) {
		applicants := make([]models.Applicant, 0, len(t.Applicants)-1)
		applicants = append(applicants, t.Applicants[:k]...)
		t.Applicants = append(applicants, t.Applicants[k+1:]...)
	})
}

func (e *Engine) mutateApplicant(s Snapshot, actor Actor, taskID, applicantID string, fn func(t *models.Task, k int)) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		for k := range t.Applicants {
			if t.Applicants[k].ID == applicantID {
				fn(t, k)
				return nil
			}
		}
		return fmt.Errorf("%w: applicant %s", ErrNotFound, applicantID)
	})
}
