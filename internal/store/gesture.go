package store

import (
	"fmt"

	"github.com/yukikurage/toondo/internal/models"
)

// GestureState is the phase of a drag-and-drop gesture.
type GestureState string

const (
	GestureIdle     GestureState = "idle"
	GesturePicked   GestureState = "picked"
	GestureHovering GestureState = "hovering"
)

// Gesture tracks one in-flight drag of a single user. The zero value is idle.
type Gesture struct {
	state     GestureState
	draggedID string
	overID    string
}

// State returns the current phase.
func (g *Gesture) State() GestureState {
	if g.state == "" {
		return GestureIdle
	}
	return g.state
}

// DraggedID returns the task being dragged, if any.
func (g *Gesture) DraggedID() string { return g.draggedID }

// OverID returns the task currently hovered, if any.
func (g *Gesture) OverID() string { return g.overID }

// PickUp starts dragging taskID. Only the owner may pick a task up.
func (g *Gesture) PickUp(s Snapshot, actor Actor, taskID string) error {
	if err := ownedBy(s, actor, taskID); err != nil {
		return err
	}
	g.state = GesturePicked
	g.draggedID = taskID
	g.overID = ""
	return nil
}

// Hover records targetID as the drop candidate.
func (g *Gesture) Hover(s Snapshot, actor Actor, targetID string) error {
	if g.State() == GestureIdle {
		return ErrNoActiveGesture
	}
	if targetID == g.draggedID {
		return nil
	}
	if err := ownedBy(s, actor, targetID); err != nil {
		return err
	}
	g.state = GestureHovering
	g.overID = targetID
	return nil
}

// Drop finishes the gesture on targetID and returns the reordered snapshot.
// The gesture always ends idle; invalid drops leave s unchanged.
func (g *Gesture) Drop(e *Engine, s Snapshot, actor Actor, targetID string) Snapshot {
	draggedID := g.draggedID
	g.Cancel()

	if draggedID == "" || draggedID == targetID {
		return s
	}
	next, err := e.ReorderTask(s, actor, draggedID, targetID)
	if err != nil {
		return s
	}
	return next
}

// Cancel abandons the gesture without changes.
func (g *Gesture) Cancel() {
	g.state = GestureIdle
	g.draggedID = ""
	g.overID = ""
}

// Leave ends the gesture when the pointer leaves the board.
func (g *Gesture) Leave() {
	g.Cancel()
}

func ownedBy(s Snapshot, actor Actor, taskID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	t, ok := s.Find(taskID)
	if !ok {
		return fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}
	if t.UserID != actor.ID {
		return fmt.Errorf("%w: cannot reorder a task owned by %s", ErrPermissionDenied, ownerName(t))
	}
	return nil
}

func ownerName(t models.Task) string {
	if t.UserDisplayName != "" {
		return t.UserDisplayName
	}
	return "another user"
}
