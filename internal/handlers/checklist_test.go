package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/toondo/internal/dto"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/services"
)

type ChecklistHandlerTestSuite struct {
	suite.Suite
	env     handlerEnv
	handler *ChecklistHandler
	task    models.Task
	item    models.ChecklistItem
}

func (suite *ChecklistHandlerTestSuite) SetupTest() {
	suite.env = setupHandlerEnv(suite.T())
	suite.handler = NewChecklistHandler(suite.env.tasks)

	ctx := context.Background()
	task, err := suite.env.tasks.CreateTask(ctx, suite.env.alice, services.CreateTaskInput{Title: "Trip"})
	suite.Require().NoError(err)
	item, err := suite.env.tasks.AddItem(ctx, suite.env.alice, task.ID, "Pack bags")
	suite.Require().NoError(err)
	suite.task = task
	suite.item = item
}

func (suite *ChecklistHandlerTestSuite) itemParams() []gin.Param {
	return []gin.Param{idParam(suite.task.ID), {Key: "item_id", Value: suite.item.ID}}
}

func (suite *ChecklistHandlerTestSuite) TestAddItem_Success() {
	c, w := createAuthContext("POST", "/api/tasks/"+suite.task.ID+"/items", map[string]any{"title": "Book hotel"}, suite.env.alice, idParam(suite.task.ID))
	suite.handler.AddItem(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	response := decodeBody[dto.ChecklistItemDTO](suite.T(), w)
	assert.Equal(suite.T(), "Book hotel", response.Title)
	assert.False(suite.T(), response.Completed)
	suite.Require().Len(response.ActivityLog, 1)
	assert.Equal(suite.T(), "Alice", response.ActivityLog[0].ActorName)
}

func (suite *ChecklistHandlerTestSuite) TestAddItem_NotOwner() {
	c, w := createAuthContext("POST", "/api/tasks/"+suite.task.ID+"/items", map[string]any{"title": "Sneaky"}, suite.env.bob, idParam(suite.task.ID))
	suite.handler.AddItem(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "PERMISSION_DENIED", errorCode(suite.T(), w))
}

func (suite *ChecklistHandlerTestSuite) TestToggleItem_CompletesTask() {
	c, w := createAuthContext("POST", "/toggle", nil, suite.env.alice, suite.itemParams()...)
	suite.handler.ToggleItem(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	response := decodeBody[dto.TaskDTO](suite.T(), w)
	suite.Require().Len(response.ChecklistItems, 1)
	assert.True(suite.T(), response.ChecklistItems[0].Completed)
	assert.True(suite.T(), response.Completed)
}

func (suite *ChecklistHandlerTestSuite) TestUpdateItem_AssignAndClear() {
	c, w := createAuthContext("PATCH", "/item", map[string]any{"assigned_user_id": "u-bob", "due_date": "2024-07-01"}, suite.env.alice, suite.itemParams()...)
	suite.handler.UpdateItem(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	item := decodeBody[dto.TaskDTO](suite.T(), w).ChecklistItems[0]
	suite.Require().NotNil(item.AssignedUserName)
	assert.Equal(suite.T(), "Bob", *item.AssignedUserName)
	suite.Require().NotNil(item.DueDate)

	c, w = createAuthContext("PATCH", "/item", map[string]any{"assigned_user_id": nil, "due_date": nil}, suite.env.alice, suite.itemParams()...)
	suite.handler.UpdateItem(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	item = decodeBody[dto.TaskDTO](suite.T(), w).ChecklistItems[0]
	assert.Nil(suite.T(), item.AssignedUserID)
	assert.Nil(suite.T(), item.AssignedUserName)
	assert.Nil(suite.T(), item.DueDate)
}

func (suite *ChecklistHandlerTestSuite) TestUpdateItem_UnknownAssignee() {
	c, w := createAuthContext("PATCH", "/item", map[string]any{"assigned_user_id": "u-nobody"}, suite.env.alice, suite.itemParams()...)
	suite.handler.UpdateItem(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_FAILED", errorCode(suite.T(), w))
}

func (suite *ChecklistHandlerTestSuite) TestUpdateItem_BlankAssigneeClears() {
	bobID := suite.env.bob.ID
	_, err := suite.env.tasks.UpdateItem(context.Background(), suite.env.alice, suite.task.ID, suite.item.ID, services.UpdateItemInput{AssignedUserID: &bobID})
	suite.Require().NoError(err)

	c, w := createAuthContext("PATCH", "/item", map[string]any{"assigned_user_id": "  "}, suite.env.alice, suite.itemParams()...)
	suite.handler.UpdateItem(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	item := decodeBody[dto.TaskDTO](suite.T(), w).ChecklistItems[0]
	assert.Nil(suite.T(), item.AssignedUserID)
	assert.Nil(suite.T(), item.AssignedUserName)
}

func (suite *ChecklistHandlerTestSuite) TestUpdateItem_NotOwnerUnknownAssignee() {
	c, w := createAuthContext("PATCH", "/item", map[string]any{"assigned_user_id": "u-nobody"}, suite.env.bob, suite.itemParams()...)
	suite.handler.UpdateItem(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "PERMISSION_DENIED", errorCode(suite.T(), w))
}

func (suite *ChecklistHandlerTestSuite) TestUpdateItem_MissingItem() {
	params := []gin.Param{idParam(suite.task.ID), {Key: "item_id", Value: "missing"}}
	c, w := createAuthContext("PATCH", "/item", map[string]any{"title": "x"}, suite.env.alice, params...)
	suite.handler.UpdateItem(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ChecklistHandlerTestSuite) TestSetLabels_Normalizes() {
	c, w := createAuthContext("PUT", "/labels", map[string]any{"labels": []string{"Red", "green", "red"}}, suite.env.alice, suite.itemParams()...)
	suite.handler.SetLabels(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	item := decodeBody[dto.TaskDTO](suite.T(), w).ChecklistItems[0]
	assert.Equal(suite.T(), []models.Label{"red", "green"}, item.Labels)
}

func (suite *ChecklistHandlerTestSuite) TestSetLabels_UnknownLabel() {
	c, w := createAuthContext("PUT", "/labels", map[string]any{"labels": []string{"magenta"}}, suite.env.alice, suite.itemParams()...)
	suite.handler.SetLabels(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_FAILED", errorCode(suite.T(), w))
}

func (suite *ChecklistHandlerTestSuite) TestAddComment_Success() {
	c, w := createAuthContext("POST", "/comments", map[string]any{"text": "Don't forget sunscreen"}, suite.env.alice, suite.itemParams()...)
	suite.handler.AddComment(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	response := decodeBody[dto.CommentDTO](suite.T(), w)
	assert.Equal(suite.T(), "Don't forget sunscreen", response.Text)
	assert.Equal(suite.T(), "Alice", response.AuthorName)
}

func (suite *ChecklistHandlerTestSuite) TestDeleteItem_Success() {
	c, w := createAuthContext("DELETE", "/item", nil, suite.env.alice, suite.itemParams()...)
	suite.handler.DeleteItem(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), decodeBody[dto.TaskDTO](suite.T(), w).ChecklistItems)
}

func TestChecklistHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ChecklistHandlerTestSuite))
}
