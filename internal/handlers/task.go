package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck-dev/taskdeck/internal/models"
	"github.com/taskdeck-dev/taskdeck/internal/store"
	"github.com/taskdeck-dev/taskdeck/internal/utils"
)

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// UpdateTaskRequest is a partial update; absent fields stay untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	tasks, err := store.Active.TasksByUser(ctx.Request.Context(), userID)

	if err != nil {
		log.Printf("Failed to list tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve tasks"})
		return
	}

	if tasks == nil {
		tasks = []models.Task{}
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks})
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Title is required"})
		return
	}

	task := models.Task{
		UserID:      userID,
		Title:       body.Title,
		Description: body.Description,
	}

	if err := store.Active.CreateTask(ctx.Request.Context(), &task); err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create task"})
		return
	}

	BroadcastRefresh(userID)

	ctx.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	taskID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	patch := store.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		Completed:   body.Completed,
	}

	task, err := store.Active.UpdateTask(ctx.Request.Context(), userID, uint(taskID), patch)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
			return
		}
		log.Printf("Failed to update task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update task"})
		return
	}

	BroadcastRefresh(userID)

	ctx.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	taskID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
		return
	}

	if err := store.Active.DeleteTask(ctx.Request.Context(), userID, uint(taskID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Task not found"})
			return
		}
		log.Printf("Failed to delete task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete task"})
		return
	}

	BroadcastRefresh(userID)

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted successfully"})
}
