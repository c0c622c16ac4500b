package domain

import "fmt"

// TaskLink builds the deep link into the web app for a task.
func TaskLink(projectID, taskID int64) string {
	return fmt.Sprintf("/projects/%d/tasks/%d", projectID, taskID)
}

// CommentLink builds the deep link for a specific comment on a task.
func CommentLink(projectID, taskID, commentID int64) string {
	return fmt.Sprintf("%s#comment-%d", TaskLink(projectID, taskID), commentID)
}
