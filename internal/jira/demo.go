package jira

import (
	"time"

	"github.com/hitoshi/dayboard/internal/model"
)

// demoOpenStatuses はデモデータで「オープン」とみなすステータス。
var demoOpenStatuses = map[string]bool{
	"To Do":       true,
	"In Progress": true,
}

// demoTasks はJira未設定時のデモプロファイル用の固定データセットを返す。
// 実運用のクエリと同じく、オープンなステータスのみをlimit件まで返す。
func demoTasks(now time.Time, limit int) []model.Task {
	all := []model.Task{
		{
			ID:       "PROJ-123",
			Title:    "Implement new user authentication flow",
			Status:   "In Progress",
			Priority: "High",
			Assignee: "John Smith",
			Updated:  now.Add(-24 * time.Hour).UTC().Format(time.RFC3339),
		},
		{
			ID:       "PROJ-124",
			Title:    "Fix payment processing bug",
			Status:   "To Do",
			Priority: "Critical",
			Assignee: "John Smith",
			Updated:  now.Add(-48 * time.Hour).UTC().Format(time.RFC3339),
		},
		{
			ID:       "PROJ-125",
			Title:    "Update documentation for API v2",
			Status:   "To Do",
			Priority: "Medium",
			Assignee: "John Smith",
			Updated:  now.Add(-12 * time.Hour).UTC().Format(time.RFC3339),
		},
		{
			ID:       "PROJ-126",
			Title:    "Optimize database queries",
			Status:   "In Progress",
			Priority: "High",
			Assignee: "John Smith",
			Updated:  now.Add(-6 * time.Hour).UTC().Format(time.RFC3339),
		},
		{
			ID:       "PROJ-127",
			Title:    "Implement dark mode for mobile app",
			Status:   "To Do",
			Priority: "Low",
			Assignee: "John Smith",
			Updated:  now.Add(-72 * time.Hour).UTC().Format(time.RFC3339),
		},
	}

	tasks := make([]model.Task, 0, limit)
	for _, t := range all {
		if !demoOpenStatuses[t.Status] {
			continue
		}
		tasks = append(tasks, t)
		if len(tasks) >= limit {
			break
		}
	}
	return tasks
}
