// Package model はドメインモデルを定義する。
package model

// Task は課題トラッカーから正規化されたタスクを表す。
// アダプタがリクエストごとに構築する値オブジェクトで、永続化されない。
type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Assignee string `json:"assignee"`
	Updated  string `json:"updated"` // ISO-8601
}

// Email はメールサービスから正規化されたメールを表す。
type Email struct {
	ID         string `json:"id"`
	Subject    string `json:"subject"`
	Sender     string `json:"sender"`
	ReceivedAt string `json:"receivedAt"` // ISO-8601
	Read       bool   `json:"read"`
	Snippet    string `json:"snippet"`
}

// Event はカレンダーサービスから正規化された予定を表す。
// Attendeesは出席者メールアドレスの順序付きリスト。
type Event struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location"`
	Attendees []string `json:"attendees"`
}
