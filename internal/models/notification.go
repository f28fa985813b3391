package models

// Notification 任务分配通知，每个被选中的成员一条
type Notification struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	TaskID  uint   `json:"task_id"`
	Message string `json:"message"`
}

// All 返回需要 AutoMigrate 的全部模型
func All() []any {
	return []any{
		&User{},
		&Group{},
		&GroupMember{},
		&Task{},
		&Comment{},
		&Invitation{},
	}
}
