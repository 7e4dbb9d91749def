package entities

type Technician struct {
	ID             uint64 `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	PhoneNumber    string `json:"phone_number" db:"phone_number"`
	BranchID       uint64 `json:"branch_id" db:"branch_id"`
	BranchName     string `json:"branch_name" db:"branch_name"`
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
}
