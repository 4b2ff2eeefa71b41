package entity

// Prompt is a reusable text template. Locked prompts can only be read or
// have their lock flag flipped.
type Prompt struct {
	ID     int    `gorm:"primaryKey;autoIncrement"`
	Title  string `gorm:"not null"`
	Body   string `gorm:"not null"`
	Tags   string `gorm:"not null;default:''"`
	Locked bool   `gorm:"not null;default:false"`
}

// TableName keeps the table name stable across gorm naming strategies,
// since exported dumps and copies refer to it directly.
func (Prompt) TableName() string {
	return "prompts"
}
