package notifications

import (
	"fmt"
	"time"
)

const (
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeInfo    = "info"
	TypeError   = "error"
)

// DeadlinePhrase marks deadline-approaching notifications; the generator
// checks for it before creating another one for the same project.
const DeadlinePhrase = "vence em breve"

type Notification struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AgencyID uint   `gorm:"not null;index" json:"idAgencia"`
	Message  string `gorm:"not null" json:"message"`
	Type     string `gorm:"type:varchar(10);not null;default:'info'" json:"type"`
	Link     string `json:"link,omitempty"`
	Read     bool   `gorm:"column:lido;not null;default:false" json:"lido"`

	CreatedAt time.Time `json:"created_at"`
}

// ProjectLink is the deep link a notification uses to reach a project page.
func ProjectLink(projectID uint) string {
	return fmt.Sprintf("/projects/%d", projectID)
}

// DeadlineMessage is the fixed deadline-approaching phrase for a project.
func DeadlineMessage(projectName string) string {
	return fmt.Sprintf("⏰ O prazo para o projeto %s %s.", projectName, DeadlinePhrase)
}

// CompletedMessage announces a project that just reached Postado.
func CompletedMessage(projectName string) string {
	return fmt.Sprintf("✅ O projeto %s foi finalizado com sucesso.", projectName)
}
