package invitations

import "time"

// Invitation asks a designer (by email) to join an agency's team.
type Invitation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AgencyID      uint      `gorm:"not null;index" json:"id_agencia"`
	AgencyName    string    `gorm:"column:nome_agencia;not null" json:"nome_agencia"`
	DesignerEmail string    `gorm:"column:email_designer;not null;index" json:"emailDesigner"`
	CreatedAt     time.Time `json:"created_at"`
}
