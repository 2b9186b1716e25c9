package projects

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"agency-hub/internal/domain/content"
)

// Status is the 5-stage CRM pipeline. Column values stay in Portuguese, the
// dashboard kanban renders them as-is.
type Status string

const (
	StatusBriefing    Status = "Briefing"
	StatusProducing   Status = "Produzindo"
	StatusApproval    Status = "Aprovação"
	StatusAdjustments Status = "Ajustes"
	StatusPosted      Status = "Postado"
)

// Pipeline lists the kanban columns in board order.
var Pipeline = []Status{StatusBriefing, StatusProducing, StatusApproval, StatusAdjustments, StatusPosted}

func (s Status) Valid() bool {
	for _, v := range Pipeline {
		if s == v {
			return true
		}
	}
	return false
}

type Project struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	AgencyID  uint   `gorm:"not null;index" json:"id_agencia"`
	CreatedBy uint   `gorm:"index" json:"created_by"`
	Name      string `gorm:"not null" json:"nome"`
	Client    string `json:"cliente"`
	Status    Status `gorm:"type:varchar(20);not null;default:'Briefing'" json:"status"`

	DueDate     *time.Time `gorm:"column:data_entrega" json:"data_entrega,omitempty"`
	CompletedAt *time.Time `gorm:"column:data_conclusao" json:"data_conclusao,omitempty"`

	Tags StringList `gorm:"type:jsonb" json:"tags,omitempty"`

	StaticPieces   content.PieceList `gorm:"column:pecas_conteudo;type:jsonb" json:"pecas_conteudo"`
	CarouselPieces content.PieceList `gorm:"column:pecas_carrossel;type:jsonb" json:"pecas_carrossel,omitempty"`

	ToneOfVoice         string     `gorm:"column:tom_de_voz" json:"tom_de_voz"`
	Persona             string     `json:"persona"`
	PublicationCalendar string     `gorm:"column:calendario_publicacao" json:"calendario_publicacao"`
	Segment             string     `json:"segment"`
	Objective           string     `json:"objective"`
	Channels            StringList `gorm:"column:canais;type:jsonb" json:"canais,omitempty"`

	InstagramLink string `gorm:"column:link_instagram" json:"link_instagram,omitempty"`
	DriveLink     string `gorm:"column:link_google_drive" json:"link_google_drive,omitempty"`
	ReferenceLink string `gorm:"column:link_referencia" json:"link_referencia,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone deep-copies the project including both piece lists, so optimistic
// snapshots do not alias the live row.
func (p Project) Clone() Project {
	out := p
	out.StaticPieces = p.StaticPieces.Clone()
	out.CarouselPieces = p.CarouselPieces.Clone()
	out.Tags = p.Tags.Clone()
	out.Channels = p.Channels.Clone()
	if p.DueDate != nil {
		d := *p.DueDate
		out.DueDate = &d
	}
	if p.CompletedAt != nil {
		d := *p.CompletedAt
		out.CompletedAt = &d
	}
	return out
}

// StringList is stored as a jsonb array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for StringList")
}

func (l StringList) Clone() StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	copy(out, l)
	return out
}
