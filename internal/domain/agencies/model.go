package agencies

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Agency is the tenant. Every other collection is scoped to one agency id.
type Agency struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OwnerID   uint     `gorm:"not null;index" json:"ownerId"`
	Name      string   `gorm:"not null" json:"name"`
	BrandName string   `json:"brandName"`
	BrandLogo string   `json:"brandLogo"`
	Team      TeamList `gorm:"type:jsonb" json:"team"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicBranding is the slice of the agency visible on the client portal.
type PublicBranding struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	BrandName string `json:"brandName"`
	BrandLogo string `json:"brandLogo"`
}

func (a Agency) Branding() PublicBranding {
	return PublicBranding{ID: a.ID, Name: a.Name, BrandName: a.BrandName, BrandLogo: a.BrandLogo}
}

// TeamList holds the designer emails attached to the agency, as a jsonb array.
type TeamList []string

func (l TeamList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *TeamList) Scan(value interface{}) error {
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
	return errors.New("unsupported type for TeamList")
}

func (l TeamList) Contains(email string) bool {
	for _, e := range l {
		if e == email {
			return true
		}
	}
	return false
}

// Without returns the team minus one email.
func (l TeamList) Without(email string) TeamList {
	out := make(TeamList, 0, len(l))
	for _, e := range l {
		if e != email {
			out = append(out, e)
		}
	}
	return out
}
