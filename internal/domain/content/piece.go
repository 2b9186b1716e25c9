package content

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Status of a single content piece in the client approval flow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusAdjust   Status = "adjust"
	StatusPosted   Status = "posted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusAdjust, StatusPosted:
		return true
	}
	return false
}

// Piece is one creative asset: a static post or one slide of a carousel.
// Feedback is only meaningful while Status is "adjust".
type Piece struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	CTA         string `json:"cta"`
	Caption     string `json:"caption"`
	ImagePrompt string `json:"imagePrompt"`
	Status      Status `json:"status"`
	Feedback    string `json:"feedback,omitempty"`
	FinalArtURL string `json:"finalArtUrl,omitempty"`
}

// NewPiece returns a pending piece with a fresh identifier.
func NewPiece(title, subtitle, cta, caption, imagePrompt string) Piece {
	return Piece{
		ID:          uuid.NewString(),
		Title:       title,
		Subtitle:    subtitle,
		CTA:         cta,
		Caption:     caption,
		ImagePrompt: imagePrompt,
		Status:      StatusPending,
	}
}

// PieceList is stored as a single jsonb column on the project row.
type PieceList []Piece

func (l PieceList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *PieceList) Scan(value interface{}) error {
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
	return errors.New("unsupported type for PieceList")
}

// Clone returns a deep copy, the snapshot the optimistic engine rolls back to.
func (l PieceList) Clone() PieceList {
	if l == nil {
		return nil
	}
	out := make(PieceList, len(l))
	copy(out, l)
	return out
}

func (l PieceList) Find(id string) (Piece, bool) {
	for _, p := range l {
		if p.ID == id {
			return p, true
		}
	}
	return Piece{}, false
}

func (l PieceList) index(id string) int {
	for i, p := range l {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Replace swaps the piece with the same ID, returning false when absent.
func (l PieceList) Replace(p Piece) bool {
	if i := l.index(p.ID); i >= 0 {
		l[i] = p
		return true
	}
	return false
}

func (p Piece) String() string {
	return fmt.Sprintf("piece %s [%s]", p.ID, p.Status)
}
