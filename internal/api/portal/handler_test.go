package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/content"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements only the portal-facing slice of the store; the
// embedded interface panics on anything else, which is exactly what these
// handlers must never call.
type fakeStore struct {
	state.Store

	mu      sync.Mutex
	agency  agencies.Agency
	project projects.Project
	updates []state.PortalUpdate
	fail    error
}

func (f *fakeStore) Agency(ctx context.Context, agencyID uint) (agencies.Agency, error) {
	if agencyID != f.agency.ID {
		return agencies.Agency{}, state.ErrNotFound
	}
	return f.agency, nil
}

func (f *fakeStore) Projects(ctx context.Context, agencyID uint) ([]projects.Project, error) {
	if agencyID != f.agency.ID {
		return nil, nil
	}
	return []projects.Project{f.project.Clone()}, nil
}

func (f *fakeStore) UpdatePortalPiece(ctx context.Context, upd state.PortalUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.updates = append(f.updates, upd)
	return nil
}

func (f *fakeStore) recorded() []state.PortalUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]state.PortalUpdate, len(f.updates))
	copy(out, f.updates)
	return out
}

func piece(id, title string, status content.Status) content.Piece {
	return content.Piece{ID: id, Title: title, Status: status}
}

func newPortalRouter(t *testing.T, store *fakeStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Configure(store, state.NewManager())
	r := gin.New()
	r.GET("/portal/:agencyId/:projectId", GetPortal)
	r.POST("/portal/:agencyId/:projectId/approve", ApproveGroup)
	r.POST("/portal/:agencyId/:projectId/request-adjustment", RequestAdjustment)
	return r
}

func testStore() *fakeStore {
	return &fakeStore{
		agency: agencies.Agency{ID: 3, Name: "Studio Norte", BrandName: "Norte"},
		project: projects.Project{
			ID:       10,
			AgencyID: 3,
			Name:     "Campanha agosto",
			Status:   projects.StatusApproval,
			StaticPieces: content.PieceList{
				piece("s1", "Post institucional", content.StatusPending),
			},
			CarouselPieces: content.PieceList{
				piece("c1", "Carrossel 1: Abertura", content.StatusPending),
				piece("c2", "Carrossel 1: Prova social", content.StatusPending),
				piece("c3", "Carrossel 1: Fechamento", content.StatusPending),
			},
		},
	}
}

func postJSON(r *gin.Engine, url string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetPortalReturnsBrandingAndPieces(t *testing.T) {
	store := testStore()
	r := newPortalRouter(t, store)

	req := httptest.NewRequest(http.MethodGet, "/portal/3/10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Agency  agencies.PublicBranding `json:"agency"`
		Project struct {
			Name   string            `json:"nome"`
			Pieces content.PieceList `json:"pecas_conteudo"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Norte", body.Agency.BrandName)
	assert.Equal(t, "Campanha agosto", body.Project.Name)
	assert.Len(t, body.Project.Pieces, 1)
}

func TestGetPortalUnknownProject(t *testing.T) {
	r := newPortalRouter(t, testStore())

	req := httptest.NewRequest(http.MethodGet, "/portal/3/99", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApproveGroupIssuesOneCallPerPiece(t *testing.T) {
	store := testStore()
	r := newPortalRouter(t, store)

	w := postJSON(r, "/portal/3/10/approve", gin.H{
		"piece_ids": []string{"c1", "c2", "c3"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	updates := store.recorded()
	require.Len(t, updates, 3)
	seen := map[string]bool{}
	for _, u := range updates {
		assert.Equal(t, uint(3), u.AgencyID)
		assert.Equal(t, uint(10), u.ProjectID)
		assert.Equal(t, content.StatusApproved, u.Status)
		seen[u.PieceID] = true
	}
	assert.True(t, seen["c1"] && seen["c2"] && seen["c3"])
}

func TestRequestAdjustmentFeedbackOnFirstPieceOnly(t *testing.T) {
	store := testStore()
	r := newPortalRouter(t, store)

	w := postJSON(r, "/portal/3/10/request-adjustment", gin.H{
		"piece_ids": []string{"c1", "c2", "c3"},
		"feedback":  "Trocar a cor do fundo",
	})
	require.Equal(t, http.StatusOK, w.Code)

	for _, u := range store.recorded() {
		assert.Equal(t, content.StatusAdjust, u.Status)
		if u.PieceID == "c1" {
			assert.Equal(t, "Trocar a cor do fundo", u.Feedback)
		} else {
			assert.Empty(t, u.Feedback)
		}
	}
}

func TestRequestAdjustmentRequiresFeedback(t *testing.T) {
	store := testStore()
	r := newPortalRouter(t, store)

	w := postJSON(r, "/portal/3/10/request-adjustment", gin.H{
		"piece_ids": []string{"s1"},
		"feedback":  "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.recorded())
}

func TestApprovePostedPieceRejectedBeforeAnyWrite(t *testing.T) {
	store := testStore()
	store.project.StaticPieces[0].Status = content.StatusPosted
	r := newPortalRouter(t, store)

	w := postJSON(r, "/portal/3/10/approve", gin.H{
		"piece_ids": []string{"s1"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, store.recorded())
}

func TestGroupActionStoreFailureReported(t *testing.T) {
	store := testStore()
	store.fail = fmt.Errorf("connection reset")
	r := newPortalRouter(t, store)

	w := postJSON(r, "/portal/3/10/approve", gin.H{
		"piece_ids": []string{"c1", "c2"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
