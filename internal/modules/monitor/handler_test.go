package monitor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"neighborly/internal/domain"
)

func triggerRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/internal/cron"))
	return r
}

func TestHandler_Trigger_DeadlineStopReportsPartialCounts(t *testing.T) {
	service, txns, _, _, tenants := newMonitor()
	due := time.Now().Add(24 * time.Hour)
	txns.On("ListAwaitingReturn", mock.Anything).Return([]domain.Transaction{pickedUpTransaction("tx-1", due)}, nil)
	tenants.On("SlugsByIDs", mock.Anything, mock.Anything).Return(map[string]string{"tenant-1": "riverside"}, nil)

	// A deadline in the past stops the scan before the first
	// transaction; the dispatched-so-far tally still comes back.
	r := triggerRouter(NewHandler(service, -time.Second))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/cron/check-return-dates", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"partial":true`)
	assert.Contains(t, w.Body.String(), `"processed":0`)
}

func TestHandler_Trigger_ScanFailure(t *testing.T) {
	service, txns, _, _, _ := newMonitor()
	txns.On("ListAwaitingReturn", mock.Anything).Return(nil, errors.New("db down"))

	r := triggerRouter(NewHandler(service, time.Minute))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/cron/check-return-dates", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "MONITOR_FAILED")
}

func TestHandler_Trigger_CompleteRun(t *testing.T) {
	service, txns, _, dispatch, tenants := newMonitor()
	due := time.Now().Add(24 * time.Hour)
	txns.On("ListAwaitingReturn", mock.Anything).Return([]domain.Transaction{pickedUpTransaction("tx-1", due)}, nil)
	tenants.On("SlugsByIDs", mock.Anything, mock.Anything).Return(map[string]string{"tenant-1": "riverside"}, nil)
	dispatch.On("Dispatch", mock.Anything, mock.Anything).Return(&domain.Notification{}, true, nil)

	r := triggerRouter(NewHandler(service, time.Minute))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/cron/check-return-dates", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"partial":false`)
	assert.Contains(t, w.Body.String(), `"remindersSent":1`)
}
