// Package api is the HTTP surface the module screens talk to.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ParkLedger/internal/eventloop"
	"ParkLedger/internal/export"
	"ParkLedger/internal/finalize"
	"ParkLedger/internal/model"
	"ParkLedger/internal/recorder"
	"ParkLedger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Desk is the service the handlers call.
type Desk interface {
	WorkingState(ctx context.Context, kind model.ModuleKind) (model.WorkingState, error)
	SaveWorkingState(ctx context.Context, kind model.ModuleKind, state model.WorkingState) error
	Finalize(ctx context.Context, kind model.ModuleKind, state *model.WorkingState) (service.FinalizeResult, error)
	Deposit(ctx context.Context) (model.DepositSummary, error)
	History(ctx context.Context) ([]model.DailyRecord, error)
	Day(ctx context.Context, dateKey string) (model.DailyRecord, bool, error)
	Journal(ctx context.Context, dateKey string) ([]recorder.JournalEntry, error)
	Status(ctx context.Context) (service.Status, error)
}

// Handler serves the desk routes.
type Handler struct {
	desk Desk
}

func NewHandler(desk Desk) *Handler { return &Handler{desk: desk} }

// GetWorking returns the module's snapshot, or its template.
func (h *Handler) GetWorking(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	st, err := h.desk.WorkingState(c.Request.Context(), kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PutWorking replaces the module's snapshot.
func (h *Handler) PutWorking(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	st, ok := bindState(c, kind, false)
	if !ok {
		return
	}
	if err := h.desk.SaveWorkingState(c.Request.Context(), kind, *st); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Finalize commits the module's sheet to today's ledger. An empty body
// finalizes the saved snapshot.
func (h *Handler) Finalize(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	st, ok := bindState(c, kind, true)
	if !ok {
		return
	}
	res, err := h.desk.Finalize(c.Request.Context(), kind, st)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Deposit returns the live versement summary.
func (h *Handler) Deposit(c *gin.Context) {
	sum, err := h.desk.Deposit(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// History lists every ledger day, newest first.
func (h *Handler) History(c *gin.Context) {
	records, err := h.desk.History(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Day returns one ledger day.
func (h *Handler) Day(c *gin.Context) {
	date := c.Param("date")
	rec, found, err := h.desk.Day(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, newError(fmt.Sprintf("aucune donnée pour le %s", date)))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Journal lists every finalize of one day, replaced ones included.
func (h *Handler) Journal(c *gin.Context) {
	entries, err := h.desk.Journal(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []recorder.JournalEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// Status returns the rollover state and the acknowledgement banner.
func (h *Handler) Status(c *gin.Context) {
	st, err := h.desk.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Export streams the ledger history as an Excel workbook.
func (h *Handler) Export(c *gin.Context) {
	records, err := h.desk.History(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, records); err != nil {
		writeError(c, err)
		return
	}
	filename := fmt.Sprintf("journal-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// Health reports that the event loop answers.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if _, err := h.desk.Status(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "loop": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "loop": "running"})
}

func kindParam(c *gin.Context) (model.ModuleKind, bool) {
	kind, err := model.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, newError(err.Error()))
		return "", false
	}
	return kind, true
}

// bindState decodes the request body into a working state. With optional set,
// an empty body yields a nil state.
func bindState(c *gin.Context, kind model.ModuleKind, optional bool) (*model.WorkingState, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, newError("lecture du corps impossible"))
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if optional {
			return nil, true
		}
		c.JSON(http.StatusBadRequest, newError("corps de requête vide"))
		return nil, false
	}

	var req WorkingStateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, newError("JSON invalide: "+err.Error()))
		return nil, false
	}
	st, fields := req.ToState(kind)
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, newValidation(fields))
		return nil, false
	}
	return &st, true
}

func writeError(c *gin.Context, err error) {
	var verr *finalize.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, newValidation(verr.Fields))
	case errors.Is(err, model.ErrUnknownKind):
		c.JSON(http.StatusNotFound, newError(err.Error()))
	case errors.Is(err, model.ErrVariantMismatch):
		c.JSON(http.StatusUnprocessableEntity, newError(err.Error()))
	case errors.Is(err, service.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, newError(err.Error()))
	case errors.Is(err, eventloop.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, newError("service indisponible"))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, newError("erreur interne"))
	}
}
