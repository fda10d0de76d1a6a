package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	auction "auction-engine/internal/auctionService"
	model "auction-engine/internal/models"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	CreateLot(ctx context.Context, creator model.User, in auction.LotInput) (auction.LotView, error)
	UpdateLot(ctx context.Context, lotID int64, in auction.LotUpdate) (auction.LotView, error)
	StartLot(ctx context.Context, lotID int64, now time.Time) (auction.LotView, error)
	EndLot(ctx context.Context, lotID int64) (auction.LotView, error)
	DeleteLot(ctx context.Context, lotID int64) error
	ListLots(ctx context.Context, viewer *model.User, status model.LotStatus) ([]auction.LotView, error)
	GetLot(ctx context.Context, viewer *model.User, lotID int64) (auction.LotView, error)
	LotBids(ctx context.Context, viewer *model.User, lotID int64) ([]auction.BidView, error)
	ProjectUser(user model.User) auction.UserView
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// GetCurrentUserHandler handles GET /api/user
func (h *AuctionHandler) GetCurrentUserHandler(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, fmt.Errorf("authentication required"), "authentication required")
		return
	}
	c.JSON(http.StatusOK, h.service.ProjectUser(user))
}

// ListLotsHandler handles GET /api/lots
func (h *AuctionHandler) ListLotsHandler(c *gin.Context) {
	status := model.LotStatus(c.Query("status"))

	lots, err := h.service.ListLots(c.Request.Context(), helpers.Viewer(c), status)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListLotsHandler: error retrieving lots", map[string]any{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lots)
}

// GetLotHandler handles GET /api/lots/:lot_id
func (h *AuctionHandler) GetLotHandler(c *gin.Context) {
	lotID, ok := lotIDParam(c)
	if !ok {
		return
	}

	lot, err := h.service.GetLot(c.Request.Context(), helpers.Viewer(c), lotID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	c.JSON(http.StatusOK, lot)
}

// GetLotBidsHandler handles GET /api/lots/:lot_id/bids
func (h *AuctionHandler) GetLotBidsHandler(c *gin.Context) {
	lotID, ok := lotIDParam(c)
	if !ok {
		return
	}

	bids, err := h.service.LotBids(c.Request.Context(), helpers.Viewer(c), lotID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	if bids == nil {
		bids = []auction.BidView{}
	}
	c.JSON(http.StatusOK, bids)
}

// CreateLotHandler handles POST /api/admin/lots
func (h *AuctionHandler) CreateLotHandler(c *gin.Context) {
	var req helpers.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateLotHandler", err)
		return
	}

	creator, _ := helpers.CurrentUser(c)

	duration := req.DurationMinutes
	if duration == 0 {
		duration = 60
	}

	lot, err := h.service.CreateLot(c.Request.Context(), creator, auction.LotInput{
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		StartingPrice:   req.StartingPrice,
		MinStep:         req.MinStep,
		DurationMinutes: duration,
		VIPOnly:         req.VIPOnly,
		ScheduledStart:  req.ScheduledStart,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateLotHandler: failed to create lot", map[string]any{
			"handler":    "CreateLotHandler",
			"creator_id": creator.ID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, lot, "lot created successfully")
	helpers.LogSuccess("CreateLotHandler", "lot created successfully", map[string]any{
		"lot_id":     lot.ID,
		"title":      lot.Title,
		"creator_id": creator.ID,
	})
}

// UpdateLotHandler handles PUT /api/admin/lots/:lot_id
func (h *AuctionHandler) UpdateLotHandler(c *gin.Context) {
	lotID, ok := lotIDParam(c)
	if !ok {
		return
	}

	var req helpers.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateLotHandler", err)
		return
	}

	lot, err := h.service.UpdateLot(c.Request.Context(), lotID, auction.LotUpdate{
		Title:          req.Title,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		StartingPrice:  req.StartingPrice,
		MinStep:        req.MinStep,
		VIPOnly:        req.VIPOnly,
		ScheduledStart: req.ScheduledStart,
		ClearSchedule:  req.ClearSchedule,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UpdateLotHandler: failed to update lot", map[string]any{"lot_id": lotID, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lot)
	helpers.LogSuccess("UpdateLotHandler", "lot updated successfully", map[string]any{"lot_id": lotID})
}

// StartLotHandler handles POST /api/admin/lots/:lot_id/start
func (h *AuctionHandler) StartLotHandler(c *gin.Context) {
	lotID, ok := lotIDParam(c)
	if !ok {
		return
	}

	lot, err := h.service.StartLot(c.Request.Context(), lotID, time.Now().UTC())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("StartLotHandler: failed to start lot", map[string]any{"lot_id": lotID, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lot)
	helpers.LogSuccess("StartLotHandler", "lot started successfully", map[string]any{
		"lot_id":  lot.ID,
		"ends_at": lot.EndsAt,
	})
}

// EndLotHandler handles POST /api/admin/lots/:lot_id/end
func (h *AuctionHandler) EndLotHandler(c *gin.Context) {
	lotID, ok := lotIDParam(c)
	if !ok {
		return
	}

	lot, err := h.service.EndLot(c.Request.Context(), lotID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("EndLotHandler: failed to end lot", map[string]any{"lot_id": lotID, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lot)
	helpers.LogSuccess("EndLotHandler", "lot ended successfully", map[string]any{
		"lot_id":    lot.ID,
		"winner_id": lot.WinnerID,
	})
}

// DeleteLotHandler handles DELETE /api/admin/lots/:lot_id
func (h *AuctionHandler) DeleteLotHandler(c *gin.Context) {
	lotID, ok := lotIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLot(c.Request.Context(), lotID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("DeleteLotHandler: failed to delete lot", map[string]any{"lot_id": lotID, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
	helpers.LogSuccess("DeleteLotHandler", "lot deleted successfully", map[string]any{"lot_id": lotID})
}

func lotIDParam(c *gin.Context) (int64, bool) {
	lotID, err := strconv.ParseInt(c.Param("lot_id"), 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid lot id: %w", err), "invalid lot id")
		return 0, false
	}
	return lotID, true
}
