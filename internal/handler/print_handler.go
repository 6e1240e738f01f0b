// internal/handler/print_handler.go
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/service"
	"print-service/internal/utils"
)

// PrintHandler handles print API requests
type PrintHandler struct {
	printService *service.PrintService
	wsHandler    *WebSocketHandler
	exportDir    string
	logger       *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(printService *service.PrintService, wsHandler *WebSocketHandler, exportDir string, logger *zap.Logger) *PrintHandler {
	return &PrintHandler{
		printService: printService,
		wsHandler:    wsHandler,
		exportDir:    exportDir,
		logger:       utils.NewServiceLogger(logger, "print-handler"),
	}
}

// RegisterRoutes registers print API routes
func (h *PrintHandler) RegisterRoutes(router *gin.RouterGroup) {
	cafes := router.Group("/cafes/:cafe_id")
	{
		cafes.POST("/print/kot", h.PrintKOT)
		cafes.POST("/print/receipt", h.PrintReceipt)
		cafes.POST("/print/both", h.PrintBoth)
		cafes.POST("/print/test", h.TestPrint)

		cafes.GET("/printer-profiles", h.ListProfiles)
		cafes.POST("/printer-profiles/invalidate", h.InvalidateProfiles)
	}

	router.POST("/printer-profiles/invalidate-all", h.InvalidateAllProfiles)
	router.GET("/exports/:filename", h.DownloadExport)
}

// cafeID parses and validates the cafe_id path parameter
func (h *PrintHandler) cafeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("cafe_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid cafe ID", err)
		return uuid.Nil, false
	}
	return id, true
}

// bindReceipt decodes the receipt payload from the request body
func (h *PrintHandler) bindReceipt(c *gin.Context) (*model.ReceiptData, bool) {
	var receipt model.ReceiptData
	if err := c.ShouldBindJSON(&receipt); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	return &receipt, true
}

// PrintKOT prints the kitchen order ticket for an order
func (h *PrintHandler) PrintKOT(c *gin.Context) {
	h.printOne(c, model.DocTypeKOT)
}

// PrintReceipt prints the customer receipt for an order
func (h *PrintHandler) PrintReceipt(c *gin.Context) {
	h.printOne(c, model.DocTypeReceipt)
}

// printOne runs a single-document print request end to end
func (h *PrintHandler) printOne(c *gin.Context, doc model.DocType) {
	cafeID, ok := h.cafeID(c)
	if !ok {
		return
	}

	receipt, ok := h.bindReceipt(c)
	if !ok {
		return
	}

	var result model.PrintResult
	var err error
	if doc == model.DocTypeKOT {
		result, err = h.printService.PrintKOT(c.Request.Context(), cafeID, receipt)
	} else {
		result, err = h.printService.PrintReceipt(c.Request.Context(), cafeID, receipt)
	}
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "Receipt validation failed", err)
		return
	}

	h.wsHandler.BroadcastPrintResult(cafeID, doc, result)

	if !result.Success {
		// The result carries the per-transport reasons; the operator needs
		// them to fix whatever is wrong with the printer setup.
		utils.ErrorResponseWithData(c, http.StatusBadGateway, "Print dispatch failed", errors.New(result.Error), result)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Document printed", result)
}

// PrintBoth prints the KOT and the receipt for one order
func (h *PrintHandler) PrintBoth(c *gin.Context) {
	cafeID, ok := h.cafeID(c)
	if !ok {
		return
	}

	receipt, ok := h.bindReceipt(c)
	if !ok {
		return
	}

	result, err := h.printService.PrintBoth(c.Request.Context(), cafeID, receipt)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "Receipt validation failed", err)
		return
	}

	h.wsHandler.BroadcastPrintResult(cafeID, model.DocTypeKOT, result.KOT)
	h.wsHandler.BroadcastPrintResult(cafeID, model.DocTypeReceipt, result.Receipt)

	switch {
	case result.Success:
		utils.SuccessResponse(c, http.StatusOK, "Both documents printed", result)
	case result.Partial:
		// 207: one document printed, the other did not
		utils.SuccessResponse(c, http.StatusMultiStatus, "Partial print", result)
	default:
		reasons := fmt.Errorf("kot: %s; receipt: %s", result.KOT.Error, result.Receipt.Error)
		utils.ErrorResponseWithData(c, http.StatusBadGateway, "Print dispatch failed", reasons, result)
	}
}

// TestPrint sends a synthetic labeled receipt through the full pipeline
func (h *PrintHandler) TestPrint(c *gin.Context) {
	cafeID, ok := h.cafeID(c)
	if !ok {
		return
	}

	result := h.printService.TestPrint(c.Request.Context(), cafeID)
	h.wsHandler.BroadcastPrintResult(cafeID, model.DocTypeReceipt, result)

	if !result.Success {
		utils.ErrorResponseWithData(c, http.StatusBadGateway, "Test print failed", errors.New(result.Error), result)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Test print dispatched", result)
}

// ListProfiles returns the printer profiles registered for a cafe
func (h *PrintHandler) ListProfiles(c *gin.Context) {
	cafeID, ok := h.cafeID(c)
	if !ok {
		return
	}

	profiles, err := h.printService.ListProfiles(c.Request.Context(), cafeID)
	if err != nil {
		h.logger.Error("Failed to list printer profiles", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list printer profiles", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer profiles retrieved", gin.H{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// InvalidateProfiles drops the cached profiles for a cafe
func (h *PrintHandler) InvalidateProfiles(c *gin.Context) {
	cafeID, ok := h.cafeID(c)
	if !ok {
		return
	}

	h.printService.InvalidateProfiles(cafeID)
	h.wsHandler.BroadcastProfileInvalidated(cafeID)

	utils.SuccessResponse(c, http.StatusOK, "Printer profile cache invalidated", nil)
}

// InvalidateAllProfiles empties the whole profile cache
func (h *PrintHandler) InvalidateAllProfiles(c *gin.Context) {
	h.printService.InvalidateAllProfiles()
	utils.SuccessResponse(c, http.StatusOK, "Printer profile cache fully invalidated", nil)
}

// DownloadExport serves a .prn artifact produced by the file-export fallback
func (h *PrintHandler) DownloadExport(c *gin.Context) {
	filename := c.Param("filename")

	// Exports are flat files; reject anything that looks like a path
	if filename == "" || strings.ContainsAny(filename, "/\\") || filename != filepath.Base(filename) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid export filename", nil)
		return
	}
	if !strings.HasSuffix(filename, ".prn") {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid export filename", nil)
		return
	}

	c.FileAttachment(filepath.Join(h.exportDir, filename), filename)
}
