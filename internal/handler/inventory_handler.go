package handler

import (
	"net/http"
	"strconv"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	issuer           *auth.TokenIssuer
}

// NewInventoryHandler sets up the routing dependencies for Inventory endpoints
func NewInventoryHandler(inventoryService service.InventoryService, issuer *auth.TokenIssuer) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// Each verb is gated by its own inventory permission; Admin passes everything.
func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/inventory")
	inventory.Use(middleware.Authenticate(h.issuer))
	{
		inventory.GET("", middleware.RequirePermission(auth.PermViewInventory), h.List)
		inventory.GET("/:id", middleware.RequirePermission(auth.PermViewInventory), h.Get)
		inventory.POST("", middleware.RequirePermission(auth.PermCreateInventory), h.Create)
		inventory.PUT("/:id", middleware.RequirePermission(auth.PermEditInventory), h.Update)
		inventory.DELETE("/:id", middleware.RequirePermission(auth.PermDeleteInventory), h.Delete)
	}
}

// List returns the caller's company inventory
// @Summary      List inventory items
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page}
// @Failure      403    {object}  response.Response
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	items, total, err := h.inventoryService.List(c.Request.Context(), middleware.ContextCompanyID(c), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(items, total, params)))
}

// Get returns a single inventory item within the caller's company
// @Summary      Get inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response{data=service.InventoryItemResponse}
// @Failure      404  {object}  response.Response
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	res, err := h.inventoryService.Get(c.Request.Context(), middleware.ContextCompanyID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Create adds an inventory item to the caller's company
// @Summary      Create inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInventoryItemRequest  true  "Create Item Payload"
// @Success      201      {object}  response.Response{data=service.InventoryItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.inventoryService.Create(c.Request.Context(), middleware.ContextCompanyID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// Update replaces an inventory item's fields
// @Summary      Update inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                                 true  "Item ID"
// @Param        payload  body      service.UpdateInventoryItemRequest  true  "Update Item Payload"
// @Success      204      "No Content"
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	var req service.UpdateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if _, err := h.inventoryService.Update(c.Request.Context(), middleware.ContextCompanyID(c), id, req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes an inventory item from the caller's company
// @Summary      Delete inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Item ID"
// @Success      204  "No Content"
// @Failure      404  {object}  response.Response
// @Router       /inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	if err := h.inventoryService.Delete(c.Request.Context(), middleware.ContextCompanyID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
