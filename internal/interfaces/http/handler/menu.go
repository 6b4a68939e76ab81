package handler

import (
	"github.com/gin-gonic/gin"
	menuapp "github.com/restaurant/backend/internal/application/menu"
)

// imageFormField is the multipart field carrying an item image
const imageFormField = "image"

// MenuHandler manages categories and items of the staff menu editor
type MenuHandler struct {
	BaseHandler
	menuService *menuapp.MenuService
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuService *menuapp.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// ListCategories godoc
// @Summary      List categories
// @Tags         menu
// @Produce      json
// @Param        all query bool false "Include inactive categories"
// @Success      200 {object} dto.Response{data=[]menuapp.CategoryResponse}
// @Security     BearerAuth
// @Router       /menu/categories [get]
func (h *MenuHandler) ListCategories(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	categories, err := h.menuService.ListCategories(c.Request.Context(), restaurantID, c.Query("all") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateCategory godoc
// @Summary      Create category
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        request body menuapp.CreateCategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=menuapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/categories [post]
func (h *MenuHandler) CreateCategory(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	var req menuapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.menuService.CreateCategory(c.Request.Context(), restaurantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// UpdateCategory godoc
// @Summary      Update category
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Category ID" format(uuid)
// @Param        request body menuapp.UpdateCategoryRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=menuapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/categories/{id} [put]
func (h *MenuHandler) UpdateCategory(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "category")
	if !ok {
		return
	}

	var req menuapp.UpdateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.menuService.UpdateCategory(c.Request.Context(), restaurantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// DeleteCategory godoc
// @Summary      Delete category
// @Description  Items of the category become uncategorized
// @Tags         menu
// @Param        id path string true "Category ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/categories/{id} [delete]
func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "category")
	if !ok {
		return
	}

	if err := h.menuService.DeleteCategory(c.Request.Context(), restaurantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListItems godoc
// @Summary      List items
// @Tags         menu
// @Produce      json
// @Param        category_id query string false "Category ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]menuapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/items [get]
func (h *MenuHandler) ListItems(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	var filter menuapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, err := h.menuService.ListItems(c.Request.Context(), restaurantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AvailableItems godoc
// @Summary      List available items
// @Tags         menu
// @Produce      json
// @Success      200 {object} dto.Response{data=[]menuapp.ItemResponse}
// @Security     BearerAuth
// @Router       /menu/items/available [get]
func (h *MenuHandler) AvailableItems(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	items, err := h.menuService.Available(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// FullMenu godoc
// @Summary      Full menu
// @Description  Active categories with all their items, available or not
// @Tags         menu
// @Produce      json
// @Success      200 {object} dto.Response{data=menuapp.FullMenuResponse}
// @Security     BearerAuth
// @Router       /menu/full [get]
func (h *MenuHandler) FullMenu(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	full, err := h.menuService.FullMenu(c.Request.Context(), restaurantID, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, full)
}

// GetItem godoc
// @Summary      Get item
// @Tags         menu
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=menuapp.ItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/items/{id} [get]
func (h *MenuHandler) GetItem(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "item")
	if !ok {
		return
	}

	item, err := h.menuService.GetItem(c.Request.Context(), restaurantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateItem godoc
// @Summary      Create item
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        request body menuapp.CreateItemRequest true "Item"
// @Success      201 {object} dto.Response{data=menuapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/items [post]
func (h *MenuHandler) CreateItem(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	var req menuapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.menuService.CreateItem(c.Request.Context(), restaurantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateItem godoc
// @Summary      Update item
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Item ID" format(uuid)
// @Param        request body menuapp.UpdateItemRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=menuapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/items/{id} [put]
func (h *MenuHandler) UpdateItem(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "item")
	if !ok {
		return
	}

	var req menuapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.menuService.UpdateItem(c.Request.Context(), restaurantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// SetAvailability godoc
// @Summary      Toggle availability
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Item ID" format(uuid)
// @Param        request body menuapp.SetAvailabilityRequest  true "Availability"
// @Success      200 {object} dto.Response{data=menuapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/items/{id}/availability [put]
func (h *MenuHandler) SetAvailability(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "item")
	if !ok {
		return
	}

	var req menuapp.SetAvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.menuService.SetAvailability(c.Request.Context(), restaurantID, id, *req.IsAvailable)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteItem godoc
// @Summary      Delete item
// @Description  Past orders keep their own copy of the item
// @Tags         menu
// @Param        id path string true "Item ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/items/{id} [delete]
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "item")
	if !ok {
		return
	}

	if err := h.menuService.DeleteItem(c.Request.Context(), restaurantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadImage godoc
// @Summary      Upload item image
// @Description  Stores the image in object storage and points the item at it. JPEG, PNG, WebP or GIF up to 5 MB.
// @Tags         menu
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Item ID" format(uuid)
// @Param        image formData file   true "Image file"
// @Success      200 {object} dto.Response{data=menuapp.ImageUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /menu/items/{id}/image [post]
func (h *MenuHandler) UploadImage(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "item")
	if !ok {
		return
	}

	header, err := c.FormFile(imageFormField)
	if err != nil {
		h.BadRequest(c, "Image file is required in the \"image\" field")
		return
	}
	if header.Size > menuapp.MaxImageSize {
		h.BadRequest(c, "Image must be at most 5 MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded image")
		return
	}
	defer file.Close()

	resp, err := h.menuService.UploadImage(c.Request.Context(), restaurantID, id, header.Filename, file, header.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
