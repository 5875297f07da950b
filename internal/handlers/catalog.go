package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cloudbite/internal/service"
	"cloudbite/internal/storage"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		writeError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, category)
}

func queryBool(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value := raw == "true"
	return &value
}

func (h *CatalogHandler) GetMenuItems(c *gin.Context) {
	filters := storage.MenuItemFilters{
		CategoryID:   c.Query("categoryId"),
		IsVegetarian: queryBool(c, "isVegetarian"),
		IsAvailable:  queryBool(c, "isAvailable"),
		Search:       c.Query("search"),
	}

	items, err := h.catalog.GetMenuItems(c.Request.Context(), filters)
	if err != nil {
		writeError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetMenuItem(c *gin.Context) {
	item, err := h.catalog.GetMenuItemWithCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Menu item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}
