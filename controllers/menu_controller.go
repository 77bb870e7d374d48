package controllers

import (
	"net/http"
	"strconv"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	catalogService services.CatalogService
}

func NewMenuController(catalogService services.CatalogService) *MenuController {
	return &MenuController{catalogService: catalogService}
}

// ListFoods handles GET /menu/foods?page=&limit=&keyword=&category_id=&section_id=.
// page is 1-based.
func (mc *MenuController) ListFoods(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		_ = c.Error(apperrors.Invalid(apperrors.ErrBadRequest, "page must be an integer"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		_ = c.Error(apperrors.Invalid(apperrors.ErrBadRequest, "limit must be an integer"))
		return
	}
	categoryID, ok := queryID(c, "category_id")
	if !ok {
		return
	}
	sectionID, ok := queryID(c, "section_id")
	if !ok {
		return
	}

	result, err := mc.catalogService.ListFoods(c.Request.Context(), models.FoodQuery{
		Page:       page,
		Limit:      limit,
		Keyword:    c.Query("keyword"),
		CategoryID: categoryID,
		SectionID:  sectionID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFood handles GET /menu/foods/:id.
func (mc *MenuController) GetFood(c *gin.Context) {
	id, ok := paramID(c, "id", apperrors.ErrInvalidFoodID)
	if !ok {
		return
	}
	food, err := mc.catalogService.GetFood(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func (mc *MenuController) ListCategories(c *gin.Context) {
	categories, err := mc.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (mc *MenuController) ListSections(c *gin.Context) {
	sections, err := mc.catalogService.ListSections(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// ListTables handles GET /menu/tables?startTime=&endTime=.
func (mc *MenuController) ListTables(c *gin.Context) {
	tables, err := mc.catalogService.ListTables(c.Request.Context(), c.Query("startTime"), c.Query("endTime"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (mc *MenuController) ListPayments(c *gin.Context) {
	payments, err := mc.catalogService.ListPayments(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
