package pantry

import (
	"net/http"

	"recipe-recommender/internal/api/middleware"
	"recipe-recommender/internal/core/pantry"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SyncRequest 全量同步庫存
type SyncRequest struct {
	Mode  string             `json:"mode" binding:"required"` // 同步模式，目前支持 override
	Items []pantry.ItemInput `json:"items"`
}

// SyncResponse 同步結果
type SyncResponse struct {
	Count int `json:"count"`
}

// ConsumeRequest 記錄一次烹飪消耗
// 二選一：給菜譜 ID 按其食材扣減，或直接給食材列表
type ConsumeRequest struct {
	RecipeID    string   `json:"recipe_id"`
	Ingredients []string `json:"ingredients"`
	Portion     float64  `json:"portion"` // 份數，默認 1
}

// ListResponse 庫存列表
type ListResponse struct {
	Items []pantry.Lot `json:"items"`
	Total int          `json:"total"`
}

// Handler 庫存處理程序
type Handler struct {
	service *pantry.Service
	recipes recipe.Repository
}

// NewHandler 創建庫存處理程序
func NewHandler(service *pantry.Service, recipes recipe.Repository) *Handler {
	return &Handler{
		service: service,
		recipes: recipes,
	}
}

// HandleSync 全量同步用戶庫存
func (h *Handler) HandleSync(c *gin.Context) {
	userID := middleware.UserID(c)

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("庫存同步請求格式無效",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	count, err := h.service.Sync(c.Request.Context(), userID, req.Mode, req.Items)
	if err != nil {
		common.LogError("庫存同步失敗",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to sync pantry",
			"code":  common.ErrPantryStoreError.Code,
		})
		return
	}

	c.JSON(http.StatusOK, SyncResponse{Count: count})
}

// HandleConsume 記錄消耗並按先進先出扣減庫存
func (h *Handler) HandleConsume(c *gin.Context) {
	userID := middleware.UserID(c)

	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("消耗記錄請求格式無效",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ingredients := req.Ingredients
	if req.RecipeID != "" {
		candidate, err := h.recipes.FindByID(c.Request.Context(), req.RecipeID)
		if err != nil {
			common.LogError("查詢菜譜失敗",
				zap.Error(err),
				zap.String("recipe_id", req.RecipeID),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
			return
		}
		if candidate == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Recipe not found",
				"code":  common.ErrRecipeNotFound.Code,
			})
			return
		}
		ingredients = candidate.SearchSet
	}
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either recipe_id or ingredients is required"})
		return
	}

	if err := h.service.Deduct(c.Request.Context(), userID, ingredients, req.Portion); err != nil {
		common.LogError("庫存扣減失敗",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("recipe_id", req.RecipeID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to deduct pantry",
			"code":  common.ErrPantryStoreError.Code,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleList 查詢用戶庫存，支持名稱搜索與分類過濾
func (h *Handler) HandleList(c *gin.Context) {
	userID := middleware.UserID(c)

	items, err := h.service.List(c.Request.Context(), userID, c.Query("search"), c.Query("category"))
	if err != nil {
		common.LogError("查詢庫存失敗",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list pantry",
			"code":  common.ErrPantryStoreError.Code,
		})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: items, Total: len(items)})
}
