package discovery

import (
	"net/http"
	"strings"

	"recipe-recommender/internal/api/middleware"
	"recipe-recommender/internal/core/discovery"
	"recipe-recommender/internal/core/ingredient"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecommendRequest 按庫存推薦菜譜
type RecommendRequest struct {
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	SortBy   string                 `json:"sort_by"`
	Filters  discovery.MatchFilters `json:"filters"`
}

// RecommendResponse 推薦結果
type RecommendResponse struct {
	Results []discovery.MatchResult `json:"results"`
	HasMore bool                    `json:"has_more"`
	Page    int                     `json:"page"`
}

// WheelRequest 轉盤分步請求
type WheelRequest struct {
	Step    int    `json:"step" binding:"required"` // 1 菜系 / 2 口味 / 3 候選
	Cuisine string `json:"cuisine"`
	Flavor  string `json:"flavor"`
}

// ShoppingListRequest 生成購物清單
type ShoppingListRequest struct {
	RecipeIDs []string `json:"recipe_ids" binding:"required"`
}

// Handler 推薦發現處理程序
type Handler struct {
	matching *discovery.MatchingService
	wheel    *discovery.WheelEngine
	shopping *discovery.ShoppingService
	subs     *ingredient.SubstitutionTable
}

// NewHandler 創建推薦發現處理程序
func NewHandler(matching *discovery.MatchingService, wheel *discovery.WheelEngine, shopping *discovery.ShoppingService, subs *ingredient.SubstitutionTable) *Handler {
	return &Handler{
		matching: matching,
		wheel:    wheel,
		shopping: shopping,
		subs:     subs,
	}
}

// HandleRecommend 按庫存匹配度推薦菜譜
func (h *Handler) HandleRecommend(c *gin.Context) {
	userID := middleware.UserID(c)

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("推薦請求格式無效",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}

	results, hasMore, err := h.matching.Recommend(c.Request.Context(), userID, req.Page, req.PageSize, req.SortBy, req.Filters)
	if err != nil {
		common.LogError("推薦計算失敗",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute recommendations"})
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Results: results,
		HasMore: hasMore,
		Page:    req.Page,
	})
}

// HandleWheel 轉盤分步接口
func (h *Handler) HandleWheel(c *gin.Context) {
	userID := middleware.UserID(c)

	var req WheelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("轉盤請求格式無效",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	switch req.Step {
	case 1:
		c.JSON(http.StatusOK, gin.H{
			"step":    1,
			"options": h.wheel.Cuisines(),
		})

	case 2:
		if req.Cuisine == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cuisine is required for step 2"})
			return
		}
		options, err := h.wheel.FlavorOptions(c.Request.Context(), req.Cuisine)
		if err != nil {
			common.LogError("口味選項查詢失敗",
				zap.Error(err),
				zap.String("cuisine", req.Cuisine),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load flavor options"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"step":    2,
			"options": options,
		})

	case 3:
		candidates, err := h.wheel.Candidates(c.Request.Context(), userID, req.Cuisine, req.Flavor)
		if err != nil {
			common.LogError("轉盤候選抽樣失敗",
				zap.Error(err),
				zap.String("user_id", userID),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to draw candidates"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"step":       3,
			"candidates": candidates,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Step must be 1, 2 or 3"})
	}
}

// HandleShoppingList 按所選菜譜生成購物清單
func (h *Handler) HandleShoppingList(c *gin.Context) {
	userID := middleware.UserID(c)

	var req ShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("購物清單請求格式無效",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if len(req.RecipeIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one recipe id is required"})
		return
	}

	entries, err := h.shopping.Generate(c.Request.Context(), userID, req.RecipeIDs)
	if err != nil {
		common.LogError("購物清單生成失敗",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate shopping list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": entries,
		"total": len(entries),
	})
}

// HandleSubstitutes 查詢食材替代建議
func (h *Handler) HandleSubstitutes(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ingredient name is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":        name,
		"substitutes": h.subs.SubstitutesFor(name),
	})
}
