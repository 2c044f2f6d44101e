package handler

import (
	"portfolio-go/internal/service"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler 提供站点展示内容的只读接口。
type PortfolioHandler struct {
	portfolioService service.PortfolioService
}

func NewPortfolioHandler(portfolioService service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// GetPortfolio 返回完整的展示内容。
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	success(c, "success", h.portfolioService.Portfolio())
}

func (h *PortfolioHandler) ListProjects(c *gin.Context) {
	success(c, "success", h.portfolioService.Projects())
}
