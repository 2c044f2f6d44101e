package service

import "portfolio-go/internal/model"

// PortfolioService 提供站点展示的只读内容。
type PortfolioService interface {
	Portfolio() model.Portfolio
	Projects() []model.Project
}

type portfolioService struct {
	portfolio model.Portfolio
}

// NewPortfolioService 使用启动时加载的内容创建 PortfolioService。
func NewPortfolioService(portfolio model.Portfolio) PortfolioService {
	return &portfolioService{portfolio: portfolio}
}

func (s *portfolioService) Portfolio() model.Portfolio {
	return s.portfolio
}

// Projects 总是返回非 nil 的切片，便于序列化为 JSON 数组。
func (s *portfolioService) Projects() []model.Project {
	if s.portfolio.Projects == nil {
		return []model.Project{}
	}
	return s.portfolio.Projects
}
