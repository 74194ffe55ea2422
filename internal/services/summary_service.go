package services

import (
	"fmt"
	"time"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"

	"gorm.io/gorm"
)

// StatusCount is one slice of the orders-by-status breakdown.
type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

// DailyStat is one day of the recent order series.
type DailyStat struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// CategoryCount pairs a category with how many products it holds.
type CategoryCount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Products int64  `json:"products"`
}

// Summary is the admin dashboard payload.
type Summary struct {
	ProductsCount  int64           `json:"productsCount"`
	OrdersCount    int64           `json:"ordersCount"`
	UsersCount     int64           `json:"usersCount"`
	TotalRevenue   float64         `json:"totalRevenue"`
	OrdersByStatus []StatusCount   `json:"ordersByStatus"`
	OrdersOverTime []DailyStat     `json:"ordersOverTime"`
	LatestOrders   []models.Order  `json:"latestOrders"`
	Categories     []CategoryCount `json:"categories"`
}

// SummaryService aggregates the read-only admin dashboard numbers.
type SummaryService struct {
	db        *gorm.DB
	orderRepo repositories.OrderRepository
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(db *gorm.DB, orderRepo repositories.OrderRepository) *SummaryService {
	return &SummaryService{db: db, orderRepo: orderRepo}
}

// Build computes the dashboard summary, including a fixed 14-day order and
// revenue series with zero-filled days.
func (s *SummaryService) Build() (*Summary, error) {
	summary := &Summary{}

	if err := s.db.Model(&models.Product{}).Count(&summary.ProductsCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := s.db.Model(&models.Order{}).Count(&summary.OrdersCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := s.db.Model(&models.User{}).Count(&summary.UsersCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var revenue struct{ Total float64 }
	err := s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Scan(&revenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	summary.TotalRevenue = revenue.Total

	err = s.db.Model(&models.Order{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&summary.OrdersByStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group orders by status: %w", err)
	}

	series, err := s.ordersOverTime(14)
	if err != nil {
		return nil, err
	}
	summary.OrdersOverTime = series

	latest, _, err := s.orderRepo.List(repositories.OrderFilter{Page: 1, PageSize: 5})
	if err != nil {
		return nil, err
	}
	summary.LatestOrders = latest

	err = s.db.Model(&models.Category{}).
		Select("categories.id, categories.name, COUNT(products.id) AS products").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name").
		Scan(&summary.Categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products per category: %w", err)
	}

	return summary, nil
}

// ordersOverTime buckets the last N days of orders per calendar day.
func (s *SummaryService) ordersOverTime(days int) ([]DailyStat, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(days - 1))

	var recent []models.Order
	err := s.db.Model(&models.Order{}).
		Select("created_at, total").
		Where("created_at >= ?", start).
		Find(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	byDay := make(map[string]*DailyStat, days)
	series := make([]DailyStat, 0, days)
	for d := 0; d < days; d++ {
		key := start.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, DailyStat{Date: key})
	}
	for i := range series {
		byDay[series[i].Date] = &series[i]
	}

	for _, order := range recent {
		key := order.CreatedAt.Format("2006-01-02")
		if stat, ok := byDay[key]; ok {
			stat.Orders++
			stat.Revenue += order.Total
		}
	}

	return series, nil
}
