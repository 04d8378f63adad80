package plans

import (
	"context"
	"sort"
	"sync"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/shopspring/decimal"
)

// Feature keys gated by plan tier.
const (
	FeatureDashboard   = "dashboard"
	FeatureLeads       = "leads"
	FeatureContacts    = "contacts"
	FeatureAccounts    = "accounts"
	FeatureDeals       = "deals"
	FeatureTasks       = "tasks"
	FeatureSettings    = "settings"
	FeatureCampaigns   = "campaigns"
	FeatureQuotes      = "quotes"
	FeatureInvoices    = "invoices"
	FeatureReports     = "reports"
	FeatureProducts    = "products"
	FeatureOrders      = "orders"
	FeatureForecasting = "forecasting"
)

// Defaults returns the canonical catalogue. Each tier is a superset of the
// one below it.
func Defaults() []*models.Plan {
	basic := []string{FeatureDashboard, FeatureLeads, FeatureContacts, FeatureAccounts,
		FeatureDeals, FeatureTasks, FeatureSettings}
	pro := append(append([]string{}, basic...),
		FeatureCampaigns, FeatureQuotes, FeatureInvoices, FeatureReports)
	enterprise := append(append([]string{}, pro...),
		FeatureProducts, FeatureOrders, FeatureForecasting)

	return []*models.Plan{
		{
			Plan:         "basic",
			Label:        "Basic",
			Subtitle:     "For small teams getting started",
			MaxUsers:     5,
			MonthlyPrice: decimal.NewFromInt(29),
			Features:     basic,
			FeatureLabels: []string{
				"Dashboard", "Lead management", "Contacts", "Accounts",
				"Deal pipeline", "Tasks", "Settings",
			},
		},
		{
			Plan:         "pro",
			Label:        "Pro",
			Subtitle:     "For growing sales teams",
			MaxUsers:     25,
			MonthlyPrice: decimal.NewFromInt(99),
			Features:     pro,
			FeatureLabels: []string{
				"Everything in Basic", "Campaigns", "Quotes", "Invoices", "Reports",
			},
		},
		{
			Plan:         "enterprise",
			Label:        "Enterprise",
			Subtitle:     "For large organisations",
			MaxUsers:     999,
			MonthlyPrice: decimal.NewFromInt(299),
			Features:     enterprise,
			FeatureLabels: []string{
				"Everything in Pro", "Products", "Orders", "Forecasting",
			},
		},
	}
}

// Catalog is the read-mostly in-memory view of the plans table. Reads never
// hit the database; Seed and Reload refresh the snapshot.
type Catalog struct {
	repo repositories.PlanRepository

	mu    sync.RWMutex
	plans map[string]*models.Plan
}

func NewCatalog(repo repositories.PlanRepository) *Catalog {
	return &Catalog{repo: repo, plans: make(map[string]*models.Plan)}
}

// Seed writes the default catalogue (skipping rows that already exist) and
// loads the snapshot. Safe to call on every startup.
func (c *Catalog) Seed(ctx context.Context) error {
	if err := c.repo.Seed(ctx, Defaults()); err != nil {
		return err
	}
	return c.Reload(ctx)
}

// Reload replaces the in-memory snapshot from the plans table.
func (c *Catalog) Reload(ctx context.Context) error {
	plans, err := c.repo.List(ctx)
	if err != nil {
		return err
	}
	snapshot := make(map[string]*models.Plan, len(plans))
	for _, p := range plans {
		snapshot[p.Plan] = p
	}
	c.mu.Lock()
	c.plans = snapshot
	c.mu.Unlock()
	return nil
}

// Get returns the catalogue entry for the plan key.
func (c *Catalog) Get(plan string) (*models.Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plans[plan]
	if !ok {
		return nil, common.ErrUnknownPlan
	}
	return p, nil
}

// List returns all plans ordered by monthly price ascending.
func (c *Catalog) List() []*models.Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MonthlyPrice.LessThan(out[j].MonthlyPrice)
	})
	return out
}
