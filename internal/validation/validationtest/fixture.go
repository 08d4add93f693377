// Package validationtest provides canned model output for tests of packages
// that consume validation reports.
package validationtest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/joelkehle/justplanit/internal/validation"
)

// ReportJSON is a complete report as a model would return it. Year1, year5 and
// funding_required are given in millions; year3 is already absolute.
const ReportJSON = `{
  "executive_summary": {
    "viability_score": 7,
    "verdict": "GO",
    "key_strengths": ["Recurring demand", "Low capex", "Clear buyer"],
    "key_weaknesses": ["Crowded niche", "Thin margins", "Seasonality"],
    "market_opportunity": "Busy urban professionals want healthy meals without planning.",
    "time_to_market": "6-9 months"
  },
  "market_analysis": {
    "target_market": {"demographics": "Urban professionals 25-45", "size": 12000000, "growth_rate": 8.5},
    "market_size": {"tam": "$20B", "sam": "$4B", "som": "$40M"},
    "trends": [
      {"trend": "Subscription meal kits", "impact": "HIGH", "timeline": "2024-2027", "source": "industry report"}
    ],
    "market_readiness": 8,
    "recent_developments": ["Consolidation among large meal kit providers"]
  },
  "competitive_analysis": {
    "competitors": [
      {"name": "HelloFresh", "type": "DIRECT", "strength": 9, "market_share": "35%", "recent_funding": "Public", "key_features": ["Scale"], "weaknesses": ["Churn"]},
      {"name": "Grocery delivery", "type": "INDIRECT", "strength": 6, "key_features": ["Convenience"], "weaknesses": ["No planning"]}
    ],
    "competitive_advantages": ["Local sourcing"],
    "threats_level": "MEDIUM",
    "market_position": "Premium local niche",
    "funding_landscape": "Cautious but active"
  },
  "technical_feasibility": {
    "complexity_rating": 4,
    "required_technologies": [
      {"technology": "Subscription billing", "difficulty": "EASY", "availability": true, "current_trends": "Usage-based plans"}
    ],
    "resource_requirements": {"team_size": 6, "timeline": "9 months", "budget_range": "$500K-$1M"},
    "technical_risks": ["Logistics software integration"]
  },
  "risk_assessment": {
    "overall_risk_level": "MEDIUM",
    "risks": [
      {"category": "MARKET", "risk": "High churn", "probability": 60, "impact": 70, "mitigation": "Flexible plans", "market_evidence": "Industry churn above 50%"}
    ],
    "risk_score": 55,
    "regulatory_considerations": ["Food safety licensing"]
  },
  "financial_projections": {
    "revenue_model": "Weekly subscription",
    "projections": {"year1": 2, "year3": 5000000, "year5": 12},
    "cost_structure": [{"category": "Ingredients", "percentage": 45, "amount": 900000}],
    "break_even_point": "Month 20",
    "funding_required": 1.5,
    "roi": 180,
    "funding_environment": "Seed rounds available for food tech with traction"
  },
  "implementation_roadmap": {
    "phases": [
      {"phase": "Pilot", "duration": "3 months", "key_milestones": ["100 subscribers"], "resources": "Founders + 2 cooks", "budget": 150000}
    ],
    "critical_path": ["Kitchen lease", "Supplier contracts"],
    "success_metrics": ["Monthly churn under 8%"],
    "next_steps": ["Run a landing page test"]
  },
  "recommendations": {
    "decision": "GO",
    "confidence": 72,
    "priority_actions": ["Validate pricing"],
    "alternative_approaches": ["B2B office catering"],
    "success_probability": 45,
    "key_success_factors": ["Retention"],
    "market_timing": "Good"
  },
  "sources": {
    "sources": [
      {"title": "Meal kit market report", "url": "https://example.com/report", "domain": "example.com", "relevance": "HIGH", "type": "INDUSTRY_REPORT"}
    ],
    "search_quality": 7,
    "last_updated": "2025-01-01T00:00:00Z"
  }
}`

// Report returns ReportJSON decoded and normalized.
func Report() *validation.ValidationReport {
	var r validation.ValidationReport
	if err := json.Unmarshal([]byte(ReportJSON), &r); err != nil {
		panic(err)
	}
	validation.Normalize(&r)
	return &r
}

// Completer is a scripted ChatCompleter that records every request.
type Completer struct {
	mu       sync.Mutex
	Text     string
	Err      error
	Requests []validation.ChatRequest
	// Block, when set, makes Complete wait for it to close or ctx to end.
	Block chan struct{}
}

func (c *Completer) Complete(ctx context.Context, req validation.ChatRequest) (string, error) {
	c.mu.Lock()
	c.Requests = append(c.Requests, req)
	block := c.Block
	text, err := c.Text, c.Err
	c.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, err
}

func (c *Completer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Requests)
}

// Last returns the most recent request, or the zero value if none was made.
func (c *Completer) Last() validation.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Requests) == 0 {
		return validation.ChatRequest{}
	}
	return c.Requests[len(c.Requests)-1]
}
