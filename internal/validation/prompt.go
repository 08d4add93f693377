package validation

import (
	"strings"
	"time"
)

const (
	ideaPlaceholder        = "{USER_IDEA}"
	datePlaceholder        = "{CURRENT_DATE}"
	lastUpdatedPlaceholder = "{LAST_UPDATED}"
)

const systemPrompt = "You are an expert startup advisor with 20+ years of experience in venture capital and market research. " +
	"Always respond with valid JSON only, following the exact structure given in the prompt."

const validationPromptTemplate = `
You are a senior startup advisor with two decades of experience across venture capital, market research and business strategy. You have evaluated well over a thousand early-stage ideas.

TASK: Evaluate the business idea below and produce a complete validation report grounded in the most current market information you have.

BUSINESS IDEA: "{USER_IDEA}"

CONTEXT: Today's date is {CURRENT_DATE}. Prefer recent market data, current competitors, recent funding rounds and industry trends.

Cover in particular:
- Current market size and growth
- Competitors and their recent funding
- Industry trends and regulatory changes
- Real pricing and business model examples
- Recent news and market sentiment

OUTPUT FORMAT:
Return your analysis as a single JSON object with exactly this structure. Be specific, quantitative and honest.

{
  "executive_summary": {
    "viability_score": [0-10 rating],
    "verdict": ["STRONG_GO" | "GO" | "CONDITIONAL" | "NO_GO"],
    "key_strengths": [top 3 strengths],
    "key_weaknesses": [top 3 weaknesses],
    "market_opportunity": "[TAM as a currency string]",
    "time_to_market": "[realistic timeline]"
  },
  "market_analysis": {
    "target_market": {
      "demographics": "[target customer profile]",
      "size": [number of potential customers],
      "growth_rate": [annual growth percentage]
    },
    "market_size": {
      "tam": "[Total Addressable Market]",
      "sam": "[Serviceable Addressable Market]",
      "som": "[Serviceable Obtainable Market]"
    },
    "trends": [
      {
        "trend": "[current trend]",
        "impact": ["HIGH" | "MEDIUM" | "LOW"],
        "timeline": "[when it affects the market]",
        "source": "[source domain]"
      }
    ],
    "market_readiness": [0-10 rating],
    "recent_developments": [recent market changes]
  },
  "competitive_analysis": {
    "competitors": [
      {
        "name": "[competitor name]",
        "type": ["DIRECT" | "INDIRECT"],
        "strength": [0-10 rating],
        "market_share": "[percentage if known]",
        "recent_funding": "[latest round if known]",
        "key_features": [current features],
        "weaknesses": [gaps]
      }
    ],
    "competitive_advantages": [advantages over competitors],
    "threats_level": ["LOW" | "MEDIUM" | "HIGH"],
    "market_position": "[positioning]",
    "funding_landscape": "[recent investment activity in this space]"
  },
  "technical_feasibility": {
    "complexity_rating": [0-10 rating],
    "required_technologies": [
      {
        "technology": "[technology]",
        "difficulty": ["EASY" | "MEDIUM" | "HARD"],
        "availability": [true | false],
        "current_trends": "[relevant trends]"
      }
    ],
    "resource_requirements": {
      "team_size": [integer],
      "timeline": "[development timeline]",
      "budget_range": "[estimated budget]"
    },
    "technical_risks": [technical risks]
  },
  "risk_assessment": {
    "overall_risk_level": ["LOW" | "MEDIUM" | "HIGH"],
    "risks": [
      {
        "category": ["MARKET" | "TECHNICAL" | "FINANCIAL" | "OPERATIONAL" | "REGULATORY"],
        "risk": "[specific risk]",
        "probability": [0-100],
        "impact": [0-100],
        "mitigation": "[mitigation strategy]",
        "market_evidence": "[supporting evidence]"
      }
    ],
    "risk_score": [0-100],
    "regulatory_considerations": [regulatory factors]
  },
  "financial_projections": {
    "revenue_model": "[revenue model]",
    "projections": {
      "year1": [revenue in USD],
      "year3": [revenue in USD],
      "year5": [revenue in USD]
    },
    "cost_structure": [
      {
        "category": "[cost category]",
        "percentage": [share of costs],
        "amount": [amount in USD]
      }
    ],
    "break_even_point": "[timeline]",
    "funding_required": [amount in USD],
    "roi": [expected ROI percentage],
    "funding_environment": "[current funding climate]"
  },
  "implementation_roadmap": {
    "phases": [
      {
        "phase": "[phase name]",
        "duration": "[duration]",
        "key_milestones": [milestones],
        "resources": "[resources needed]",
        "budget": [phase budget in USD]
      }
    ],
    "critical_path": [critical path items],
    "success_metrics": [KPIs],
    "next_steps": [immediate actions]
  },
  "recommendations": {
    "decision": ["STRONG_GO" | "GO" | "CONDITIONAL" | "NO_GO"],
    "confidence": [0-100],
    "priority_actions": [top 3 actions],
    "alternative_approaches": [alternative approaches],
    "success_probability": [0-100],
    "key_success_factors": [success factors],
    "market_timing": "[timing assessment]"
  },
  "sources": {
    "sources": [],
    "search_quality": [0-10 rating],
    "last_updated": "{LAST_UPDATED}"
  }
}

RESEARCH FOCUS:
1. Recent market reports and industry analysis
2. Competitor products, funding announcements and launches
3. Industry news and trend reports
4. Regulatory and policy changes
5. Customer behavior studies
6. Technology adoption rates
7. Economic factors affecting the market
8. Comparable successes and failures

GUIDELINES:
- Prefer recent data and cross-check figures
- Be specific with numbers and name sources where possible
- Use real competitors and current market conditions
- Include regulatory and compliance factors
- Account for the current funding climate
- Flag assumptions where data is thin

Respond ONLY with the JSON object, no additional text or formatting.
`

// BuildPrompt renders the validation prompt for idea. The idea is inserted
// verbatim without escaping.
func BuildPrompt(idea string, ctx *ContextFields, now time.Time) string {
	prompt := strings.Replace(validationPromptTemplate, datePlaceholder, now.UTC().Format("2006-01-02"), 1)
	prompt = strings.Replace(prompt, lastUpdatedPlaceholder, now.UTC().Format(time.RFC3339), 1)
	prompt = strings.Replace(prompt, ideaPlaceholder, idea, 1)

	if ctx != nil {
		var b strings.Builder
		b.WriteString(prompt)
		b.WriteString("\n\nADDITIONAL CONTEXT:\n")
		if ctx.Industry != "" {
			b.WriteString("Industry Focus: " + ctx.Industry + "\n")
		}
		if ctx.TargetMarket != "" {
			b.WriteString("Target Market: " + ctx.TargetMarket + "\n")
		}
		if ctx.BudgetRange != "" {
			b.WriteString("Budget Range: " + ctx.BudgetRange + "\n")
		}
		prompt = b.String()
	}
	return prompt
}
