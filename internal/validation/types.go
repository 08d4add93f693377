package validation

import "time"

const (
	DefaultModel       = "deepseek/deepseek-chat-v3.1:free"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 8000
	DirectMaxTokens    = 6000

	// MillionsThreshold is the raw value below which a projection is read as millions.
	MillionsThreshold = 1000
)

type Verdict string

const (
	VerdictStrongGo    Verdict = "STRONG_GO"
	VerdictGo          Verdict = "GO"
	VerdictConditional Verdict = "CONDITIONAL"
	VerdictNoGo        Verdict = "NO_GO"
)

type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

type CompetitorType string

const (
	CompetitorDirect   CompetitorType = "DIRECT"
	CompetitorIndirect CompetitorType = "INDIRECT"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type RiskCategory string

const (
	RiskMarket      RiskCategory = "MARKET"
	RiskTechnical   RiskCategory = "TECHNICAL"
	RiskFinancial   RiskCategory = "FINANCIAL"
	RiskOperational RiskCategory = "OPERATIONAL"
	RiskRegulatory  RiskCategory = "REGULATORY"
)

type SourceType string

const (
	SourceMarketData     SourceType = "MARKET_DATA"
	SourceCompetitor     SourceType = "COMPETITOR"
	SourceIndustryReport SourceType = "INDUSTRY_REPORT"
	SourceNews           SourceType = "NEWS"
)

// Section keys, in report order. A report is only valid when every one is present and non-null.
const (
	SectionExecutiveSummary      = "executive_summary"
	SectionMarketAnalysis        = "market_analysis"
	SectionCompetitiveAnalysis   = "competitive_analysis"
	SectionTechnicalFeasibility  = "technical_feasibility"
	SectionRiskAssessment        = "risk_assessment"
	SectionFinancialProjections  = "financial_projections"
	SectionImplementationRoadmap = "implementation_roadmap"
	SectionRecommendations       = "recommendations"
	SectionSources               = "sources"
)

var RequiredSections = []string{
	SectionExecutiveSummary,
	SectionMarketAnalysis,
	SectionCompetitiveAnalysis,
	SectionTechnicalFeasibility,
	SectionRiskAssessment,
	SectionFinancialProjections,
	SectionImplementationRoadmap,
	SectionRecommendations,
	SectionSources,
}

type ContextFields struct {
	Industry     string `json:"industry,omitempty"`
	TargetMarket string `json:"target_market,omitempty"`
	BudgetRange  string `json:"budget_range,omitempty"`
}

type ValidationRequest struct {
	Idea    string         `json:"idea"`
	Context *ContextFields `json:"context,omitempty"`
}

type Result struct {
	Report         *ValidationReport
	ProcessingTime time.Duration
}

type ExecutiveSummary struct {
	ViabilityScore    Number   `json:"viability_score"` // 0-10
	Verdict           Verdict  `json:"verdict"`
	KeyStrengths      []string `json:"key_strengths"`
	KeyWeaknesses     []string `json:"key_weaknesses"`
	MarketOpportunity string   `json:"market_opportunity"`
	TimeToMarket      string   `json:"time_to_market"`
}

type TargetMarket struct {
	Demographics string `json:"demographics"`
	Size         Number `json:"size"`
	GrowthRate   Number `json:"growth_rate"`
}

type MarketSize struct {
	TAM string `json:"tam"`
	SAM string `json:"sam"`
	SOM string `json:"som"`
}

type Trend struct {
	Trend    string `json:"trend"`
	Impact   Level  `json:"impact"`
	Timeline string `json:"timeline"`
	Source   string `json:"source,omitempty"`
}

type MarketAnalysis struct {
	TargetMarket       TargetMarket `json:"target_market"`
	MarketSize         MarketSize   `json:"market_size"`
	Trends             []Trend      `json:"trends"`
	MarketReadiness    Number       `json:"market_readiness"` // 0-10
	RecentDevelopments []string     `json:"recent_developments"`
}

type Competitor struct {
	Name          string         `json:"name"`
	Type          CompetitorType `json:"type"`
	Strength      Number         `json:"strength"` // 0-10
	MarketShare   string         `json:"market_share,omitempty"`
	RecentFunding string         `json:"recent_funding,omitempty"`
	KeyFeatures   []string       `json:"key_features"`
	Weaknesses    []string       `json:"weaknesses"`
}

type CompetitiveAnalysis struct {
	Competitors           []Competitor `json:"competitors"`
	CompetitiveAdvantages []string     `json:"competitive_advantages"`
	ThreatsLevel          Level        `json:"threats_level"`
	MarketPosition        string       `json:"market_position"`
	FundingLandscape      string       `json:"funding_landscape"`
}

type Technology struct {
	Technology    string     `json:"technology"`
	Difficulty    Difficulty `json:"difficulty"`
	Availability  bool       `json:"availability"`
	CurrentTrends string     `json:"current_trends,omitempty"`
}

type ResourceRequirements struct {
	TeamSize    Number `json:"team_size"`
	Timeline    string `json:"timeline"`
	BudgetRange string `json:"budget_range"`
}

type TechnicalFeasibility struct {
	ComplexityRating     Number               `json:"complexity_rating"` // 0-10
	RequiredTechnologies []Technology         `json:"required_technologies"`
	ResourceRequirements ResourceRequirements `json:"resource_requirements"`
	TechnicalRisks       []string             `json:"technical_risks"`
}

type Risk struct {
	Category       RiskCategory `json:"category"`
	Risk           string       `json:"risk"`
	Probability    Number       `json:"probability"` // 0-100
	Impact         Number       `json:"impact"`      // 0-100
	Mitigation     string       `json:"mitigation"`
	MarketEvidence string       `json:"market_evidence,omitempty"`
}

type RiskAssessment struct {
	OverallRiskLevel         Level    `json:"overall_risk_level"`
	Risks                    []Risk   `json:"risks"`
	RiskScore                Number   `json:"risk_score"` // 0-100
	RegulatoryConsiderations []string `json:"regulatory_considerations"`
}

type Projections struct {
	Year1 Number `json:"year1"`
	Year3 Number `json:"year3"`
	Year5 Number `json:"year5"`
}

type CostItem struct {
	Category   string `json:"category"`
	Percentage Number `json:"percentage"`
	Amount     Number `json:"amount"`
}

type FinancialProjections struct {
	RevenueModel       string      `json:"revenue_model"`
	Projections        Projections `json:"projections"`
	CostStructure      []CostItem  `json:"cost_structure"`
	BreakEvenPoint     string      `json:"break_even_point"`
	FundingRequired    Number      `json:"funding_required"`
	ROI                Number      `json:"roi"`
	FundingEnvironment string      `json:"funding_environment"`
}

type Phase struct {
	Phase         string   `json:"phase"`
	Duration      string   `json:"duration"`
	KeyMilestones []string `json:"key_milestones"`
	Resources     string   `json:"resources"`
	Budget        Number   `json:"budget"`
}

type ImplementationRoadmap struct {
	Phases         []Phase  `json:"phases"`
	CriticalPath   []string `json:"critical_path"`
	SuccessMetrics []string `json:"success_metrics"`
	NextSteps      []string `json:"next_steps"`
}

type Recommendations struct {
	Decision              Verdict  `json:"decision"`
	Confidence            Number   `json:"confidence"` // 0-100
	PriorityActions       []string `json:"priority_actions"`
	AlternativeApproaches []string `json:"alternative_approaches"`
	SuccessProbability    Number   `json:"success_probability"` // 0-100
	KeySuccessFactors     []string `json:"key_success_factors"`
	MarketTiming          string   `json:"market_timing"`
}

type Source struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Domain    string     `json:"domain"`
	Content   string     `json:"content,omitempty"`
	Relevance Level      `json:"relevance"`
	Type      SourceType `json:"type"`
}

type Sources struct {
	Sources       []Source `json:"sources"`
	SearchQuality Number   `json:"search_quality"` // 0-10
	LastUpdated   string   `json:"last_updated"`
}

// ValidationReport is the nine-section report for one idea. Pointer sections
// are nil only when decoded through AnalyzeIdeaDirect, which skips validation.
type ValidationReport struct {
	ExecutiveSummary      *ExecutiveSummary      `json:"executive_summary"`
	MarketAnalysis        *MarketAnalysis        `json:"market_analysis"`
	CompetitiveAnalysis   *CompetitiveAnalysis   `json:"competitive_analysis"`
	TechnicalFeasibility  *TechnicalFeasibility  `json:"technical_feasibility"`
	RiskAssessment        *RiskAssessment        `json:"risk_assessment"`
	FinancialProjections  *FinancialProjections  `json:"financial_projections"`
	ImplementationRoadmap *ImplementationRoadmap `json:"implementation_roadmap"`
	Recommendations       *Recommendations       `json:"recommendations"`
	Sources               *Sources               `json:"sources"`
}
