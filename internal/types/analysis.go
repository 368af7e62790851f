package types

// JobRequirements is the structured form of a job posting used to score resumes.
type JobRequirements struct {
	ExplicitSkills   []string             `json:"explicit_skills"`
	ImplicitSkills   []string             `json:"implicit_skills"`
	Responsibilities []string             `json:"responsibilities"`
	Education        EducationRequirement `json:"education"`
}

// EducationRequirement captures the degree expectations of a posting.
type EducationRequirement struct {
	MinDegree string   `json:"min_degree,omitempty"` // bachelor, master, phd, or empty
	Fields    []string `json:"fields,omitempty"`
	Required  bool     `json:"required"`
}

// Comparison is the head-to-head view of two or more applicants.
// KeyDifferences maps category -> candidate slot (candidate1, candidate2, ...) -> summary.
type Comparison struct {
	Differentiators []string                     `json:"differentiators"`
	Recommendation  string                       `json:"recommendation"`
	KeyDifferences  map[string]map[string]string `json:"keyDifferences"`
}

// CriticalGap is a requirement with little or no coverage in the applicant pool.
type CriticalGap struct {
	Skill    string `json:"skill"`
	Coverage int    `json:"coverage"`
}

// SemanticMatch pairs a requirement with an applicant skill that likely satisfies it.
type SemanticMatch struct {
	Requirement    string `json:"requirement"`
	ApplicantSkill string `json:"applicantSkill"`
}

// SkillGapAnalysis combines the skill coverage of a pool with a narrative on its gaps.
// Skills maps skill name to the rounded percentage of applicants listing it.
type SkillGapAnalysis struct {
	Skills           map[string]int  `json:"skills"`
	CriticalGaps     []CriticalGap   `json:"criticalGaps"`
	SemanticMatches  []SemanticMatch `json:"semanticMatches"`
	Recommendations  string          `json:"recommendations"`
	SourcingStrategy string          `json:"sourcingStrategy"`
}

// InsightStats are the deterministic pipeline statistics of a job.
type InsightStats struct {
	TotalApplicants   int                     `json:"totalApplicants"`
	ScoredApplicants  int                     `json:"scoredApplicants"`
	AverageExperience float64                 `json:"averageExperience"`
	AverageMatchScore int                     `json:"averageMatchScore"`
	TopMatchScore     int                     `json:"topMatchScore"`
	StatusBreakdown   map[ApplicantStatus]int `json:"statusBreakdown"`
}

// InsightNarrative is the model-written reading of InsightStats.
type InsightNarrative struct {
	Summary         string   `json:"summary"`
	Highlights      []string `json:"highlights"`
	Recommendations string   `json:"recommendations"`
}

// ApplicationInsights is the response of the application-insights view.
type ApplicationInsights struct {
	Stats    InsightStats     `json:"stats"`
	Insights InsightNarrative `json:"insights"`
	Trends   []NamedValue     `json:"trends"`
}

// DashboardMetrics are the headline numbers across all jobs.
type DashboardMetrics struct {
	TotalApplicants   int `json:"totalApplicants"`
	TopTierCount      int `json:"topTierCount"`
	TopTierPercentage int `json:"topTierPercentage"`
	WaitlistCount     int `json:"waitlistCount"`
}
