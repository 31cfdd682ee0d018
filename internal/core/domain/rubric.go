package domain

// Decision is the reviewer's verdict on a course.
type Decision string

const (
	DecisionApproved    Decision = "approved"
	DecisionNotApproved Decision = "not_approved"
	DecisionDeferred    Decision = "deferred"
)

// Decisions lists every valid decision in display order.
var Decisions = []Decision{DecisionApproved, DecisionNotApproved, DecisionDeferred}

func (d Decision) Valid() bool {
	switch d {
	case DecisionApproved, DecisionNotApproved, DecisionDeferred:
		return true
	default:
		return false
	}
}

// RubricSection describes one section of the rubric. For exclusion sections a
// score of 1 flags a disqualifying condition.
type RubricSection struct {
	Key       string
	Label     string
	Criteria  []string
	Exclusion bool
}

// RubricSections is the fixed rubric, in display order.
var RubricSections = []RubricSection{
	{
		Key:   "pillars",
		Label: "Pillars",
		Criteria: []string{
			"interdisciplinary_academics",
			"undergraduate_research",
			"community_and_global_engagement",
			"leadership_development",
		},
	},
	{
		Key:   "rigor",
		Label: "Rigor",
		Criteria: []string{
			"advanced_content",
			"sustained_inquiry",
			"independent_or_collaborative_work",
		},
	},
	{
		Key:   "student_agency_and_responsibility",
		Label: "Student Agency & Responsibility",
		Criteria: []string{
			"student_defined_projects",
			"consequential_decision_making",
			"extended_analytical_commitment",
		},
	},
	{
		Key:   "demonstrable_evidence_of_learning",
		Label: "Demonstrable Evidence of Learning",
		Criteria: []string{
			"major_project",
			"portfolio_or_capstone",
			"public_facing_outcome",
			"sustained_assessment",
		},
	},
	{
		Key:   "exclusions",
		Label: "Exclusions",
		Criteria: []string{
			"lower_division_introductory",
			"broad_introductory_coverage",
			"skills_only_or_tool_training",
			"lacks_major_deliverable",
			"already_counted",
		},
		Exclusion: true,
	},
}

// Criterion is one binary rubric judgment.
type Criterion struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// Met reports whether the criterion scored 1.
func (c Criterion) Met() bool { return c.Score == 1 }

type Pillars struct {
	InterdisciplinaryAcademics   Criterion `json:"interdisciplinary_academics"`
	UndergraduateResearch        Criterion `json:"undergraduate_research"`
	CommunityAndGlobalEngagement Criterion `json:"community_and_global_engagement"`
	LeadershipDevelopment        Criterion `json:"leadership_development"`
}

type Rigor struct {
	AdvancedContent                Criterion `json:"advanced_content"`
	SustainedInquiry               Criterion `json:"sustained_inquiry"`
	IndependentOrCollaborativeWork Criterion `json:"independent_or_collaborative_work"`
}

type StudentAgencyAndResponsibility struct {
	StudentDefinedProjects       Criterion `json:"student_defined_projects"`
	ConsequentialDecisionMaking  Criterion `json:"consequential_decision_making"`
	ExtendedAnalyticalCommitment Criterion `json:"extended_analytical_commitment"`
}

type DemonstrableEvidenceOfLearning struct {
	MajorProject        Criterion `json:"major_project"`
	PortfolioOrCapstone Criterion `json:"portfolio_or_capstone"`
	PublicFacingOutcome Criterion `json:"public_facing_outcome"`
	SustainedAssessment Criterion `json:"sustained_assessment"`
}

type Exclusions struct {
	LowerDivisionIntroductory Criterion `json:"lower_division_introductory"`
	BroadIntroductoryCoverage Criterion `json:"broad_introductory_coverage"`
	SkillsOnlyOrToolTraining  Criterion `json:"skills_only_or_tool_training"`
	LacksMajorDeliverable     Criterion `json:"lacks_major_deliverable"`
	AlreadyCounted            Criterion `json:"already_counted"`
}

type ReviewDecision struct {
	Decision  Decision `json:"decision"`
	Rationale string   `json:"rationale"`
}

// CourseInformation fields are nullable; a syllabus may omit any of them.
type CourseInformation struct {
	CourseNumber *string `json:"course_number"`
	CourseTitle  *string `json:"course_title"`
	Department   *string `json:"department"`
	College      *string `json:"college"`
	ReviewDate   *string `json:"review_date"`
}

type CourseAnalysis struct {
	Pillars                        Pillars                        `json:"pillars"`
	Rigor                          Rigor                          `json:"rigor"`
	StudentAgencyAndResponsibility StudentAgencyAndResponsibility `json:"student_agency_and_responsibility"`
	DemonstrableEvidenceOfLearning DemonstrableEvidenceOfLearning `json:"demonstrable_evidence_of_learning"`
	Exclusions                     Exclusions                     `json:"exclusions"`
	ReviewDecision                 ReviewDecision                 `json:"review_decision"`
}

// SyllabusReview is a validated judgment of one syllabus.
type SyllabusReview struct {
	CourseInformation CourseInformation `json:"course_information"`
	CourseAnalysis    CourseAnalysis    `json:"course_analysis"`
}

// NamedCriterion pairs a criterion with its rubric key.
type NamedCriterion struct {
	Key string
	Criterion
}

// Section returns a section's criteria in rubric order. Unknown keys yield nil.
func (a CourseAnalysis) Section(key string) []NamedCriterion {
	switch key {
	case "pillars":
		p := a.Pillars
		return []NamedCriterion{
			{"interdisciplinary_academics", p.InterdisciplinaryAcademics},
			{"undergraduate_research", p.UndergraduateResearch},
			{"community_and_global_engagement", p.CommunityAndGlobalEngagement},
			{"leadership_development", p.LeadershipDevelopment},
		}
	case "rigor":
		r := a.Rigor
		return []NamedCriterion{
			{"advanced_content", r.AdvancedContent},
			{"sustained_inquiry", r.SustainedInquiry},
			{"independent_or_collaborative_work", r.IndependentOrCollaborativeWork},
		}
	case "student_agency_and_responsibility":
		s := a.StudentAgencyAndResponsibility
		return []NamedCriterion{
			{"student_defined_projects", s.StudentDefinedProjects},
			{"consequential_decision_making", s.ConsequentialDecisionMaking},
			{"extended_analytical_commitment", s.ExtendedAnalyticalCommitment},
		}
	case "demonstrable_evidence_of_learning":
		d := a.DemonstrableEvidenceOfLearning
		return []NamedCriterion{
			{"major_project", d.MajorProject},
			{"portfolio_or_capstone", d.PortfolioOrCapstone},
			{"public_facing_outcome", d.PublicFacingOutcome},
			{"sustained_assessment", d.SustainedAssessment},
		}
	case "exclusions":
		e := a.Exclusions
		return []NamedCriterion{
			{"lower_division_introductory", e.LowerDivisionIntroductory},
			{"broad_introductory_coverage", e.BroadIntroductoryCoverage},
			{"skills_only_or_tool_training", e.SkillsOnlyOrToolTraining},
			{"lacks_major_deliverable", e.LacksMajorDeliverable},
			{"already_counted", e.AlreadyCounted},
		}
	default:
		return nil
	}
}

// CourseNumber returns the reported course number or "".
func (r SyllabusReview) CourseNumber() string {
	return deref(r.CourseInformation.CourseNumber)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
