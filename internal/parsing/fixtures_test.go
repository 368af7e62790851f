package parsing

import "github.com/jonathan/applicant-tracker/internal/types"

var jobRequirementsFixture = types.JobRequirements{
	ExplicitSkills:   []string{"Figma", "User Research"},
	ImplicitSkills:   []string{"Prototyping"},
	Responsibilities: []string{"Own the design system"},
	Education:        types.EducationRequirement{MinDegree: "bachelor", Required: true},
}
