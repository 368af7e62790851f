package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// SeedUsername and SeedPassword are the credentials of the demo hiring manager.
const (
	SeedUsername = "katy"
	SeedPassword = "password"
)

type seedApplicant struct {
	name, email, phone, education, profilePic string
	experience, matchScore                    int
	skills                                    []string
	status                                    types.ApplicantStatus
}

var seedApplicants = []seedApplicant{
	{
		name: "Michael Chen", email: "michael.chen@example.com", phone: "555-123-4567",
		experience: 5, education: "B.A. in Interaction Design, California Institute of Design",
		skills:     []string{"Design Systems", "Figma", "UI/UX", "Prototyping"},
		profilePic: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=facearea&facepad=2&w=256&h=256&q=80",
		matchScore: 98, status: types.StatusShortlisted,
	},
	{
		name: "Sarah Johnson", email: "sarah.j@example.com", phone: "555-987-6543",
		experience: 4, education: "M.S. in Human-Computer Interaction, Stanford University",
		skills:     []string{"Product Design", "Sketch", "User Research", "Prototyping"},
		profilePic: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?auto=format&fit=facearea&facepad=2&w=256&h=256&q=80",
		matchScore: 95, status: types.StatusShortlisted,
	},
	{
		name: "Raj Patel", email: "raj.patel@example.com", phone: "555-456-7890",
		experience: 6, education: "B.S. in Computer Science, UC Berkeley",
		skills:     []string{"Visual Design", "Front-end", "Adobe Creative Suite"},
		profilePic: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?auto=format&fit=facearea&facepad=2&w=256&h=256&q=80",
		matchScore: 93, status: types.StatusNew,
	},
	{
		name: "Emily Rodriguez", email: "emily.r@example.com", phone: "555-789-0123",
		experience: 3, education: "B.A. in Graphic Design, Rhode Island School of Design",
		skills:     []string{"UI Design", "Illustrator", "InDesign"},
		matchScore: 88, status: types.StatusNew,
	},
	{
		name: "David Kim", email: "david.kim@example.com", phone: "555-234-5678",
		experience: 7, education: "M.F.A. in Design, Yale University",
		skills:     []string{"Design Leadership", "UX Strategy", "Design Thinking"},
		matchScore: 85, status: types.StatusNew,
	},
}

// Seed loads the demo company, hiring manager, job listing and applicants, each with an
// analysis and a first review note. passwordHash is the stored hash of SeedPassword.
func Seed(ctx context.Context, s Store, passwordHash string) error {
	if existing, err := s.GetUserByUsername(ctx, SeedUsername); err != nil {
		return fmt.Errorf("failed to check seed user: %w", err)
	} else if existing != nil {
		return nil
	}

	company, err := s.CreateCompany(ctx, &types.Company{Name: "TechCorp", Domain: "techcorp.com"})
	if err != nil {
		return fmt.Errorf("failed to seed company: %w", err)
	}

	manager, err := s.CreateUser(ctx, &types.User{
		Username:     SeedUsername,
		PasswordHash: passwordHash,
		FullName:     "Katy Johnson",
		Email:        "katy@techcorp.com",
		Role:         "hiring_manager",
		AvatarURL:    "https://images.unsplash.com/photo-1494790108377-be9c29b29330?auto=format&fit=facearea&facepad=2&w=256&h=256&q=80",
		CompanyID:    &company.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	job, err := s.CreateJobListing(ctx, &types.JobListing{
		Title:           "Mid-Level Design Engineer",
		Description:     "We are looking for a talented mid-level design engineer to join our team. The ideal candidate will have strong experience in UI/UX design and be able to work collaboratively with developers.",
		Requirements:    "3-5 years of experience in UI/UX design. Proficiency in Figma, Sketch, or similar design tools. Experience with design systems. Knowledge of front-end technologies is a plus.",
		Status:          types.JobStatusActive,
		CompanyID:       company.ID,
		HiringManagerID: manager.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to seed job listing: %w", err)
	}

	for i, sa := range seedApplicants {
		applicant, err := s.CreateApplicant(ctx, &types.Applicant{
			Name:          sa.name,
			Email:         sa.email,
			Phone:         sa.phone,
			Experience:    sa.experience,
			Education:     sa.education,
			Skills:        sa.skills,
			ProfilePicURL: sa.profilePic,
			JobListingID:  job.ID,
			Status:        sa.status,
		})
		if err != nil {
			return fmt.Errorf("failed to seed applicant %s: %w", sa.name, err)
		}
		if _, err := s.UpdateApplicantMatchScore(ctx, applicant.ID, sa.matchScore); err != nil {
			return fmt.Errorf("failed to seed match score for %s: %w", sa.name, err)
		}

		if _, err := s.UpsertAiAnalysis(ctx, seedAnalysis(applicant.ID, sa, i)); err != nil {
			return fmt.Errorf("failed to seed analysis for %s: %w", sa.name, err)
		}

		if _, err := s.CreateNote(ctx, &types.ApplicantNote{
			ApplicantID: applicant.ID,
			UserID:      manager.ID,
			Content:     fmt.Sprintf("Initial review of %s's application looks promising. Strong background in %s.", sa.name, sa.skills[0]),
		}); err != nil {
			return fmt.Errorf("failed to seed note for %s: %w", sa.name, err)
		}
	}

	return nil
}

func seedAnalysis(applicantID int64, sa seedApplicant, offset int) *types.AiAnalysis {
	skills := make(map[string]int, len(sa.skills))
	strengths := make([]string, 0, len(sa.skills))
	for i, skill := range sa.skills {
		skills[skill] = 7 + (i+offset)%3
		strengths = append(strengths, fmt.Sprintf("Strong %s experience", skill))
	}

	return &types.AiAnalysis{
		ApplicantID: applicantID,
		AiSummary: types.AiSummary{
			Summary: fmt.Sprintf("%s is a %d year experienced designer with expertise in %s. %s",
				sa.name, sa.experience, strings.Join(sa.skills, ", "), sa.education),
			Strengths:  strengths,
			Weaknesses: []string{"Could improve communication skills", "Limited experience with newer technologies"},
			Skills:     skills,
			Experience: map[string]types.ExperienceEntry{
				"Senior Designer": {Company: "Previous Company", Highlights: []string{"Led design team", "Created design system"}},
			},
			Rating:          sa.matchScore,
			Recommendations: fmt.Sprintf("%s would be a good fit for the design team. Consider reviewing their portfolio in detail.", sa.name),
		},
	}
}
