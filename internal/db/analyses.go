package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/applicant-tracker/internal/store"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// GetAiAnalysis retrieves the analysis of an applicant
func (db *DB) GetAiAnalysis(ctx context.Context, applicantID int64) (*types.AiAnalysis, error) {
	var a types.AiAnalysis
	var skillsJSON, experienceJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, applicant_id, summary, strengths, weaknesses, skills, experience,
		        rating, recommendations, created_at
		 FROM ai_analyses WHERE applicant_id = $1`,
		applicantID,
	).Scan(&a.ID, &a.ApplicantID, &a.Summary, &a.Strengths, &a.Weaknesses, &skillsJSON,
		&experienceJSON, &a.Rating, &a.Recommendations, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, translate("get ai analysis", err)
	}

	a.Skills = map[string]int{}
	a.Experience = map[string]types.ExperienceEntry{}
	if skillsJSON != nil {
		_ = json.Unmarshal(skillsJSON, &a.Skills)
	}
	if experienceJSON != nil {
		_ = json.Unmarshal(experienceJSON, &a.Experience)
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Weaknesses == nil {
		a.Weaknesses = []string{}
	}
	return &a, nil
}

// UpsertAiAnalysis stores the analysis of an applicant, replacing any previous one
func (db *DB) UpsertAiAnalysis(ctx context.Context, a *types.AiAnalysis) (*types.AiAnalysis, error) {
	skillsJSON, err := json.Marshal(nonNilSkills(a.Skills))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	experienceJSON, err := json.Marshal(nonNilExperience(a.Experience))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal experience: %w", err)
	}

	out := *a
	err = db.pool.QueryRow(ctx,
		`INSERT INTO ai_analyses (applicant_id, summary, strengths, weaknesses, skills, experience,
		                          rating, recommendations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (applicant_id) DO UPDATE SET
		     summary = EXCLUDED.summary,
		     strengths = EXCLUDED.strengths,
		     weaknesses = EXCLUDED.weaknesses,
		     skills = EXCLUDED.skills,
		     experience = EXCLUDED.experience,
		     rating = EXCLUDED.rating,
		     recommendations = EXCLUDED.recommendations,
		     created_at = NOW()
		 RETURNING id, created_at`,
		a.ApplicantID, a.Summary, nonNilStrings(a.Strengths), nonNilStrings(a.Weaknesses),
		skillsJSON, experienceJSON, a.Rating, a.Recommendations,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, translate("upsert ai analysis", err)
	}
	return &out, nil
}

// ListSkills returns the distinct skills of every applicant
func (db *DB) ListSkills(ctx context.Context) ([]string, error) {
	all, err := db.ListApplicants(ctx, store.ApplicantFilter{})
	if err != nil {
		return nil, err
	}
	return store.UniqueSkills(all), nil
}

// ListSkillsByJobID returns the distinct skills of a job's applicant pool
func (db *DB) ListSkillsByJobID(ctx context.Context, jobID int64) ([]string, error) {
	pool, err := db.ListApplicants(ctx, store.ApplicantFilter{JobListingID: &jobID})
	if err != nil {
		return nil, err
	}
	return store.UniqueSkills(pool), nil
}

// SkillsDistributionByJobID counts, per skill, the applicants of a job listing it
func (db *DB) SkillsDistributionByJobID(ctx context.Context, jobID int64) ([]types.NamedValue, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT skill, COUNT(DISTINCT a.id)
		 FROM applicants a, unnest(a.skills) AS skill
		 WHERE a.job_listing_id = $1 AND skill <> ''
		 GROUP BY skill
		 ORDER BY 2 DESC, 1 ASC`,
		jobID,
	)
	if err != nil {
		return nil, translate("skills distribution", err)
	}
	defer rows.Close()

	out := make([]types.NamedValue, 0)
	for rows.Next() {
		var nv types.NamedValue
		if err := rows.Scan(&nv.Name, &nv.Value); err != nil {
			return nil, translate("scan skills distribution", err)
		}
		out = append(out, nv)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("skills distribution", err)
	}
	return out, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSkills(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func nonNilExperience(m map[string]types.ExperienceEntry) map[string]types.ExperienceEntry {
	if m == nil {
		return map[string]types.ExperienceEntry{}
	}
	return m
}
