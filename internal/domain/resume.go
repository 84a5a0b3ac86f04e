package domain

import "time"

type Skill struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	ProficiencyLevel int     `json:"proficiency_level"`
	YearsExperience  float64 `json:"years_experience"`
}

type Education struct {
	Degree  string `json:"degree"`
	Context string `json:"context"`
}

type ResumeData struct {
	CandidateID     string      `json:"candidate_id"`
	Skills          []Skill     `json:"skills"`
	ExperienceYears float64     `json:"experience_years"`
	Education       []Education `json:"education"`
	Certifications  []string    `json:"certifications"`
	RawText         string      `json:"raw_text"`
	ProcessedAt     time.Time   `json:"processed_at"`
}

type JobDescription struct {
	JobID                 string   `json:"job_id"`
	Title                 string   `json:"title"`
	RequiredSkills        []Skill  `json:"required_skills"`
	ExperienceRequired    float64  `json:"experience_required"`
	EducationRequirements []string `json:"education_requirements"`
	Responsibilities      []string `json:"responsibilities"`
	RawText               string   `json:"raw_text"`
}

type ScoringResult struct {
	ResumeID           string    `json:"resume_id"`
	JobID              string    `json:"job_id"`
	OverallScore       float64   `json:"overall_score"`
	SkillMatchScore    float64   `json:"skill_match_score"`
	ExperienceScore    float64   `json:"experience_score"`
	EducationScore     float64   `json:"education_score"`
	CertificationScore float64   `json:"certification_score"`
	MatchedSkills      []string  `json:"matched_skills"`
	MissingSkills      []string  `json:"missing_skills"`
	Explanation        string    `json:"explanation"`
	ComplianceFlags    []string  `json:"compliance_flags"`
	ScoredAt           time.Time `json:"scored_at"`
}
