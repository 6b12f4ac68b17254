package models

import (
	"strings"
	"testing"
)

// fullProfile satisfies every completion check.
func fullProfile() Profile {
	return Profile{
		FirstName:       "María",
		LastName:        "González",
		Email:           "maria@example.cl",
		Phone:           "+56912345678",
		RUT:             "12.345.678-5",
		Bio:             strings.Repeat("a", 100),
		HourlyRate:      50000,
		Specialties:     []string{"Derecho Laboral"},
		Languages:       []string{"Español"},
		LicenseNumber:   "A-12345",
		Services:        []string{"Consulta inicial"},
		AvatarURL:       "https://example.com/avatar.png",
		Region:          "Metropolitana",
		ExperienceYears: 8,
		Availability:    map[string][]bool{"monday": make([]bool, 24)},
	}
}

func TestCompletionScore(t *testing.T) {
	if got := (Profile{}).CompletionScore(); got != 0 {
		t.Errorf("empty profile score = %d; want 0", got)
	}

	if got := fullProfile().CompletionScore(); got != 100 {
		t.Errorf("full profile score = %d; want 100", got)
	}

	// 8 of 15 satisfied rounds to 53.
	p := Profile{
		FirstName:   "María",
		LastName:    "González",
		Email:       "maria@example.cl",
		Phone:       "+56912345678",
		RUT:         "12.345.678-5",
		Bio:         strings.Repeat("a", 100),
		HourlyRate:  50000,
		Specialties: []string{"Derecho Laboral"},
	}
	if got := p.CompletionScore(); got != 53 {
		t.Errorf("8/15 profile score = %d; want 53", got)
	}
}

func TestCompletionScoreBioThreshold(t *testing.T) {
	p := fullProfile()
	p.Bio = strings.Repeat("a", 99)
	if got := p.CompletionScore(); got != 93 {
		t.Errorf("14/15 profile score = %d; want 93", got)
	}
}

func TestFullName(t *testing.T) {
	if got := (Profile{FirstName: "Ana", LastName: "Rojas"}).FullName(); got != "Ana Rojas" {
		t.Errorf("FullName = %q; want %q", got, "Ana Rojas")
	}
	if got := (Profile{FirstName: "Ana"}).FullName(); got != "Ana" {
		t.Errorf("FullName = %q; want %q", got, "Ana")
	}
	if got := (Profile{LastName: "Rojas"}).FullName(); got != "Rojas" {
		t.Errorf("FullName = %q; want %q", got, "Rojas")
	}
}
