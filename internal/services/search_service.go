package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"lexmarket_echo/internal/models"
)

// lawyerListCacheKey caches the unfiltered verified-lawyer listing.
const (
	lawyerListCacheKey = "lawyers:verified:all"
	lawyerListCacheTTL = 5 * time.Minute
)

// SearchService builds the filtered lawyer directory queries.
type SearchService struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewSearchService(db *gorm.DB, cache *RedisCache) *SearchService {
	return &SearchService{db: db, cache: cache}
}

// SearchInput carries the optional directory filters.
type SearchInput struct {
	Query         string
	Specialty     string
	Location      string
	MinRating     float64
	MinExperience int
	AvailableNow  bool
}

func (in SearchInput) empty() bool {
	return in.Query == "" && in.Specialty == "" && in.Location == "" &&
		in.MinRating == 0 && in.MinExperience == 0 && !in.AvailableNow
}

// ExpandSpecialtyTerms returns the lowercase search terms for a specialty
// query: the full phrase plus each meaningful word, so "derecho laboral"
// also matches specialties listing only "laboral". Connector words and
// one-to-three letter fragments are skipped.
func ExpandSpecialtyTerms(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	terms := []string{query}
	for _, word := range strings.Fields(query) {
		if len(word) <= 3 || word == query {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// MatchesSpecialty reports whether any of a lawyer's specialties matches the
// query, exactly or by substring on any expanded term.
func MatchesSpecialty(specialties []string, query string) bool {
	terms := ExpandSpecialtyTerms(query)
	if terms == nil {
		return true
	}
	for _, spec := range specialties {
		lower := strings.ToLower(spec)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

// Search returns the verified lawyers matching the filters. The base
// predicates run in the database; specialty matching happens in Go because
// specialties are stored as a JSON array.
func (s *SearchService) Search(ctx context.Context, in SearchInput) ([]models.Profile, error) {
	if in.empty() {
		return GetOrSet(s.cache, ctx, lawyerListCacheKey, lawyerListCacheTTL, func() ([]models.Profile, error) {
			return s.query(ctx, in)
		})
	}

	lawyers, err := s.query(ctx, in)
	if err != nil {
		return nil, err
	}

	if in.Specialty == "" {
		return lawyers, nil
	}
	filtered := make([]models.Profile, 0, len(lawyers))
	for _, l := range lawyers {
		if MatchesSpecialty(l.Specialties, in.Specialty) {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

// InvalidateListing drops the cached unfiltered listing after a profile
// edit so the directory reflects it on the next read.
func (s *SearchService) InvalidateListing(ctx context.Context) {
	s.cache.Delete(ctx, lawyerListCacheKey)
}

func (s *SearchService) query(ctx context.Context, in SearchInput) ([]models.Profile, error) {
	query := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("role = ?", models.RoleLawyer).
		Where("verified = ? OR externally_verified = ?", true, true)

	if in.Query != "" {
		like := "%" + in.Query + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR bio ILIKE ?", like, like, like)
	}
	if in.Location != "" {
		like := "%" + in.Location + "%"
		query = query.Where("region ILIKE ? OR comuna ILIKE ?", like, like)
	}
	if in.MinRating > 0 {
		query = query.Where("rating >= ?", in.MinRating)
	}
	if in.MinExperience > 0 {
		query = query.Where("experience_years >= ?", in.MinExperience)
	}
	if in.AvailableNow {
		query = query.Where("available_now = ?", true)
	}

	var lawyers []models.Profile
	if err := query.Order("rating desc").Find(&lawyers).Error; err != nil {
		return nil, err
	}
	return lawyers, nil
}
