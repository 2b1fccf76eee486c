package listings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/postalcodeworx/backend/internal/domain/enums"
	"github.com/postalcodeworx/backend/internal/domain/model"
	"github.com/postalcodeworx/backend/internal/repo/postgres"
	redisrepo "github.com/postalcodeworx/backend/internal/repo/redis"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type SearchInput struct {
	// PostalCodes is the raw comma-separated filter from the query
	// string.
	PostalCodes string
	Brand       string
	Color       string
	Size        string
	Side        string
	DateFrom    string
	DateTo      string
	Page        int
	PerPage     int
}

type SearchResult struct {
	Items      []model.Listing
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// Search returns one page of active listings above the trust floor.
// Malformed date filters are ignored rather than rejected.
func (s *Service) Search(ctx context.Context, in SearchInput) (SearchResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	perPage := in.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	q := postgres.SearchQuery{
		Brand:         in.Brand,
		Color:         in.Color,
		Size:          enums.GloveSize(strings.ToLower(strings.TrimSpace(in.Size))),
		Side:          enums.GloveSide(strings.ToLower(strings.TrimSpace(in.Side))),
		MinConfidence: s.cfg.ConfidenceRemovalThreshold,
		Offset:        (page - 1) * perPage,
		Limit:         perPage,
	}
	for _, code := range strings.Split(in.PostalCodes, ",") {
		if code = strings.TrimSpace(code); code != "" {
			q.PostalCodes = append(q.PostalCodes, code)
		}
	}
	if t, err := parseFoundDate(in.DateFrom); err == nil {
		q.DateFrom = &t
	}
	if t, err := parseFoundDate(in.DateTo); err == nil {
		q.DateTo = &t
	}

	items, total, err := s.deps.Listings.Search(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

// PostalCodeStat is one leaderboard row. The JSON tags double as the
// redis cache encoding.
type PostalCodeStat struct {
	PostalCode    string `json:"postal_code"`
	GlovesFound   int    `json:"gloves_found"`
	GlovesClaimed int    `json:"gloves_claimed"`
	TotalListings int    `json:"total_listings"`
}

// PostalCodeStats returns the per-postal-code leaderboard, served from
// the redis cache when fresh. Cache failures fall through to postgres.
func (s *Service) PostalCodeStats(ctx context.Context) ([]PostalCodeStat, error) {
	if s.deps.StatsCache != nil {
		payload, err := s.deps.StatsCache.GetLeaderboard(ctx)
		if err == nil {
			var cached []PostalCodeStat
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redisrepo.ErrCacheMiss) {
			s.deps.Logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	rows, err := s.deps.Listings.PostalCodeStats(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]PostalCodeStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, PostalCodeStat{
			PostalCode:    row.PostalCode,
			GlovesFound:   row.TotalListings,
			GlovesClaimed: row.GlovesClaimed,
			TotalListings: row.TotalListings,
		})
	}

	if s.deps.StatsCache != nil && len(stats) > 0 {
		if payload, err := json.Marshal(stats); err == nil {
			cacheCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := s.deps.StatsCache.SetLeaderboard(cacheCtx, payload, s.cfg.StatsCacheTTL); err != nil {
				s.deps.Logger.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}

	return stats, nil
}
