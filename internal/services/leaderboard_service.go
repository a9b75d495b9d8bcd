package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
)

// leaderboardTTL bounds staleness of cached standings. Boards are
// recomputed from the results table after the TTL, not invalidated on
// every submission.
const leaderboardTTL = 5 * time.Minute

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	repositories.LeaderboardRow
}

type QuizLeaderboardEntry struct {
	Rank int `json:"rank"`
	repositories.QuizLeaderboardRow
}

type WeeklyLeaderboardEntry struct {
	Rank int `json:"rank"`
	repositories.WeeklyLeaderboardRow
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
}

type QuizLeaderboardResponse struct {
	Entries []QuizLeaderboardEntry `json:"entries"`
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
}

type WeeklyLeaderboardResponse struct {
	Entries []WeeklyLeaderboardEntry `json:"entries"`
	Total   int64                    `json:"total"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
}

// LeaderboardService computes ranked standings from the results table with
// a short-lived Redis cache in front of each board.
type LeaderboardService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger utils.Logger
	now    func() time.Time
}

func NewLeaderboardService(repo repositories.Repository, cacheService cache.CacheService, logger utils.Logger) *LeaderboardService {
	return &LeaderboardService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
		now:    time.Now,
	}
}

func (s *LeaderboardService) Global(ctx context.Context, p repositories.Pagination) (*LeaderboardResponse, error) {
	p = p.Normalize()
	key := fmt.Sprintf("leaderboard:global:p%d:l%d", p.Page, p.Limit)

	var cached LeaderboardResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	rows, total, err := s.repo.Result().GlobalLeaderboard(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load global leaderboard: %w", err)
	}

	response := s.rankRows(rows, total, p)
	s.cacheSet(ctx, key, response)
	return response, nil
}

func (s *LeaderboardService) ByTopic(ctx context.Context, topicID uint, p repositories.Pagination) (*LeaderboardResponse, error) {
	if _, err := s.repo.Topic().GetByID(ctx, topicID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}

	p = p.Normalize()
	key := fmt.Sprintf("leaderboard:topic:%d:p%d:l%d", topicID, p.Page, p.Limit)

	var cached LeaderboardResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	quizIDs, err := s.repo.Quiz().IDsByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic quizzes: %w", err)
	}

	rows, total, err := s.repo.Result().TopicLeaderboard(ctx, quizIDs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic leaderboard: %w", err)
	}

	response := s.rankRows(rows, total, p)
	s.cacheSet(ctx, key, response)
	return response, nil
}

func (s *LeaderboardService) ByQuiz(ctx context.Context, quizID uint, p repositories.Pagination) (*QuizLeaderboardResponse, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	p = p.Normalize()
	key := fmt.Sprintf("leaderboard:quiz:%d:p%d:l%d", quizID, p.Page, p.Limit)

	var cached QuizLeaderboardResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	rows, total, err := s.repo.Result().QuizLeaderboard(ctx, quizID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz leaderboard: %w", err)
	}

	entries := make([]QuizLeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, QuizLeaderboardEntry{
			Rank:               p.Offset() + i + 1,
			QuizLeaderboardRow: row,
		})
	}

	response := &QuizLeaderboardResponse{Entries: entries, Total: total, Page: p.Page, Limit: p.Limit}
	s.cacheSet(ctx, key, response)
	return response, nil
}

func (s *LeaderboardService) Weekly(ctx context.Context, p repositories.Pagination) (*WeeklyLeaderboardResponse, error) {
	p = p.Normalize()
	key := fmt.Sprintf("leaderboard:weekly:p%d:l%d", p.Page, p.Limit)

	var cached WeeklyLeaderboardResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	since := startOfWeek(s.now())
	rows, total, err := s.repo.Result().WeeklyLeaderboard(ctx, since, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly leaderboard: %w", err)
	}

	entries := make([]WeeklyLeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		row.AverageTime = roundTo1(row.AverageTime)
		entries = append(entries, WeeklyLeaderboardEntry{
			Rank:                 p.Offset() + i + 1,
			WeeklyLeaderboardRow: row,
		})
	}

	response := &WeeklyLeaderboardResponse{Entries: entries, Total: total, Page: p.Page, Limit: p.Limit}
	s.cacheSet(ctx, key, response)
	return response, nil
}

func (s *LeaderboardService) rankRows(rows []repositories.LeaderboardRow, total int64, p repositories.Pagination) *LeaderboardResponse {
	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		row.AverageScore = roundTo1(row.AverageScore)
		row.AverageTime = roundTo1(row.AverageTime)
		entries = append(entries, LeaderboardEntry{
			Rank:           p.Offset() + i + 1,
			LeaderboardRow: row,
		})
	}
	return &LeaderboardResponse{Entries: entries, Total: total, Page: p.Page, Limit: p.Limit}
}

func (s *LeaderboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "Leaderboard cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *LeaderboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, leaderboardTTL); err != nil {
		s.logger.WarnContext(ctx, "Leaderboard cache write failed", "key", key, "error", err)
	}
}

// startOfWeek returns the most recent Sunday at 00:00 UTC. The weekly board
// resets at that boundary rather than sliding.
func startOfWeek(now time.Time) time.Time {
	now = now.UTC()
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
