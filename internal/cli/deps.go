package cli

import (
	"context"
	"log"
	"time"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/config"
	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/infra/memory"
	pgstore "exam-scoring-service/internal/infra/postgres"
	redisstore "exam-scoring-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// buildService wires stores from config: postgres for exams and scores when configured,
// redis for the exam cache (and scores without postgres), memory otherwise.
func buildService(ctx context.Context, cfg config.Config) (*app.ScoringService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
	}

	var loader memory.ExamLoader
	if pool != nil {
		loader = pgstore.NewExamLoader(pool)
	} else {
		seed := map[string]domain.Exam{}
		if cfg.Exam.SeedFile != "" {
			exams, err := memory.ReadExamsFile(cfg.Exam.SeedFile)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			seed = exams
		}
		log.Printf("serving %d exams from memory", len(seed))
		loader = memory.NewStaticExamLoader(seed)
	}

	examTTL := config.TTLDuration(cfg.Exam.TTL, 10*time.Minute)
	var exams app.ExamRepository
	if redisClient != nil {
		exams = redisstore.NewExamRepository(redisClient, loader, config.TTLDuration(cfg.Redis.TTL, examTTL))
	} else {
		exams = memory.NewExamRepository(loader, examTTL)
	}

	var scores app.ScoreRepository
	switch {
	case pool != nil:
		scores = pgstore.NewScoreStore(pool)
	case redisClient != nil:
		scores = redisstore.NewScoreStore(redisClient)
	default:
		scores = memory.NewScoreStore()
	}

	service := app.NewScoringService(exams, scores, app.Options{
		RequirePublished:  cfg.Submission.RequirePublished,
		RecalcConcurrency: cfg.Recalculation.Concurrency,
		RecalcBatchSize:   cfg.Recalculation.BatchSize,
	})
	return service, cleanup, nil
}
