package main

import (
	"context"
	"log"
	"net/http"

	"github.com/pot-code/course-service/internal/course"
	infra "github.com/pot-code/course-service/internal/infrastructure"
	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/infrastructure/logging"
	"github.com/pot-code/course-service/internal/infrastructure/uuid"
	"github.com/pot-code/course-service/internal/interfaces/rest"
	"github.com/pot-code/course-service/internal/lesson"
	"github.com/pot-code/course-service/internal/progress"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	defer logger.Sync()

	dbConn, err := driver.GetDBConnection(&driver.DBConfig{
		User:     option.Database.User,
		Password: option.Database.Password,
		MaxConn:  option.Database.MaxConn,
		Protocol: option.Database.Protocol,
		Driver:   option.Database.Driver,
		Host:     option.Database.Host,
		Port:     option.Database.Port,
		Query:    option.Database.Query,
		Schema:   option.Database.Schema,
	})
	if err != nil {
		logger.Fatal("Failed to create DB connection", zap.Error(err))
	}
	defer dbConn.Close(context.Background())
	logger.Debug("Create DB connection instance", zap.String("db.driver", option.Database.Driver),
		zap.String("db.schema", option.Database.Schema),
		zap.String("db.host", option.Database.Host),
	)

	var (
		kv    driver.KeyValueDB
		cache lesson.AggregateCache = lesson.NopAggregateCache{}
	)
	if option.KVStore.Enabled {
		rdb := driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password, option.KVStore.DB)
		defer rdb.Close()
		if err := rdb.Ping(context.Background()); err != nil {
			logger.Warn("KV store unreachable, lesson reads fall back to the database", zap.Error(err))
		}
		kv = rdb
		cache = lesson.NewKVAggregateCache(rdb, option.KVStore.TTL)
	}

	UUIDGenerator := uuid.NewNanoIDGenerator(option.Security.IDLength)

	ProgressRepo := progress.NewProgressRepository(dbConn)
	ProgressUseCase := progress.NewProgressUseCase(ProgressRepo)

	LessonRepo := lesson.NewLessonRepository(dbConn)
	LessonUseCase := lesson.NewLessonUseCase(dbConn, LessonRepo, ProgressRepo, cache, UUIDGenerator)

	CourseRepo := course.NewCourseRepository(dbConn)
	CourseUseCase := course.NewCourseUseCase(dbConn, CourseRepo, LessonRepo, UUIDGenerator)

	app := rest.NewServer(dbConn, kv, option, ProgressUseCase, CourseUseCase, LessonUseCase, logger)
	if err := rest.Serve(app, option); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
