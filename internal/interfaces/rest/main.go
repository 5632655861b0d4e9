package rest

import (
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/course-service/internal/course"
	infra "github.com/pot-code/course-service/internal/infrastructure"
	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/infrastructure/validate"
	"github.com/pot-code/course-service/internal/interfaces/rest/handler"
	"github.com/pot-code/course-service/internal/interfaces/rest/middleware"
	"github.com/pot-code/course-service/internal/lesson"
	"github.com/pot-code/course-service/internal/progress"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

// NewServer create http transport server, rdb may be nil when no kv store is configured
func NewServer(
	conn driver.ITransactionalDB,
	rdb driver.KeyValueDB,
	option *infra.AppConfig,
	ProgressUseCase progress.ProgressUseCase,
	CourseUseCase course.CourseUseCase,
	LessonUseCase lesson.LessonUseCase,
	logger *zap.Logger,
) *echo.Echo {
	var (
		app       = echo.New()
		validator = validate.NewValidator()
	)
	app.HideBanner = true

	registerLivenessProbe(app, conn, rdb)
	if option.Env == infra.EnvDevelopment {
		registerProfileEndpoints(app)
	}

	app.Use(echo_middleware.RequestIDWithConfig(echo_middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	app.Use(middleware.Logging(logger, &middleware.LoggingConfig{
		Skipper: func(e echo.Context) bool {
			return strings.HasPrefix(e.Request().RequestURI, "/healthz")
		},
	}))
	app.Use(middleware.ErrorHandling(
		&middleware.ErrorHandlingOption{
			Handler: func(c echo.Context, err error) {
				traceID := handler.TraceID(c)
				c.JSON(http.StatusInternalServerError,
					handler.NewRESTStandardError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetTraceID(traceID),
				)
				logger.Error("Unhandled request error", zap.Error(err), zap.String("trace.id", traceID))
			},
		},
	))
	app.Use(echo_middleware.Secure())
	if option.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORSWithConfig(echo_middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, handler.HeaderTgUserID},
	}))
	app.Use(middleware.AbortRequest(&middleware.AbortRequestOption{
		Timeout: option.RequestTimeout,
	}))

	var (
		ProgressHandler = handler.NewProgressHandler(ProgressUseCase, validator)
		CourseHandler   = handler.NewCourseHandler(CourseUseCase, validator)
		LessonHandler   = handler.NewLessonHandler(LessonUseCase, validator)
	)

	createEndpoint(app,
		&endpoint{
			apiVersion:  "api/v1",
			middlewares: []echo.MiddlewareFunc{middleware.SetTraceLogger(logger)},
			groups: []*apiGroup{
				{
					prefix: "/progress",
					routes: []*route{
						{"GET", "", ProgressHandler.HandleGetProgress, nil},
						{"PUT", "", ProgressHandler.HandleRecordProgress, nil},
					},
				},
				{
					prefix: "/course",
					routes: []*route{
						{"GET", "", CourseHandler.HandleListCourses, nil},
						{"GET", "/:id", CourseHandler.HandleGetCourse, nil},
						{"POST", "", CourseHandler.HandleCreateCourse, nil},
					},
				},
				{
					prefix: "/lesson",
					routes: []*route{
						{"GET", "", LessonHandler.HandleListLessons, nil},
						{"GET", "/:id", LessonHandler.HandleGetLesson, nil},
						{"POST", "", LessonHandler.HandleCreateLesson, nil},
						{"PUT", "/:id", LessonHandler.HandleUpdateLesson, nil},
						{"DELETE", "/:id", LessonHandler.HandleDeleteLesson, nil},
					},
				},
			},
		})

	printRoutes(app, logger)
	return app
}

// Serve start the http server and block until it stops
func Serve(app *echo.Echo, option *infra.AppConfig) error {
	return app.Start(fmt.Sprintf("%s:%d", option.Host, option.Port))
}

func printRoutes(app *echo.Echo, logger *zap.Logger) {
	for _, route := range app.Routes() {
		if !strings.HasPrefix(route.Name, "github.com/labstack/echo") {
			logger.Debug("Registered route", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}
}

func registerLivenessProbe(app *echo.Echo, db driver.ITransactionalDB, rdb driver.KeyValueDB) {
	app.GET("/healthz", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		if rdb != nil {
			if err := rdb.Ping(ctx); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
}

func registerProfileEndpoints(app *echo.Echo) {
	expvarHandler := expvar.Handler()
	app.GET("/debug/vars", func(c echo.Context) error {
		expvarHandler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/", func(c echo.Context) error {
		pprof.Index(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/:name", func(c echo.Context) error {
		switch c.Param("name") {
		case "cmdline":
			pprof.Cmdline(c.Response().Writer, c.Request())
		case "profile":
			pprof.Profile(c.Response().Writer, c.Request())
		case "symbol":
			pprof.Symbol(c.Response().Writer, c.Request())
		case "trace":
			pprof.Trace(c.Response().Writer, c.Request())
		default:
			pprof.Handler(c.Param("name")).ServeHTTP(c.Response().Writer, c.Request())
		}
		return nil
	})
}
