package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/temirov/model-platform/internal/logging"
	"github.com/temirov/model-platform/internal/modelconfig"
	"github.com/temirov/model-platform/internal/upstream"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight requests may finish after the serve context ends.
const shutdownTimeout = 10 * time.Second

type validateFunc func(ctx context.Context, configuration modelconfig.ModelConfiguration) (upstream.ValidationResult, error)

// startValidationWorkers runs workerCount goroutines draining taskQueue until ctx ends.
func startValidationWorkers(ctx context.Context, workerCount int, taskQueue <-chan validationTask, validate validateFunc) *sync.WaitGroup {
	var workerGroup sync.WaitGroup
	for workerIndex := 0; workerIndex < workerCount; workerIndex++ {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case pending := <-taskQueue:
					validationResult, validationError := validate(pending.requestContext, pending.configuration)
					pending.reply <- validationOutcome{result: validationResult, err: validationError}
				}
			}
		}()
	}
	return &workerGroup
}

// BuildRouter wires the middleware, the validation workers and the routes.
// The workers stop when ctx ends.
func BuildRouter(ctx context.Context, config Configuration, structuredLogger *zap.SugaredLogger) (*gin.Engine, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = withDefaults(config)
	requestTimeout := time.Duration(config.RequestTimeoutSeconds) * time.Second

	logLevel := logging.NormalizeLevel(config.LogLevel)
	if logLevel == LogLevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if logLevel == LogLevelInfo || logLevel == LogLevelDebug {
		router.Use(requestResponseLogger(structuredLogger))
	}
	router.Use(gin.Recovery())

	upstreamClient := upstream.NewClient(config.HTTPClient, config.Endpoints, requestTimeout, structuredLogger)
	metrics := newServiceMetrics()

	taskQueue := make(chan validationTask, config.QueueSize)
	startValidationWorkers(ctx, config.WorkerCount, taskQueue, upstreamClient.ValidateModel)
	structuredLogger.Debugw(logEventWorkersStarted, logFieldWorkers, config.WorkerCount, logFieldQueueSize, config.QueueSize)

	router.GET(routeHealth, func(ginContext *gin.Context) {
		ginContext.String(http.StatusOK, responseHealthy)
	})
	router.GET(routeMetrics, gin.WrapH(metrics.handler()))

	authorized := router.Group("/", secretMiddleware(config.ServiceSecret, structuredLogger))
	authorized.GET(routeNormalizePlatform, normalizePlatformHandler(metrics, structuredLogger))
	authorized.GET(routeListAliases, listAliasesHandler())
	authorized.POST(routeNormalizeModel, normalizeModelHandler(structuredLogger))
	authorized.POST(routeValidateModel, validateModelHandler(taskQueue, requestTimeout, metrics, structuredLogger))
	authorized.GET(routeLocalModels, localModelsHandler(upstreamClient, structuredLogger))
	authorized.GET(routeLocalHealth, localHealthHandler(upstreamClient, structuredLogger))
	return router, nil
}

// Serve builds the router and listens on the configured port until ctx ends, then shuts down gracefully.
func Serve(ctx context.Context, config Configuration, structuredLogger *zap.SugaredLogger) error {
	router, buildError := BuildRouter(ctx, config, structuredLogger)
	if buildError != nil {
		return buildError
	}
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", withDefaults(config).Port),
		Handler: router,
	}

	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- httpServer.ListenAndServe()
	}()

	select {
	case serveError := <-serveErrors:
		return serveError
	case <-ctx.Done():
		structuredLogger.Infow(logEventShutdown)
		shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if shutdownError := httpServer.Shutdown(shutdownContext); shutdownError != nil {
			return shutdownError
		}
		if serveError := <-serveErrors; !errors.Is(serveError, http.ErrServerClosed) {
			return serveError
		}
		return nil
	}
}
