package main

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/logging"
	"github.com/temirov/model-platform/internal/platform"
	"github.com/temirov/model-platform/internal/server"
	"github.com/temirov/model-platform/internal/upstream"
	"github.com/temirov/model-platform/internal/utils"
)

const (
	envPrefix = "mp"

	keyServiceSecret         = "service_secret"
	keyLogLevel              = "log_level"
	keyWorkers               = "workers"
	keyQueueSize             = "queue_size"
	keyPort                  = "port"
	keyRequestTimeoutSeconds = "request_timeout_seconds"

	flagServiceSecret  = keyServiceSecret
	flagLogLevel       = keyLogLevel
	flagWorkers        = keyWorkers
	flagQueueSize      = keyQueueSize
	flagPort           = keyPort
	flagRequestTimeout = "request_timeout"
	flagBaseURL        = "base_url"

	envServiceSecret         = "SERVICE_SECRET"
	envLogLevel              = "LOG_LEVEL"
	envWorkers               = "MP_WORKERS"
	envQueueSize             = "MP_QUEUE_SIZE"
	envPort                  = "HTTP_PORT"
	envRequestTimeoutSeconds = "MP_REQUEST_TIMEOUT_SECONDS"

	logEventStarting             = "starting model-platform"
	logEventBaseURLOverride      = "base URL override"
	logEventMissingServiceSecret = "SERVICE_SECRET is empty; refusing to start"
	logFieldPort                 = "port"
	logFieldLogLevel             = "log_level"
	logFieldSecretFingerprint    = "secret_fingerprint"
	logFieldPlatform             = "model_platform"
	logFieldBaseURL              = "base_url"
)

var (
	config          server.Configuration
	baseURLOverride map[string]string
)

// Execute runs the command-line interface.
func Execute() {
	rootCmd.SilenceUsage = false
	rootCmd.SilenceErrors = false
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "model-platform",
	Short: "Model platform alias normalizer and validator",
	Long:  "Serves platform alias normalization, model configuration checks and local runtime probes over HTTP.",
	Example: `model-platform --service_secret=mysecret --log_level=debug --base_url openai-compatible-model=http://localhost:8080/v1
SERVICE_SECRET=mysecret LOG_LEVEL=debug model-platform
model-platform normalize llama.cpp ModelArk openai`,
	RunE: func(cmd *cobra.Command, args []string) error {
		populateStringConfiguration(cmd, flagServiceSecret, keyServiceSecret, &config.ServiceSecret, "", utils.TrimSpacesAndQuotes)
		populateStringConfiguration(cmd, flagLogLevel, keyLogLevel, &config.LogLevel, logging.LevelInfo, logging.NormalizeLevel)
		populateIntConfiguration(cmd, flagPort, keyPort, &config.Port, server.DefaultPort)
		populateIntConfiguration(cmd, flagWorkers, keyWorkers, &config.WorkerCount, server.DefaultWorkers)
		populateIntConfiguration(cmd, flagQueueSize, keyQueueSize, &config.QueueSize, server.DefaultQueueSize)
		populateIntConfiguration(cmd, flagRequestTimeout, keyRequestTimeoutSeconds, &config.RequestTimeoutSeconds, server.DefaultRequestTimeoutSeconds)

		logger, loggerError := logging.NewLogger(config.LogLevel)
		if loggerError != nil {
			return loggerError
		}
		defer func() { _ = logger.Sync() }()
		sugar := logger.Sugar()

		if utils.IsBlank(config.ServiceSecret) {
			sugar.Error(logEventMissingServiceSecret)
			return apperrors.ErrMissingServiceSecret
		}

		config.Endpoints = buildEndpoints(baseURLOverride)
		for platformName, baseURL := range baseURLOverride {
			sugar.Infow(logEventBaseURLOverride, logFieldPlatform, platform.Normalize(platformName), logFieldBaseURL, baseURL)
		}

		sugar.Infow(logEventStarting,
			logFieldPort, config.Port,
			logFieldLogLevel, config.LogLevel,
			logFieldSecretFingerprint, utils.Fingerprint(config.ServiceSecret),
		)
		serveContext, stopServing := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stopServing()
		return server.Serve(serveContext, config, sugar)
	},
}

// buildEndpoints applies base URL overrides on top of the defaults. Platform names are normalized first.
func buildEndpoints(overrides map[string]string) *upstream.Endpoints {
	endpoints := upstream.NewEndpoints()
	for platformName, baseURL := range overrides {
		endpoints.SetBaseURL(platform.Normalize(strings.TrimSpace(platformName)), utils.TrimSpacesAndQuotes(baseURL))
	}
	return endpoints
}

// bindOrDie wraps viper bindings and returns a combined error if any bind fails.
func bindOrDie() error {
	bindings := []struct {
		key         string
		environment string
	}{
		{key: keyServiceSecret, environment: envServiceSecret},
		{key: keyLogLevel, environment: envLogLevel},
		{key: keyWorkers, environment: envWorkers},
		{key: keyQueueSize, environment: envQueueSize},
		{key: keyPort, environment: envPort},
		{key: keyRequestTimeoutSeconds, environment: envRequestTimeoutSeconds},
	}
	var errs []string
	for _, binding := range bindings {
		if err := viper.BindEnv(binding.key, binding.environment); err != nil {
			errs = append(errs, binding.key+":"+err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := bindOrDie(); err != nil {
		panic("viper env binding failed: " + err.Error())
	}

	rootCmd.Flags().StringVar(
		&config.ServiceSecret,
		flagServiceSecret,
		"",
		"shared secret for requests (env: "+envServiceSecret+")",
	)
	rootCmd.Flags().IntVar(
		&config.Port,
		flagPort,
		0,
		"TCP port to listen on (env: "+envPort+")",
	)
	rootCmd.Flags().StringVar(
		&config.LogLevel,
		flagLogLevel,
		"",
		"logging level: debug or info (env: "+envLogLevel+")",
	)
	rootCmd.Flags().IntVar(
		&config.WorkerCount,
		flagWorkers,
		0,
		"number of validation worker goroutines (env: "+envWorkers+")",
	)
	rootCmd.Flags().IntVar(
		&config.QueueSize,
		flagQueueSize,
		0,
		"validation queue size (env: "+envQueueSize+")",
	)
	rootCmd.Flags().IntVar(
		&config.RequestTimeoutSeconds,
		flagRequestTimeout,
		0,
		"validation request timeout in seconds (env: "+envRequestTimeoutSeconds+")",
	)
	rootCmd.Flags().StringToStringVar(
		&baseURLOverride,
		flagBaseURL,
		nil,
		"base URL override as platform=url; repeatable",
	)

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		panic("failed to bind flags: " + err.Error())
	}

	rootCmd.AddCommand(newNormalizeCommand(), newProvidersCommand())
}
