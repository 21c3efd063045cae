// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. For the proxy, resolve the _SSM_PARAM pointers of secretVars through the
//     SecretProvider (SSM when deployed, EnvVarProvider locally) and export
//     the values.
//  4. Use envconfig to process struct tags.
//  5. Populate BuildInfo from linker-injected variables (proxy only).
//  6. Validate the struct using go-playground/validator.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by the loaders.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ssmParamSuffix identifies SSM pointer variables. WEATHERSTACK_API_KEY_SSM_PARAM
// points to the SSM path holding WEATHERSTACK_API_KEY.
const ssmParamSuffix = "_SSM_PARAM"

// ssmTimeout bounds the whole Parameter Store round trip at start-up.
const ssmTimeout = 30 * time.Second

// defaultRecentDir is created under the user's home directory when
// WEATHER_RECENT_FILE is not set.
const defaultRecentDir = ".skyglass"

type envLookup func(key string) (string, bool)

type envSet func(key, value string) error

// loaderDeps holds the injectable dependencies for the loader, enabling
// testing without mutating global state.
type loaderDeps struct {
	lookupEnv envLookup
	setEnv    envSet
	homeDir   func() (string, error)
}

func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		homeDir:   os.UserHomeDir,
	}
}

// LoadProxyConfig loads and validates the proxy configuration.
//
// The provider resolves _SSM_PARAM pointers. It may be nil when no pointer is
// set.
func LoadProxyConfig(provider SecretProvider) (*ProxyConfig, error) {
	return loadProxyConfigWithDeps(provider, defaultDeps())
}

func loadProxyConfigWithDeps(provider SecretProvider, deps loaderDeps) (*ProxyConfig, error) {
	time.Local = time.UTC
	_ = godotenv.Load()

	if err := resolveSSMParams(provider, deps); err != nil {
		return nil, err
	}

	var cfg ProxyConfig
	if err := process(&cfg); err != nil {
		return nil, err
	}
	cfg.Build = NewBuildInfo()

	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClientConfig loads and validates the weather client configuration.
// Secrets are read from the environment or .env only; the client never talks
// to SSM.
func LoadClientConfig() (*ClientConfig, error) {
	return loadClientConfigWithDeps(defaultDeps())
}

func loadClientConfigWithDeps(deps loaderDeps) (*ClientConfig, error) {
	_ = godotenv.Load()

	var cfg ClientConfig
	if err := process(&cfg); err != nil {
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}

	// Direct mode talks to the provider itself and so needs the key; proxied
	// mode must not carry one.
	if !cfg.UseProxy && cfg.Credential.IsEmpty() {
		return nil, &ConfigError{
			Type:    ErrMissingEnv,
			Message: "WEATHER_CREDENTIAL is required unless WEATHER_USE_PROXY=true",
		}
	}

	if cfg.RecentFile == "" {
		home, err := deps.homeDir()
		if err != nil {
			return nil, &ConfigError{
				Type:    ErrMissingEnv,
				Message: "WEATHER_RECENT_FILE is unset and the home directory cannot be determined",
				Err:     err,
			}
		}
		cfg.RecentFile = filepath.Join(home, defaultRecentDir, "recent.json")
	}

	return &cfg, nil
}

func process(dst any) error {
	// The empty prefix makes envconfig read the exact tag values.
	if err := envconfig.Process("", dst); err != nil {
		return &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}
	return nil
}

func validateStruct(dst any) error {
	validate := validator.New()
	if err := validate.Struct(dst); err != nil {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	return nil
}

// secretVars lists the variables that may be supplied through an SSM pointer.
// Setting NAME_SSM_PARAM to a parameter path fills NAME from Parameter Store.
var secretVars = []string{"WEATHERSTACK_API_KEY"}

// resolveSSMParams fetches every secret whose pointer is set and whose target
// is not, and exports the values so envconfig sees them. An explicit target
// always wins over its pointer.
func resolveSSMParams(provider SecretProvider, deps loaderDeps) error {
	pending := make(map[string]string) // parameter path -> target variable
	for _, name := range secretVars {
		if _, set := deps.lookupEnv(name); set {
			continue
		}
		path, _ := deps.lookupEnv(name + ssmParamSuffix)
		if path = strings.TrimSpace(path); path != "" {
			pending[path] = name
		}
	}
	if len(pending) == 0 {
		return nil
	}

	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if provider == nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: "a secret provider is needed to resolve " + targetsOf(paths, pending),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ssmTimeout)
	defer cancel()

	values, err := provider.GetParametersBatch(ctx, paths)
	if err != nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("fetching %d SSM parameters", len(paths)),
			Err:     err,
		}
	}

	var missing []string
	for _, path := range paths {
		value, ok := values[path]
		if !ok {
			missing = append(missing, path)
			continue
		}
		if err := deps.setEnv(pending[path], value); err != nil {
			return &ConfigError{
				Type:    ErrSSMResolution,
				Message: "exporting " + pending[path],
				Err:     err,
			}
		}
	}
	if len(missing) > 0 {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: "SSM parameters not found for " + targetsOf(missing, pending),
		}
	}
	return nil
}

func targetsOf(paths []string, pending map[string]string) string {
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = pending[path]
	}
	return strings.Join(names, ", ")
}
