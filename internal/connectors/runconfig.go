package connectors

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/harvester/internal/connectors/rest"
	"github.com/custodia-labs/harvester/internal/core/domain"
)

// Parameter names recognised in a source's config map.
const (
	ParamHome              = "home"
	ParamAuthType          = "auth_type"
	ParamUsername          = "basic.username"
	ParamPassword          = "basic.password"
	ParamConsumerKey       = "oauth.consumer_key"
	ParamPrivateKey        = "oauth.private_key"
	ParamPrivateKeyFile    = "oauth.private_key_file"
	ParamToken             = "oauth.token"
	ParamVerifier          = "oauth.verifier"
	ParamProxyHost         = "proxy_host"
	ParamProxyPort         = "proxy_port"
	ParamConnectionTimeout = "connection_timeout"
	ParamReadTimeout       = "read_timeout"
	ParamThreads           = "number_of_threads"
	ParamIgnoreError       = "ignore_error"
	ParamIncludePattern    = "include_pattern"
	ParamExcludePattern    = "exclude_pattern"
	ParamPageSize          = "page_size"
	ParamMaxPages          = "max_pages"
	ParamSpaceKey          = "space_key"
	ParamContentExpand     = "content_expand"
	ParamIncludeBlog       = "include_blog"
	ParamJQL               = "issue.jql"
	ParamIssueFields       = "issue.fields"
	ParamSearchMethod      = "issue.search_method"

	// FieldPrefix introduces an output field expression: field.<name>.
	FieldPrefix = "field."
)

// runParams is the validated view of the flat parameter map. The param tag
// names the config key reported in errors.
type runParams struct {
	Home     string `param:"home" validate:"required,url"`
	AuthType string `param:"auth_type" validate:"required,oneof=basic oauth"`

	Username string `param:"basic.username" validate:"required_if=AuthType basic"`
	Password string `param:"basic.password" validate:"required_if=AuthType basic"`

	ConsumerKey    string `param:"oauth.consumer_key" validate:"required_if=AuthType oauth"`
	PrivateKey     string `param:"oauth.private_key"`
	PrivateKeyFile string `param:"oauth.private_key_file"`
	Token          string `param:"oauth.token" validate:"required_if=AuthType oauth"`
	Verifier       string `param:"oauth.verifier" validate:"required_if=AuthType oauth"`

	ProxyHost string `param:"proxy_host" validate:"required_with=ProxyPort"`
	ProxyPort int    `param:"proxy_port" validate:"omitempty,min=1,max=65535"`

	ConnectionTimeout int `param:"connection_timeout" validate:"min=0"`
	ReadTimeout       int `param:"read_timeout" validate:"min=0"`

	Threads  int `param:"number_of_threads" validate:"min=1"`
	PageSize int `param:"page_size" validate:"min=0"`
	MaxPages int `param:"max_pages" validate:"min=0"`

	SearchMethod string `param:"issue.search_method" validate:"omitempty,oneof=get post"`
}

// ParseSettings parses and validates a source's config map. Every failure
// is a *domain.ConfigError; nothing here touches the network.
func ParseSettings(source domain.Source) (*domain.RunSettings, error) {
	if !source.Service.IsValid() {
		return nil, &domain.ConfigError{
			Param:  "service",
			Reason: fmt.Sprintf("unknown service %q", source.Service),
			Err:    domain.ErrUnsupportedType,
		}
	}

	cfg := source.Config
	p, err := readParams(cfg)
	if err != nil {
		return nil, err
	}
	if err := validateParams(p); err != nil {
		return nil, err
	}

	clientCfg, err := clientConfig(p)
	if err != nil {
		return nil, err
	}

	settings := &domain.RunSettings{
		Source:          source,
		Client:          clientCfg,
		Threads:         p.Threads,
		IncludePatterns: splitList(cfg[ParamIncludePattern], "\n"),
		ExcludePatterns: splitList(cfg[ParamExcludePattern], "\n"),
		PageSize:        p.PageSize,
		MaxPages:        p.MaxPages,
		Fields:          fieldExpressions(cfg),
	}

	if settings.IgnoreError, err = boolParam(cfg, ParamIgnoreError, true); err != nil {
		return nil, err
	}

	switch source.Service {
	case domain.ServiceWiki:
		if settings.PageSize == 0 {
			settings.PageSize = domain.DefaultWikiPageSize
		}
		settings.Wiki = domain.WikiSettings{
			SpaceKey: strings.TrimSpace(cfg[ParamSpaceKey]),
			Expand:   splitList(cfg[ParamContentExpand], ",\n"),
		}
		if settings.Wiki.IncludeBlog, err = boolParam(cfg, ParamIncludeBlog, true); err != nil {
			return nil, err
		}
	case domain.ServiceTracker:
		if settings.PageSize == 0 {
			settings.PageSize = domain.DefaultTrackerPageSize
		}
		settings.Tracker = domain.TrackerSettings{
			JQL:          strings.TrimSpace(cfg[ParamJQL]),
			Fields:       splitList(cfg[ParamIssueFields], ",\n"),
			SearchMethod: domain.SearchMethod(p.SearchMethod),
		}
		if settings.Tracker.SearchMethod == "" {
			settings.Tracker.SearchMethod = domain.SearchGet
		}
	}

	return settings, nil
}

func readParams(cfg map[string]string) (*runParams, error) {
	p := &runParams{
		Home:           strings.TrimSpace(cfg[ParamHome]),
		AuthType:       strings.ToLower(strings.TrimSpace(cfg[ParamAuthType])),
		Username:       cfg[ParamUsername],
		Password:       cfg[ParamPassword],
		ConsumerKey:    cfg[ParamConsumerKey],
		PrivateKey:     cfg[ParamPrivateKey],
		PrivateKeyFile: strings.TrimSpace(cfg[ParamPrivateKeyFile]),
		Token:          cfg[ParamToken],
		Verifier:       cfg[ParamVerifier],
		ProxyHost:      strings.TrimSpace(cfg[ParamProxyHost]),
		SearchMethod:   strings.ToLower(strings.TrimSpace(cfg[ParamSearchMethod])),
	}

	ints := []struct {
		param string
		dst   *int
		def   int
	}{
		{ParamProxyPort, &p.ProxyPort, 0},
		{ParamConnectionTimeout, &p.ConnectionTimeout, 0},
		{ParamReadTimeout, &p.ReadTimeout, 0},
		{ParamThreads, &p.Threads, domain.DefaultThreads},
		{ParamPageSize, &p.PageSize, 0},
		{ParamMaxPages, &p.MaxPages, 0},
	}
	for _, i := range ints {
		v, err := intParam(cfg, i.param, i.def)
		if err != nil {
			return nil, err
		}
		*i.dst = v
	}
	return p, nil
}

func validateParams(p *runParams) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("param")
	})

	err := validate.Struct(p)
	if err == nil {
		if p.AuthType == string(domain.AuthOAuth) && p.PrivateKey == "" && p.PrivateKeyFile == "" {
			return &domain.ConfigError{Param: ParamPrivateKey, Reason: "required", Err: domain.ErrMissingCredential}
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ConfigError{Reason: "invalid configuration", Err: err}
	}
	fe := verrs[0]
	cfgErr := &domain.ConfigError{Param: fe.Field(), Reason: describe(fe)}
	if strings.HasPrefix(fe.Tag(), "required") && strings.Contains(fe.Field(), ".") {
		cfgErr.Err = domain.ErrMissingCredential
	}
	return cfgErr
}

// describe renders a validation failure as a short reason.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "required"
	case "required_with":
		return "required when proxy_port is set"
	case "url":
		return fmt.Sprintf("not an absolute URL: %q", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("out of range: %v", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func clientConfig(p *runParams) (domain.ClientConfig, error) {
	home, err := url.Parse(p.Home)
	if err != nil || home.Scheme == "" || home.Host == "" {
		return domain.ClientConfig{}, domain.NewConfigError(ParamHome, fmt.Sprintf("not an absolute URL: %q", p.Home))
	}

	creds, err := credentials(p)
	if err != nil {
		return domain.ClientConfig{}, err
	}

	cfg := domain.ClientConfig{
		Home:           home,
		Credentials:    creds,
		ConnectTimeout: time.Duration(p.ConnectionTimeout) * time.Millisecond,
		ReadTimeout:    time.Duration(p.ReadTimeout) * time.Millisecond,
	}

	if p.ProxyHost != "" || p.ProxyPort != 0 {
		proxy, err := domain.NewProxy(p.ProxyHost, p.ProxyPort)
		if err != nil {
			return domain.ClientConfig{}, err
		}
		cfg.Proxy = proxy
	}
	return cfg, nil
}

func credentials(p *runParams) (domain.Credentials, error) {
	if domain.AuthType(p.AuthType) == domain.AuthBasic {
		return domain.NewBasicCredentials(p.Username, p.Password)
	}

	pem := p.PrivateKey
	param := ParamPrivateKey
	if pem == "" {
		param = ParamPrivateKeyFile
		data, err := os.ReadFile(p.PrivateKeyFile)
		if err != nil {
			return domain.Credentials{}, &domain.ConfigError{Param: param, Reason: "cannot read key file", Err: err}
		}
		pem = string(data)
	}

	key, err := rest.ParsePrivateKey(pem)
	if err != nil {
		return domain.Credentials{}, &domain.ConfigError{Param: param, Reason: "invalid RSA private key", Err: err}
	}
	return domain.NewOAuthCredentials(p.ConsumerKey, key, p.Token, p.Verifier)
}

func intParam(cfg map[string]string, param string, def int) (int, error) {
	raw := strings.TrimSpace(cfg[param])
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ConfigError{Param: param, Reason: fmt.Sprintf("not an integer: %q", raw)}
	}
	return v, nil
}

func boolParam(cfg map[string]string, param string, def bool) (bool, error) {
	raw := strings.TrimSpace(cfg[param])
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &domain.ConfigError{Param: param, Reason: fmt.Sprintf("not a boolean: %q", raw)}
	}
	return v, nil
}

// fieldExpressions collects field.<name> entries, or the defaults when
// none are configured.
func fieldExpressions(cfg map[string]string) map[string]string {
	fields := make(map[string]string)
	for k, v := range cfg {
		name, ok := strings.CutPrefix(k, FieldPrefix)
		if !ok || name == "" || strings.TrimSpace(v) == "" {
			continue
		}
		fields[name] = strings.TrimSpace(v)
	}
	if len(fields) == 0 {
		return domain.DefaultFields()
	}
	return fields
}

// splitList splits s on any of seps, dropping blanks.
func splitList(s, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
