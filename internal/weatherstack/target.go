package weatherstack

import (
	"fmt"
	"net/url"
	"strings"

	"skyglass/internal/types"
)

// Target turns an operation and its parameters into the URL to request.
// It is chosen once, at construction, from Options.
type Target interface {
	URL(op types.Operation, params url.Values) string
	Proxied() bool
}

// DirectTarget addresses the provider itself: <base>/<op>?access_key=...&params.
type DirectTarget struct {
	BaseURL    *url.URL
	Credential types.SecretString
}

// URL implements Target. The credential always replaces any access_key in
// params.
func (t DirectTarget) URL(op types.Operation, params url.Values) string {
	u := *t.BaseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + string(op)

	q := mergeValues(u.Query(), params)
	q.Set("access_key", t.Credential.Unmask())
	u.RawQuery = q.Encode()
	return u.String()
}

// Proxied implements Target.
func (DirectTarget) Proxied() bool { return false }

// ProxiedTarget addresses the credential-holding proxy:
// <proxy>?endpoint=<op>&params. No credential ever leaves the client.
type ProxiedTarget struct {
	BaseURL *url.URL
}

// URL implements Target. A caller-supplied access_key is dropped and the
// endpoint field always names op.
func (t ProxiedTarget) URL(op types.Operation, params url.Values) string {
	u := *t.BaseURL

	q := mergeValues(u.Query(), params)
	q.Del("access_key")
	q.Set("endpoint", string(op))
	u.RawQuery = q.Encode()
	return u.String()
}

// Proxied implements Target.
func (ProxiedTarget) Proxied() bool { return true }

// NewTarget validates opts and returns the Target it describes.
func NewTarget(opts Options) (Target, error) {
	if opts.BaseURL == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "base URL is required", nil)
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField,
			fmt.Sprintf("base URL %q is not an absolute URL", opts.BaseURL), err)
	}

	if opts.UseProxy {
		return ProxiedTarget{BaseURL: base}, nil
	}
	if opts.Credential.IsEmpty() {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField,
			"a credential is required when not routing through the proxy", nil)
	}
	return DirectTarget{BaseURL: base, Credential: opts.Credential}, nil
}

// mergeValues returns a new url.Values holding base overlaid with extra.
func mergeValues(base, extra url.Values) url.Values {
	out := make(url.Values, len(base)+len(extra))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range extra {
		out[k] = append([]string(nil), v...)
	}
	return out
}
