package middleware

import (
	"errors"

	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*CookieOptions)(nil)

// CookieOptions configures the cookie parser.
//
// Secret signs outgoing cookies and verifies incoming ones. Secrets lists
// older secrets that are still accepted during rotation.
type CookieOptions struct {
	Secret  string   `json:"secret" mapstructure:"secret"`
	Secrets []string `json:"secrets" mapstructure:"secrets"`
	// Decode URL-decodes cookie values (on by default).
	Decode bool `json:"decode" mapstructure:"decode"`
}

// NewCookieOptions creates cookie options without a secret. A secret must
// be set before the options pass validation.
func NewCookieOptions() *CookieOptions {
	return &CookieOptions{
		Decode: true,
	}
}

// AddFlags adds flags for cookie options to the specified FlagSet.
func (o *CookieOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.cookie."

	fs.StringVar(&o.Secret, prefix+"secret", o.Secret, "Secret used to sign and verify cookies.")
	fs.StringSliceVar(&o.Secrets, prefix+"secrets", o.Secrets, "Previous cookie secrets still accepted for verification.")
	fs.BoolVar(&o.Decode, prefix+"decode", o.Decode, "URL-decode cookie values.")
}

// Validate validates the cookie options.
func (o *CookieOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Secret == "" {
		errs = append(errs, errors.New("middleware.cookie.secret: required when cookie options are given"))
	}
	for _, s := range o.Secrets {
		if s == "" {
			errs = append(errs, errors.New("middleware.cookie.secrets: empty secret not allowed"))
			break
		}
	}
	return errs
}

// Complete completes the cookie options with defaults.
func (o *CookieOptions) Complete() error {
	return nil
}

// AllSecrets returns Secret followed by Secrets.
func (o *CookieOptions) AllSecrets() []string {
	if o == nil || o.Secret == "" {
		return nil
	}
	return append([]string{o.Secret}, o.Secrets...)
}
