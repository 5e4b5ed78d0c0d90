package middleware

import (
	"github.com/kart-io/ginsvc/pkg/options"
	"github.com/spf13/pflag"
)

var _ Config = (*BodyParserOptions)(nil)

// BodyParserOptions 定义 JSON 与 URL-encoded 请求体解析器的配置。
type BodyParserOptions struct {
	// JSONLimit JSON 请求体的最大字节数。
	JSONLimit int64 `json:"json-limit" mapstructure:"json-limit" validate:"gt=0"`
	// URLEncodedLimit 表单请求体的最大字节数。
	URLEncodedLimit int64 `json:"urlencoded-limit" mapstructure:"urlencoded-limit" validate:"gt=0"`
	// Strict 只接受对象和数组作为 JSON 顶层值。
	Strict bool `json:"strict" mapstructure:"strict"`
}

// NewBodyParserOptions 创建默认选项（100KB 限制，严格模式）。
func NewBodyParserOptions() *BodyParserOptions {
	return &BodyParserOptions{
		JSONLimit:       100 << 10,
		URLEncodedLimit: 100 << 10,
		Strict:          true,
	}
}

// AddFlags 为请求体解析选项添加标志。
func (o *BodyParserOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.body-parser."

	fs.Int64Var(&o.JSONLimit, prefix+"json-limit", o.JSONLimit, "Maximum JSON request body size in bytes.")
	fs.Int64Var(&o.URLEncodedLimit, prefix+"urlencoded-limit", o.URLEncodedLimit, "Maximum URL-encoded request body size in bytes.")
	fs.BoolVar(&o.Strict, prefix+"strict", o.Strict, "Only accept objects and arrays as JSON bodies.")
}

// Validate 验证请求体解析选项。
func (o *BodyParserOptions) Validate() []error {
	if o == nil {
		return nil
	}
	return options.ValidateStruct("middleware.body-parser.", o)
}

// Complete 完成默认值设置。
func (o *BodyParserOptions) Complete() error {
	return nil
}
