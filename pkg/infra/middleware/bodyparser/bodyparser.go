// Package bodyparser decodes JSON and URL-encoded request bodies ahead of
// the routes and keeps the raw bytes readable for handlers that bind again.
package bodyparser

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/ginsvc/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/ginsvc/pkg/options/middleware"
	apierrors "github.com/kart-io/ginsvc/pkg/utils/errors"
	"github.com/kart-io/ginsvc/pkg/utils/json"
)

var errNotStrict = errors.New("strict mode only accepts objects and arrays")

// JSON returns the JSON body parser.
func JSON(opts *mwopts.BodyParserOptions) gin.HandlerFunc {
	if opts == nil {
		opts = mwopts.NewBodyParserOptions()
	}
	limit, strict := opts.JSONLimit, opts.Strict

	return func(c *gin.Context) {
		if !isJSON(c.ContentType()) {
			c.Next()
			return
		}
		raw, ok := readLimited(c, limit)
		if !ok {
			return
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			c.Next()
			return
		}
		if strict && !startsCompound(raw) {
			common.AbortWithError(c, apierrors.ErrInvalidBody.WithCause(errNotStrict))
			return
		}

		var body any
		if err := json.Unmarshal(raw, &body); err != nil {
			common.AbortWithError(c, apierrors.ErrInvalidBody.WithCause(err))
			return
		}
		c.Set(common.KeyBody, body)
		c.Next()
	}
}

// URLEncoded returns the application/x-www-form-urlencoded body parser.
// Single-valued keys map to a string, repeated keys to []string.
func URLEncoded(opts *mwopts.BodyParserOptions) gin.HandlerFunc {
	if opts == nil {
		opts = mwopts.NewBodyParserOptions()
	}
	limit := opts.URLEncodedLimit

	return func(c *gin.Context) {
		if c.ContentType() != gin.MIMEPOSTForm {
			c.Next()
			return
		}
		raw, ok := readLimited(c, limit)
		if !ok {
			return
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			common.AbortWithError(c, apierrors.ErrInvalidBody.WithCause(err))
			return
		}

		body := make(map[string]any, len(values))
		for k, v := range values {
			if len(v) == 1 {
				body[k] = v[0]
				continue
			}
			body[k] = v
		}
		c.Set(common.KeyBody, body)
		c.Next()
	}
}

// Body returns the parsed body, or nil when none was parsed.
func Body(c *gin.Context) any {
	v, _ := c.Get(common.KeyBody)
	return v
}

// readLimited reads at most limit bytes and puts them back on the request.
func readLimited(c *gin.Context, limit int64) ([]byte, bool) {
	if c.Request.Body == nil {
		return nil, true
	}
	if c.Request.ContentLength > limit {
		common.AbortWithError(c, apierrors.ErrBodyTooLarge.WithMessagef("Request body exceeds %d bytes", limit))
		return nil, false
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	_ = c.Request.Body.Close()
	if err != nil {
		common.AbortWithError(c, apierrors.ErrInvalidBody.WithCause(err))
		return nil, false
	}
	if int64(len(raw)) > limit {
		common.AbortWithError(c, apierrors.ErrBodyTooLarge.WithMessagef("Request body exceeds %d bytes", limit))
		return nil, false
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, true
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = contentType
	}
	return mt == gin.MIMEJSON || strings.HasSuffix(mt, "+json")
}

func startsCompound(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
