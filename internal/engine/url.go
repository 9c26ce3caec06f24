package engine

import (
	"modernc.org/libc"
	lib "modernc.org/libquickjs"

	"github.com/nlnwa/whatwg-url/url"
)

// installURL registers a WHATWG-URL-conformant URL builtin, backed by the
// same parser the teacher's internal/webapi/urlpattern.go pulled in only
// as a URLPattern dependency — promoted here to back URL itself, since
// spec §4.9/§6 requires the guest-visible URL class to follow the WHATWG
// parsing algorithm rather than a hand-rolled regex split.
func (e *Engine) installURL(global lib.TJSValue) error {
	parser := url.NewParser()

	ctor := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
		args := lib.ArgSlice(argv, argc)
		if len(args) == 0 {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "URL: 1 argument required")
		}
		raw := e.goString(args[0])
		var base *url.Url
		if len(args) > 1 && lib.XJS_IsUndefined(args[1]) == 0 {
			b, err := parser.Parse(e.goString(args[1]))
			if err != nil {
				return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "URL: invalid base %q", e.goString(args[1]))
			}
			base = b
		}

		var parsed *url.Url
		var err error
		if base != nil {
			parsed, err = parser.ParseRef(base.Href(false), raw)
		} else {
			parsed, err = parser.Parse(raw)
		}
		if err != nil {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "URL: invalid URL %q", raw)
		}

		obj := lib.XJS_NewObject(e.h.tls, e.h.ctx)
		fields := map[string]string{
			"href":     parsed.Href(false),
			"protocol": parsed.Protocol(),
			"host":     parsed.Host(),
			"hostname": parsed.Hostname(),
			"port":     parsed.Port(),
			"pathname": parsed.Pathname(),
			"search":   parsed.Search(),
			"hash":     parsed.Hash(),
			"username": parsed.Username(),
			"password": parsed.Password(),
			"origin":   parsed.Origin(),
		}
		for name, value := range fields {
			if err := e.h.setPropertyStr(obj, name, lib.XJS_NewString(e.h.tls, e.h.ctx, value)); err != nil {
				return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "URL: setting %s: %v", name, err)
			}
		}

		toStringFn := func(ctx uintptr, this lib.TJSValue, argc int32, argv uintptr) lib.TJSValue {
			return lib.XJS_NewString(e.h.tls, e.h.ctx, parsed.Href(false))
		}
		fnPtr := libc.NewCallback(toStringFn)
		if err := e.h.setNativeFunction(obj, "toString", fnPtr, 0); err != nil {
			return lib.XJS_ThrowTypeError(e.h.tls, e.h.ctx, "URL: %v", err)
		}
		return obj
	}
	ctorPtr := libc.NewCallback(ctor)
	return e.h.setNativeFunction(global, "URL", ctorPtr, 1)
}
