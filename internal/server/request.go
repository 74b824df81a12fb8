package server

import (
	"github.com/valyala/fastjson"

	"github.com/mowind/rdsauth-go/internal/config"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
	"github.com/mowind/rdsauth-go/internal/utils"
)

var defaultPool fastjson.ParserPool

// tokenRequest is the parsed /token request body.
type tokenRequest struct {
	User string
	Host string
	Port int
}

// parseTokenRequest parses and validates a /token body. Missing fields fall
// back to the configured database target; an empty body is therefore valid
// when the target is fully configured.
func parseTokenRequest(body []byte, defaults *config.DBConfig) (*tokenRequest, error) {
	req := &tokenRequest{
		User: defaults.User,
		Host: defaults.Host,
		Port: defaults.Port,
	}

	if len(body) > 0 {
		p := defaultPool.Get()
		defer defaultPool.Put(p)

		v, err := p.ParseBytes(body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeInput, "invalid JSON body")
		}
		if u := v.GetStringBytes("user"); len(u) > 0 {
			req.User = string(u)
		}
		if h := v.GetStringBytes("host"); len(h) > 0 {
			req.Host = string(h)
		}
		if v.Exists("port") {
			req.Port = v.GetInt("port")
		}
	}

	switch {
	case !utils.IsValidDBUser(req.User):
		return nil, apperrors.New(apperrors.ErrorTypeInput, "user is missing or not encodable")
	case !utils.IsValidHostname(req.Host):
		return nil, apperrors.New(apperrors.ErrorTypeInput, "host is missing or malformed")
	case !utils.IsValidPort(req.Port):
		return nil, apperrors.New(apperrors.ErrorTypeInput, "port must be between 1 and 65535")
	}
	return req, nil
}
