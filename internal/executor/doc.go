/*
Package executor sends RequestConfigs over HTTP.

# Overview

Execute resolves {{variables}}, appends enabled query params, applies auth,
encodes the body for its body type and sends the result through a Transport.
The response is returned as types.ResponseData.

# Transports

The network call goes through the Transport interface. NetTransport, the
default, builds a net/http client per request so that each RequestConfig's
sslVerify and followRedirects settings apply to that request only. Tests and
embedders can pass their own implementation with WithTransport:

	exec := executor.New(executor.WithTransport(executor.TransportFunc(
		func(ctx context.Context, req *http.Request, opts executor.Options) (*http.Response, error) {
			return recorded(req), nil
		},
	)))

# Body Encoding

	json                   body as-is, Content-Type application/json unless set
	form-data              multipart/form-data from the enabled formData fields
	x-www-form-urlencoded  formData encoded as a query string
	raw, xml               body as-is, xml defaults to application/xml
	binary, none           no body

GET and HEAD requests never carry a body.

# Errors

Execute does not return errors. Transport failures, invalid URLs and body
read errors produce a response with status 0, status text "Error" and the
error message as the body, which is what the response viewer displays.

# Thread Safety

An Executor is safe for concurrent use.
*/
package executor
