/*
Package curl converts between cURL command text and types.RequestConfig.

# Overview

Three entry points make up the package:
  - IsValidCurlCommand: cheap heuristic gate run before parsing
  - Parser.Parse / ParseCurlCommand: cURL text to RequestConfig
  - GenerateCurlCommand: RequestConfig to cURL text

Parse and Generate are independent transforms. Generate(Parse(x)) is not
guaranteed to return x, and Parse(Generate(cfg)) is not guaranteed to return
cfg: query params are folded into the URL, unsupported Authorization schemes
are dropped, and so on.

# Supported Flags

	--url
	-X, --request
	-H, --header
	-d, --data, --data-raw
	-F, --form
	-A, --user-agent
	-u, --user

Anything else is ignored. Values may be single quoted, double quoted (with
\" and \\ escapes) or bare.

# Parsing

Parsing runs an ordered pipeline of extractors over a working buffer. Each
extractor matches its flag, copies the value into the config, and cuts the
matched span out of the buffer so later extractors cannot see it:

	url -> method -> headers -> data -> form -> user-agent -> user

-u runs last, so it overrides any auth derived from an Authorization header.

# Generation

Output is one flag group per line joined with a backslash continuation and a
two-space indent. All arguments are single quoted verbatim; embedded single
quotes are not escaped.

	curl \
	  -X POST \
	  'https://api.example.com/users?page=1' \
	  -H 'Content-Type: application/json' \
	  -d '{"name":"John"}'

# Concurrency

All functions are pure. A Parser holds only immutable options and may be
shared between goroutines as long as its ids.Generator is safe for
concurrent use (ids.UUID and ids.Sequence both are).
*/
package curl
