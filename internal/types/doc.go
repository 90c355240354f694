/*
Package types defines the data model shared by every restforge package.

# Overview

The types package provides:
  - RequestConfig: one request definition (method, URL, headers, params, body, auth)
  - KeyValuePair: ordered, individually enabled entries for headers, params and form fields
  - AuthConfig: bearer, basic, api-key and custom credentials
  - ResponseData: what the response viewer shows
  - RequestHistoryItem, Collection, Environment, AppSettings, Tab: persisted state

# Field Tags

All types carry JSON and YAML tags. JSON keys are camelCase and match the
format written to the local store, so data exported by one version can be
imported by another.

# Ordering

Headers, QueryParams and FormData are slices, not maps. Insertion order is
preserved and is the order used when a request is sent or serialized to a
cURL command.

# Example Structures

RequestConfig:
	{
	  "id": "9b1c...",
	  "name": "Create User",
	  "method": "POST",
	  "url": "{{baseUrl}}/users",
	  "headers": [
	    {"id": "h1", "key": "Content-Type", "value": "application/json", "enabled": true}
	  ],
	  "queryParams": [],
	  "bodyType": "json",
	  "body": "{\"name\":\"John\"}",
	  "auth": {"type": "bearer", "token": "{{token}}"},
	  "sslVerify": true,
	  "followRedirects": true
	}
*/
package types
