package converter

import (
	"testing"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/types"
)

const sampleHAR = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "Firefox", "version": "120"},
    "entries": [
      {"request": {
        "method": "GET",
        "url": "https://api.example.com/users?page=2",
        "headers": [
          {"name": ":authority", "value": "api.example.com"},
          {"name": "Accept", "value": "application/json"},
          {"name": "Cookie", "value": "sid=1"},
          {"name": "Authorization", "value": "Bearer abc"}
        ],
        "queryString": [{"name": "page", "value": "2"}]
      }},
      {"request": {
        "method": "POST",
        "url": "https://api.example.com/login",
        "headers": [],
        "postData": {"mimeType": "application/x-www-form-urlencoded", "text": "user=ada&pass=s%20t"}
      }},
      {"request": {
        "method": "PUT",
        "url": "https://api.example.com/users/1",
        "headers": [],
        "postData": {"mimeType": "application/json", "text": "{\"a\":1}"}
      }},
      {"request": {"method": "GET", "url": "data:image/png;base64,xx", "headers": []}},
      {"request": {"method": "PURGE", "url": "https://cdn.example.com/x", "headers": []}}
    ]
  }
}`

func TestFromHAR(t *testing.T) {
	coll, skipped, err := FromHAR([]byte(sampleHAR), HAROptions{IDs: ids.NewSequence("h")})
	if err != nil {
		t.Fatalf("FromHAR failed: %v", err)
	}

	if coll.Name != "Firefox import" {
		t.Errorf("Expected creator-based name, got %s", coll.Name)
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped entry, got %d", skipped)
	}
	if len(coll.Requests) != 4 {
		t.Fatalf("Expected 4 requests, got %d", len(coll.Requests))
	}

	get := coll.Requests[0]
	if get.URL != "https://api.example.com/users" || len(get.QueryParams) != 1 || get.QueryParams[0].Value != "2" {
		t.Errorf("Expected query split from URL, got %s %+v", get.URL, get.QueryParams)
	}
	if len(get.Headers) != 1 || get.Headers[0].Key != "Accept" {
		t.Errorf("Expected only Accept header, got %+v", get.Headers)
	}
	if get.Auth.Type != types.AuthNone {
		t.Errorf("Expected credentials dropped, got %+v", get.Auth)
	}
	if get.Name != "GET /users" {
		t.Errorf("Unexpected name %s", get.Name)
	}

	login := coll.Requests[1]
	if login.BodyType != types.BodyFormURLEncoded || len(login.FormData) != 2 {
		t.Fatalf("Expected urlencoded form, got %+v", login)
	}
	if login.FormData[0].Key != "user" || login.FormData[1].Value != "s t" {
		t.Errorf("Unexpected form fields %+v", login.FormData)
	}

	put := coll.Requests[2]
	if put.Method != types.MethodPut || put.BodyType != types.BodyJSON || put.Body != `{"a":1}` {
		t.Errorf("Unexpected json request %+v", put)
	}

	purge := coll.Requests[3]
	if purge.Method != types.MethodCustom || purge.CustomMethod != "PURGE" {
		t.Errorf("Expected custom method, got %s %s", purge.Method, purge.CustomMethod)
	}
}

func TestFromHAR_Options(t *testing.T) {
	coll, skipped, err := FromHAR([]byte(sampleHAR), HAROptions{Name: "API", Filter: "/users", ImportHeaders: true})
	if err != nil {
		t.Fatalf("FromHAR failed: %v", err)
	}
	if coll.Name != "API" || len(coll.Requests) != 2 || skipped != 3 {
		t.Fatalf("Unexpected result %s %d %d", coll.Name, len(coll.Requests), skipped)
	}

	get := coll.Requests[0]
	if get.Auth.Type != types.AuthBearer || get.Auth.Token != "abc" {
		t.Errorf("Expected bearer auth, got %+v", get.Auth)
	}
	if len(get.Headers) != 2 {
		t.Errorf("Expected Accept and Cookie headers, got %+v", get.Headers)
	}
}

func TestFromHAR_Errors(t *testing.T) {
	if _, _, err := FromHAR([]byte("{"), HAROptions{}); err == nil {
		t.Error("Expected parse error")
	}
	if _, _, err := FromHAR([]byte(`{"log":{"entries":[]}}`), HAROptions{}); err == nil {
		t.Error("Expected error for empty HAR")
	}
}
