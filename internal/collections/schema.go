package collections

// collectionSchema validates imported files. A file holds one collection or a list of them.
const collectionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "pair": {
      "type": "object",
      "required": ["key"],
      "properties": {
        "id": {"type": "string"},
        "key": {"type": "string"},
        "value": {"type": "string"},
        "enabled": {"type": "boolean"},
        "description": {"type": "string"}
      }
    },
    "pairs": {
      "type": ["array", "null"],
      "items": {"$ref": "#/definitions/pair"}
    },
    "request": {
      "type": "object",
      "required": ["method", "url"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "method": {"enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "CUSTOM"]},
        "customMethod": {"type": "string"},
        "url": {"type": "string"},
        "headers": {"$ref": "#/definitions/pairs"},
        "queryParams": {"$ref": "#/definitions/pairs"},
        "bodyType": {"enum": ["none", "json", "xml", "form-data", "x-www-form-urlencoded", "raw", "binary"]},
        "body": {"type": "string"},
        "formData": {"$ref": "#/definitions/pairs"},
        "auth": {
          "type": "object",
          "properties": {
            "type": {"enum": ["none", "bearer", "basic", "api-key", "custom"]},
            "apiKeyLocation": {"enum": ["header", "query"]}
          }
        },
        "sslVerify": {"type": "boolean"},
        "followRedirects": {"type": "boolean"}
      }
    },
    "collection": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "requests": {
          "type": ["array", "null"],
          "items": {"$ref": "#/definitions/request"}
        },
        "folders": {
          "type": ["array", "null"],
          "items": {"$ref": "#/definitions/collection"}
        }
      }
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/collection"},
    {"type": "array", "items": {"$ref": "#/definitions/collection"}}
  ]
}`
