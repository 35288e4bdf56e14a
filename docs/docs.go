// Package docs registers the OpenAPI document served under /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["meta"],
                "summary": "Service banner",
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Dependency health",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Session token verification keys",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/security.JWKSet"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResp"}}
                }
            }
        },
        "/register": {
            "post": {
                "description": "Creates an account and returns a session token. Extra body fields are ignored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register user",
                "parameters": [
                    {"description": "email and password", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/credentialsReq"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResp"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResp"}}
                }
            }
        },
        "/login": {
            "get": {
                "description": "Credentials come from a JSON body when one is sent, otherwise from the query string.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "email and password", "name": "payload", "in": "body", "schema": {"$ref": "#/definitions/credentialsReq"}},
                    {"type": "string", "description": "email", "name": "email", "in": "query"},
                    {"type": "string", "description": "password", "name": "password", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResp"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResp"}}
                }
            },
            "post": {
                "description": "Credentials come from a JSON body when one is sent, otherwise from the query string.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "email and password", "name": "payload", "in": "body", "schema": {"$ref": "#/definitions/credentialsReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResp"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResp"}}
                }
            }
        },
        "/radioStations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stations"],
                "summary": "List stations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object", "additionalProperties": true}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResp"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stations"],
                "summary": "Insert or update station by id",
                "parameters": [
                    {"description": "station document with id", "name": "payload", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": true}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/repo.UpsertResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResp"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResp"}}
                }
            }
        },
        "/radioStation": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "A bearer token is checked when present; anonymous callers are accepted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stations"],
                "summary": "Create station",
                "parameters": [
                    {"description": "station document", "name": "payload", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": true}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/repo.InsertResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResp"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResp"}}
                }
            }
        }
    },
    "definitions": {
        "errorResp": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "credentialsReq": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "domain.PublicUser": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}}
        },
        "auth.Result": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/domain.PublicUser"}}
        },
        "repo.InsertResult": {
            "type": "object",
            "properties": {"acknowledged": {"type": "boolean"}, "insertedId": {}}
        },
        "repo.UpsertResult": {
            "type": "object",
            "properties": {
                "acknowledged": {"type": "boolean"},
                "matchedCount": {"type": "integer"},
                "modifiedCount": {"type": "integer"},
                "upsertedCount": {"type": "integer"},
                "upsertedId": {}
            }
        },
        "security.JWK": {
            "type": "object",
            "properties": {
                "kty": {"type": "string"}, "kid": {"type": "string"}, "use": {"type": "string"},
                "alg": {"type": "string"}, "n": {"type": "string"}, "e": {"type": "string"}
            }
        },
        "security.JWKSet": {
            "type": "object",
            "properties": {"keys": {"type": "array", "items": {"$ref": "#/definitions/security.JWK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Radio Station Directory API",
	Description:      "Accounts and radio station CRUD.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
