// Package docs holds the OpenAPI description served at /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "423": {"description": "Locked", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "List users",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "email", "in": "query"},
                    {"type": "string", "name": "role", "in": "query"},
                    {"type": "string", "name": "claim_type", "in": "query"},
                    {"type": "string", "name": "claim_value", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userListResponse"}}}
            }
        },
        "/v1/users/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Bulk import users",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.importUserRequest"}}}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get a user by id",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/{id}/roles": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Add a user to a role",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.roleMembershipRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.rolesResponse"}}}
            }
        },
        "/v1/users/{id}/roles/{role}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Remove a user from a role",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "role", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.rolesResponse"}}}
            }
        },
        "/v1/users/{id}/claims": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Add a claim to a user",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.claimRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.claimsResponse"}}}
            }
        },
        "/v1/users/{id}/lockout": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Lock a user out until a point in time",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.lockoutRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.lockoutResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Clear a user's lockout",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.lockoutResponse"}}}
            }
        },
        "/v1/roles": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["roles"],
                "summary": "Create a role",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createRoleRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Role"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Claim": {"type": "object", "properties": {"type": {"type": "string"}, "value": {"type": "string"}}},
        "domain.UserLogin": {"type": "object", "properties": {"login_provider": {"type": "string"}, "provider_key": {"type": "string"}, "provider_display_name": {"type": "string"}}},
        "domain.Role": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "normalized_name": {"type": "string"}}},
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_name": {"type": "string"},
                "normalized_user_name": {"type": "string"},
                "email": {"type": "string"},
                "normalized_email": {"type": "string"},
                "email_confirmed": {"type": "boolean"},
                "phone_number": {"type": "string"},
                "phone_number_confirmed": {"type": "boolean"},
                "two_factor_enabled": {"type": "boolean"},
                "lockout_end": {"type": "string", "format": "date-time"},
                "lockout_enabled": {"type": "boolean"},
                "access_failed_count": {"type": "integer"},
                "claims": {"type": "array", "items": {"$ref": "#/definitions/domain.Claim"}},
                "logins": {"type": "array", "items": {"$ref": "#/definitions/domain.UserLogin"}},
                "roles": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "handler.errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.registerRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "email": {"type": "string"}, "phone_number": {"type": "string"}}},
        "handler.loginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "handler.authResponse": {"type": "object", "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/domain.User"}}},
        "handler.userListResponse": {"type": "object", "properties": {"users": {"type": "array", "items": {"$ref": "#/definitions/domain.User"}}, "count": {"type": "integer"}}},
        "handler.roleMembershipRequest": {"type": "object", "required": ["role"], "properties": {"role": {"type": "string"}}},
        "handler.rolesResponse": {"type": "object", "properties": {"roles": {"type": "array", "items": {"type": "string"}}}},
        "handler.claimRequest": {"type": "object", "required": ["type", "value"], "properties": {"type": {"type": "string"}, "value": {"type": "string"}}},
        "handler.claimsResponse": {"type": "object", "properties": {"claims": {"type": "array", "items": {"$ref": "#/definitions/domain.Claim"}}}},
        "handler.lockoutRequest": {"type": "object", "required": ["until"], "properties": {"until": {"type": "string", "format": "date-time"}}},
        "handler.lockoutResponse": {"type": "object", "properties": {"lockout_end": {"type": "string", "format": "date-time"}, "access_failed_count": {"type": "integer"}}},
        "handler.createRoleRequest": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}},
        "handler.importUserRequest": {
            "type": "object",
            "required": ["username"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "phone_number": {"type": "string"},
                "password": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "claims": {"type": "array", "items": {"$ref": "#/definitions/domain.Claim"}}
            }
        },
        "handler.acceptedResponse": {"type": "object", "properties": {"message": {"type": "string"}, "count": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Identity Store API",
	Description:      "User records, roles and sign-in backed by MongoDB.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
