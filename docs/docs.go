// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup/student": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign up as a student",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.StudentSignUpRequest"}}],
                "responses": {
                    "201": {"description": "data contains token and user", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request or conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/signup/organizer": {
            "post": {
                "tags": ["auth"],
                "summary": "Request an organizer account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.OrganizerSignUpRequest"}}],
                "responses": {
                    "201": {"description": "data contains message and user", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request or conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}],
                "responses": {
                    "200": {"description": "data contains token and user", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized or account_pending", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Log out",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get the current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["events"],
                "summary": "List upcoming events",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "data contains items and pagination", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Create an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "event", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateEventRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/mine": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "List events owned by the caller",
                "produces": ["application/json"],
                "responses": {"200": {"description": "data contains the events", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            }
        },
        "/events/{eventID}": {
            "get": {
                "tags": ["events"],
                "summary": "Get an event by ID",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Update an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true},
                    {"in": "body", "name": "event", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Delete an event",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "data contains message and registrations_removed", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventID}/register": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["registrations"],
                "summary": "Register for an event",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: event_full, already_registered or registration_closed", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["registrations"],
                "summary": "Unregister from an event",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_registered", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventID}/attendees": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["registrations"],
                "summary": "List attendees of an event",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/registrations/my-events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["registrations"],
                "summary": "List events the caller is registered for",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            }
        },
        "/certificates/events/{eventID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["certificates"],
                "summary": "Download a participation certificate",
                "produces": ["application/pdf"],
                "parameters": [{"type": "string", "description": "Event ID (UUID)", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "certificate PDF", "schema": {"type": "file"}},
                    "400": {"description": "error.code: event_not_yet_occurred", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: not_registered", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/superadmin/organizer-requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["superadmin"],
                "summary": "List pending organizer requests",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            }
        },
        "/superadmin/organizer-requests/{userID}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["superadmin"],
                "summary": "Approve an organizer request",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "User ID (UUID)", "name": "userID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/superadmin/organizer-requests/{userID}/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["superadmin"],
                "summary": "Reject an organizer request",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "User ID (UUID)", "name": "userID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.StudentSignUpRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "university": {"type": "string"},
                "department": {"type": "string"},
                "academic_year": {"type": "string"},
                "student_id": {"type": "string"}
            }
        },
        "controllers.OrganizerSignUpRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "university": {"type": "string"},
                "club_name": {"type": "string"},
                "club_position": {"type": "string"},
                "club_website": {"type": "string"}
            }
        },
        "controllers.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "controllers.CreateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "location": {"type": "string"},
                "category": {"type": "string"},
                "image_url": {"type": "string"},
                "capacity": {"type": "integer"}
            }
        },
        "controllers.UpdateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "location": {"type": "string"},
                "category": {"type": "string"},
                "image_url": {"type": "string"},
                "capacity": {"type": "integer"},
                "clear_capacity": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Campus Events API",
	Description:      "University event management: events, registrations with capacity enforcement, and participation certificates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
