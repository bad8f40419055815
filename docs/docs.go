// Package docs registers the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a user",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/RegisterInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "409": {"description": "Email or nickname taken"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in and receive a bearer token",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/LoginInput"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/users/me": {
            "get": {
                "tags": ["users"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/users/{userID}": {
            "get": {
                "tags": ["users"],
                "summary": "User profile",
                "parameters": [{"in": "path", "name": "userID", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}, "404": {"description": "Not found"}}
            }
        },
        "/tournaments": {
            "get": {
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"in": "query", "name": "owner_id", "type": "integer"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["not_started", "in_progress", "completed"]},
                    {"in": "query", "name": "format", "type": "string", "enum": ["SingleElimination", "RoundRobin", "SwissStage"]},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/CreateTournamentInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}
            }
        },
        "/tournaments/{tournamentID}": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Tournament with participants and matches",
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/tournaments/{tournamentID}/participants": {
            "get": {
                "tags": ["participants"],
                "summary": "List participants",
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentID}/join": {
            "post": {
                "tags": ["participants"],
                "summary": "Join a tournament",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Already joined or registration closed"}}
            }
        },
        "/tournaments/{tournamentID}/start": {
            "post": {
                "tags": ["tournaments"],
                "summary": "Start a tournament and generate its opening matches",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Not the owner"}, "409": {"description": "Wrong state"}}
            }
        },
        "/tournaments/{tournamentID}/matches/generate": {
            "post": {
                "tags": ["matches"],
                "summary": "Regenerate the opening schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Wrong state"}}
            }
        },
        "/tournaments/{tournamentID}/rounds/next": {
            "post": {
                "tags": ["matches"],
                "summary": "Pair the next Swiss round",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Round incomplete or all rounds generated"}}
            }
        },
        "/tournaments/{tournamentID}/complete": {
            "post": {
                "tags": ["tournaments"],
                "summary": "Complete a tournament and apply rating changes",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "No winner yet"}}
            }
        },
        "/tournaments/{tournamentID}/matches": {
            "get": {
                "tags": ["matches"],
                "summary": "List matches",
                "parameters": [{"in": "path", "name": "tournamentID", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/matches/{matchID}/winner": {
            "post": {
                "tags": ["matches"],
                "summary": "Record a match winner",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "matchID", "type": "integer", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"type": "object", "properties": {"winner_id": {"type": "integer"}}}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Winner not in match or next match full"}, "409": {"description": "Match already completed"}}
            }
        }
    },
    "definitions": {
        "RegisterInput": {
            "type": "object",
            "properties": {"nickname": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "LoginInput": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "CreateTournamentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "format": {"type": "string", "enum": ["SingleElimination", "RoundRobin", "SwissStage"]},
                "round_count": {"type": "integer"},
                "start_date": {"type": "string", "format": "date-time"},
                "location": {"type": "string"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "nickname": {"type": "string"},
                "email": {"type": "string"},
                "rating": {"type": "integer"},
                "tournaments_played": {"type": "integer"},
                "tournaments_won": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tournament Engine API",
	Description:      "Bracket generation, pairing and results for competitive tournaments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
