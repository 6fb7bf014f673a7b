// Package docs is generated by swaggo/swag from the handler annotations.
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
        "/ai/status": {
            "get": {"produces": ["application/json"], "tags": ["AI"], "summary": "Provider status",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.ProviderStatus"}}}}}
        },
        "/events": {
            "get": {"produces": ["application/json"], "tags": ["Events"], "summary": "Search events",
                "parameters": [
                    {"type": "string", "name": "city", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "tags", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.EventsPage"}}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["Events"], "summary": "Create an event",
                "parameters": [{"name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateEventRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Response"}}}}
        },
        "/itinerary": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["Itinerary"], "summary": "Compose a one-day itinerary",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ItineraryRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ItineraryResponse"}}}}
        },
        "/itinerary/{id}": {
            "get": {"produces": ["application/json"], "tags": ["Itinerary"], "summary": "Get a stored itinerary",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StoredItinerary"}}}}
        },
        "/recommendations": {
            "get": {"produces": ["application/json"], "tags": ["Recommendations"], "summary": "Rank events for a session",
                "parameters": [
                    {"type": "string", "name": "city", "in": "query"},
                    {"type": "string", "name": "date", "in": "query"},
                    {"type": "string", "name": "session_id", "in": "query"},
                    {"type": "boolean", "name": "explain", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RecommendationsResponse"}}}}
        },
        "/user/interactions": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["User"], "summary": "Record an interaction",
                "parameters": [{"name": "interaction", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.InteractionRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Response"}}}}
        },
        "/user/interests": {
            "get": {"produces": ["application/json"], "tags": ["User"], "summary": "Get a session's interest vector",
                "parameters": [{"type": "string", "name": "session_id", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "number"}}}}}
        },
        "/helpers/register": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["Helpers"], "summary": "Register a local helper",
                "parameters": [{"name": "helper", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterHelperRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Response"}}}}
        },
        "/helpers/search": {
            "get": {"produces": ["application/json"], "tags": ["Helpers"], "summary": "Search verified helpers",
                "parameters": [{"type": "string", "name": "city", "in": "query"}, {"type": "string", "name": "skills", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HelperSearchResponse"}}}}
        },
        "/helpers/reviews": {
            "get": {"produces": ["application/json"], "tags": ["Helpers"], "summary": "List a helper's reviews",
                "parameters": [{"type": "string", "name": "helper_id", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ReviewsResponse"}}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["Helpers"], "summary": "Review a helper",
                "parameters": [{"name": "review", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateReviewRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/types.ReviewResponse"}}}}
        }
    },
    "definitions": {
        "types.ProviderStatus": {"type": "object", "properties": {"name": {"type": "string"}, "configured": {"type": "boolean"}, "role": {"type": "string"}}},
        "types.Response": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "id": {"type": "string"}}},
        "types.EventsPage": {"type": "object"},
        "types.CreateEventRequest": {"type": "object"},
        "types.ItineraryRequest": {"type": "object"},
        "types.ItineraryResponse": {"type": "object"},
        "types.StoredItinerary": {"type": "object"},
        "types.RecommendationsResponse": {"type": "object"},
        "types.InteractionRequest": {"type": "object"},
        "types.RegisterHelperRequest": {"type": "object"},
        "types.HelperSearchResponse": {"type": "object"},
        "types.CreateReviewRequest": {"type": "object"},
        "types.ReviewResponse": {"type": "object"},
        "types.ReviewsResponse": {"type": "object"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Wahkip API",
	Description:      "Event discovery, recommendations and one-day itineraries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
