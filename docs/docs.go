// Package docs holds the OpenAPI document served at /swagger. Regenerate it
// with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag/v2"

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
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/plans": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "List plans", "operationId": "listPlans",
                "parameters": [
                    {"enum": ["DRAFT", "ACTIVE", "DEPRECATED", "CANCELLED"], "type": "string", "name": "state", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Create a plan", "operationId": "createPlan",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePlanRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/plans/recalculate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Recalculate a plan", "operationId": "recalculatePlans",
                "description": "Rebuilds the lines of exactly one plan. More than one id is refused with MULTIPLE_PLANS.",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecalculateRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/Response"}}, "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/plans/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Plan event stream", "operationId": "streamPlanEvents",
                "description": "Websocket upgrade. Browsers may pass the token as access_token.",
                "responses": {"101": {"description": "Switching Protocols"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/plans/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Get a plan", "operationId": "getPlan",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Response"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Update a plan", "operationId": "updatePlan",
                "parameters": [{"$ref": "#/parameters/id"}, {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePlanRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/plans/{id}/activate": {"post": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Activate a plan", "operationId": "activatePlan", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/plans/{id}/deprecate": {"post": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Deprecate a plan", "operationId": "deprecatePlan", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/plans/{id}/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Cancel a plan", "operationId": "cancelPlan", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/plans/{id}/recalculate": {"post": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Recalculate one plan", "operationId": "recalculatePlan", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/plans/{id}/summary": {"get": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Plan health counts", "operationId": "getPlanSummary", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/plans/{id}/lines": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "List plan lines", "operationId": "listPlanLines",
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"enum": ["valid", "late", "without_stock", "excess"], "type": "string", "name": "kind", "in": "query"},
                    {"type": "string", "format": "uuid", "name": "product_id", "in": "query"},
                    {"type": "integer", "name": "min_lag", "in": "query"},
                    {"type": "integer", "name": "max_lag", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/plans/{id}/lines/by-request/{requestId}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Lines touching a transfer request", "operationId": "listPlanLinesByRequest",
                "parameters": [{"$ref": "#/parameters/id"}, {"type": "string", "format": "uuid", "name": "requestId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/plans/{id}/export": {"post": {"security": [{"BearerAuth": []}], "tags": ["plans"], "summary": "Export plan lines as CSV", "operationId": "exportPlanLines", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}, "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/areas": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["areas"], "summary": "List storage areas", "operationId": "listAreas", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["areas"], "summary": "Create a storage area", "operationId": "createArea", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/areas/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["areas"], "summary": "Get a storage area", "operationId": "getArea", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["areas"], "summary": "Update a storage area", "operationId": "updateArea", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/areas/{id}/ledger": {"get": {"security": [{"BearerAuth": []}], "tags": ["stock"], "summary": "Stock ledger of an area", "operationId": "listLedger", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/locations": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["areas"], "summary": "List locations", "operationId": "listLocations", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["areas"], "summary": "Create a location", "operationId": "createLocation", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/transfers": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "List transfer requests", "operationId": "listTransfers", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Create a transfer request", "operationId": "createTransfer", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/transfers/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Get a transfer request", "operationId": "getTransfer", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/transfers/{id}/assign": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Assign a transfer", "operationId": "assignTransfer", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/transfers/{id}/unassign": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Return a transfer to draft", "operationId": "unassignTransfer", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/transfers/{id}/complete": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Complete a transfer", "operationId": "completeTransfer", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/transfers/{id}/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Cancel a transfer", "operationId": "cancelTransfer", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/transfers/{id}/reschedule": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Change the planned date", "operationId": "rescheduleTransfer", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}},
        "/stock/on-hand": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["stock"], "summary": "On-hand quantities", "operationId": "getOnHand",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "area_id", "in": "query", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "product_id", "in": "query"},
                    {"type": "string", "name": "as_of", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Response"}}}}
        },
        "/stock/adjustments": {"post": {"security": [{"BearerAuth": []}], "tags": ["stock"], "summary": "Record a stock adjustment", "operationId": "recordAdjustment", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Response"}}}}}
    },
    "parameters": {
        "id": {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}
    },
    "definitions": {
        "Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/ErrorInfo"},
                "meta": {"$ref": "#/definitions/Meta"}
            }
        },
        "ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "MULTIPLE_PLANS"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "details": {"type": "array", "items": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}}}}
            }
        },
        "Meta": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "CreatePlanRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 200},
                "description": {"type": "string", "maxLength": 1000},
                "include_excess": {"type": "boolean"}
            }
        },
        "UpdatePlanRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 200},
                "description": {"type": "string", "maxLength": 1000},
                "include_excess": {"type": "boolean"}
            }
        },
        "RecalculateRequest": {
            "type": "object",
            "required": ["plan_ids"],
            "properties": {
                "plan_ids": {"type": "array", "items": {"type": "string", "format": "uuid"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Stock Plan API",
	Description:      "Stock-plan reconciliation: allocates transfer demand against on-hand and incoming stock per storage area.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
