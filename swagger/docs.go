// Package swagger serves the OpenAPI document of the library API.
// The template is maintained by hand next to the handler annotations.
package swagger

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
        "/api/v1/books": {
            "get": {
                "tags": ["books"],
                "summary": "list active books",
                "parameters": [
                    {"type": "string", "description": "title, author or category substring", "name": "search", "in": "query"},
                    {"type": "string", "description": "exact category", "name": "category", "in": "query"},
                    {"type": "boolean", "description": "only books with free copies", "name": "available", "in": "query"},
                    {"type": "integer", "description": "page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "page size", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ListBooks"}}
                }
            }
        },
        "/api/v1/issues": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["issues"],
                "summary": "issue a book to the caller",
                "parameters": [
                    {"description": "book", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.IssueRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Issue"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errs.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errs.ErrorResponse"}}
                }
            }
        },
        "/api/v1/issues/{id}/return": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["issues"],
                "summary": "return an issued book; owner or admin",
                "parameters": [
                    {"type": "string", "description": "issue id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Issue"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errs.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errs.ErrorResponse"}}
                }
            }
        },
        "/api/v1/dashboard/due-alerts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dashboard"],
                "summary": "caller's open issues that are due soon or overdue",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.OverdueAlerts"}}
                }
            }
        },
        "/api/v1/ai/summary": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["ai"],
                "summary": "AI summary of a book, generated once and stored",
                "parameters": [
                    {"description": "book", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SummaryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SummaryResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errs.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errs.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errs.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "retryAfter": {"type": "integer"}
            }
        },
        "model.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "category": {"type": "string"},
                "description": {"type": "string"},
                "aiSummary": {"type": "string"},
                "coverImage": {"type": "string"},
                "totalCopies": {"type": "integer"},
                "availableCopies": {"type": "integer"},
                "isActive": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.ListBooks": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalElements": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/model.Book"}}
            }
        },
        "model.Issue": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "bookId": {"type": "string"},
                "issueDate": {"type": "string"},
                "dueDate": {"type": "string"},
                "returnDate": {"type": "string"},
                "status": {"type": "string", "enum": ["issued", "returned", "overdue"]},
                "fineAmount": {"type": "integer"},
                "penaltyAmount": {"type": "integer"},
                "penaltyPaid": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.IssueRequest": {
            "type": "object",
            "required": ["bookId"],
            "properties": {
                "bookId": {"type": "string"}
            }
        },
        "model.OverdueAlerts": {
            "type": "object",
            "properties": {
                "dueSoon": {"type": "array", "items": {"$ref": "#/definitions/model.Issue"}},
                "overdue": {"type": "array", "items": {"$ref": "#/definitions/model.Issue"}}
            }
        },
        "model.SummaryRequest": {
            "type": "object",
            "required": ["bookId"],
            "properties": {
                "bookId": {"type": "string"}
            }
        },
        "model.SummaryResponse": {
            "type": "object",
            "properties": {
                "summary": {"type": "string"},
                "cached": {"type": "boolean"},
                "message": {"type": "string"}
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
	Title:            "smart-library API",
	Description:      "Book catalog, issue/return ledger and overdue tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
