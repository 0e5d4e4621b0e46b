// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init --v3.1 -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
        },
        "schemas": {
            "ErrorResponse": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean", "example": false},
                    "error": {
                        "type": "object",
                        "properties": {
                            "code": {"type": "string"},
                            "message": {"type": "string"},
                            "request_id": {"type": "string"},
                            "timestamp": {"type": "string", "format": "date-time"},
                            "details": {
                                "type": "array",
                                "items": {
                                    "type": "object",
                                    "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
                                }
                            }
                        }
                    }
                }
            },
            "HandlerLoginRequest": {
                "type": "object",
                "required": ["email", "password"],
                "properties": {
                    "email": {"type": "string", "example": "admin@gym.local"},
                    "password": {"type": "string"}
                }
            },
            "HandlerGenerateReportRequest": {
                "type": "object",
                "required": ["type"],
                "properties": {
                    "type": {"type": "string", "enum": ["financial", "products", "memberships", "transactions"]},
                    "period": {"type": "string", "example": "last-month"},
                    "start_date": {"type": "string", "example": "2024-01-01"},
                    "end_date": {"type": "string", "example": "2024-01-31"},
                    "product": {"type": "string", "example": "Wszystkie"},
                    "archive": {"type": "boolean"}
                }
            }
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "operationId": "loginAuth",
                "tags": ["auth"],
                "summary": "Staff login",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HandlerLoginRequest"}}}},
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}},
                    "401": {"description": "Unauthorized", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "operationId": "logoutAuth",
                "tags": ["auth"],
                "summary": "Logout",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/me": {
            "get": {
                "operationId": "getAuthMe",
                "tags": ["auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/reports": {
            "post": {
                "operationId": "generateReport",
                "tags": ["reports"],
                "summary": "Generate a report",
                "security": [{"BearerAuth": []}],
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HandlerGenerateReportRequest"}}}},
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}},
                    "403": {"description": "Forbidden"},
                    "500": {"description": "Render or write failure", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
                }
            }
        },
        "/reports/types": {
            "get": {"operationId": "listReportTypes", "tags": ["reports"], "summary": "List report types", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/periods": {
            "get": {"operationId": "listReportPeriods", "tags": ["reports"], "summary": "List period presets", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/products": {
            "get": {"operationId": "listReportProducts", "tags": ["reports"], "summary": "List product filter options", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/products/cache": {
            "delete": {"operationId": "invalidateReportProducts", "tags": ["reports"], "summary": "Drop cached product names", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/reports/files/{name}": {
            "get": {
                "operationId": "downloadReport",
                "tags": ["reports"],
                "summary": "Download a generated report",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "name", "in": "path", "required": true, "schema": {"type": "string"}}],
                "responses": {
                    "200": {"description": "PDF file", "content": {"application/pdf": {"schema": {"type": "string", "format": "binary"}}}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/system/info": {
            "get": {"operationId": "getSystemInfo", "tags": ["system"], "summary": "Get system information", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Gym Reports API",
	Description:      "PDF reports for gym finances, products, memberships and transactions",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
