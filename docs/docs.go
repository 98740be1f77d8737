// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/items/{id}": {
            "get": {
                "tags": ["items"],
                "summary": "아이템 조회 (미발행 글은 관리자 또는 preview_token)",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "preview_token", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/items/{id}/versions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["versions"],
                "summary": "버전 이력 조회 (최신순, 최대 3개)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/items/{id}/versions/{versionId}/restore": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["versions"],
                "summary": "버전 복원",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "versionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/terms/{kind}": {
            "get": {
                "tags": ["terms"],
                "summary": "카테고리/태그 목록",
                "parameters": [{"type": "string", "name": "kind", "in": "path", "required": true, "enum": ["category", "tag"]}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/preview/issue": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["preview"],
                "summary": "미리보기 토큰 발급 (관리자)",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.IssuePreviewRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/preview/verify": {
            "post": {
                "tags": ["preview"],
                "summary": "미리보기 토큰 검증",
                "description": "만료/위조 토큰은 401, 다른 아이템용 토큰은 403",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.VerifyPreviewRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/admin/items": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "상태별 아이템 목록",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "초안 작성",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateItemRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/admin/items/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "아이템 수정",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UpdateItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/admin/items/{id}/schedule": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "예약 발행 설정",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ScheduleItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/admin/items/{id}/status": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "상태 전환",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/admin/terms/{kind}/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["terms"],
                "summary": "카테고리/태그 이름 변경 (관리자)",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}}
            }
        },
        "/admin/scheduler/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["scheduler"],
                "summary": "스케줄러 작업 현황",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}}
            }
        },
        "/admin/scheduler/{interval}/run": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["scheduler"],
                "summary": "주기 작업 즉시 실행",
                "parameters": [
                    {"type": "string", "name": "interval", "in": "path", "required": true, "enum": ["publish-due", "trash-evict"]},
                    {"type": "boolean", "name": "dry_run", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "common.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/common.ErrorBody"}
            }
        },
        "domain.CreateItemRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string", "maxLength": 255},
                "body": {"type": "string"},
                "excerpt": {"type": "string", "maxLength": 1000},
                "category_ids": {"type": "array", "items": {"type": "string"}},
                "tag_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.UpdateItemRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "body": {"type": "string"},
                "excerpt": {"type": "string"},
                "category_ids": {"type": "array", "items": {"type": "string"}},
                "tag_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.ScheduleItemRequest": {
            "type": "object",
            "required": ["scheduled_for"],
            "properties": {"scheduled_for": {"type": "string", "format": "date-time"}}
        },
        "domain.TransitionRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["draft", "published", "private", "trash"]}}
        },
        "domain.IssuePreviewRequest": {
            "type": "object",
            "required": ["itemId"],
            "properties": {
                "itemId": {"type": "string"},
                "bindToIssuer": {"type": "boolean"}
            }
        },
        "domain.VerifyPreviewRequest": {
            "type": "object",
            "required": ["token", "itemId"],
            "properties": {
                "token": {"type": "string"},
                "itemId": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Authorization header using the Bearer scheme. Example: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8082",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Tourlog Backend API",
	Description:      "Blog / tour-review content lifecycle API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
