// Package docs registers the OpenAPI description served at /swagger/.
// Regenerate with: swag init -g cmd/taskpulse/main.go
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
        "/webhook/whatsapp": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["webhook"],
                "summary": "Verify WhatsApp webhook",
                "parameters": [
                    {"type": "string", "description": "Must be subscribe", "name": "hub.mode", "in": "query", "required": true},
                    {"type": "string", "description": "Configured verify token", "name": "hub.verify_token", "in": "query", "required": true},
                    {"type": "string", "description": "Challenge to echo", "name": "hub.challenge", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhook"],
                "summary": "Receive WhatsApp notifications",
                "parameters": [
                    {"type": "string", "description": "HMAC-SHA256 of the body, required when an app secret is configured", "name": "X-Hub-Signature-256", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WebhookAck"}}
                }
            }
        },
        "/v1/simulate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Dry run of the decision engine. Nothing is written and no reply is sent.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["engine"],
                "summary": "Simulate an inbound message",
                "parameters": [
                    {"description": "Message to simulate", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SimulateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Action plan", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/v1/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List tasks with filtering, sorting and pagination",
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "string", "description": "Comma-separated statuses", "name": "status", "in": "query"},
                    {"type": "string", "description": "Assignee user UUID", "name": "assignee", "in": "query"},
                    {"type": "string", "description": "Team UUID", "name": "team", "in": "query"},
                    {"type": "boolean", "description": "Only open tasks past their deadline", "name": "overdue", "in": "query"},
                    {"type": "string", "description": "Comma-separated sort fields, - prefix for descending", "name": "sort", "in": "query"},
                    {"type": "integer", "description": "Page size (default 50, max 200)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Page offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TasksListResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a pending task and sends the assignment message to the assignee. The creator defaults to the first admin.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Create a new task",
                "parameters": [
                    {"description": "Task creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.TaskResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/v1/tasks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get a task with every audit entry written for it, oldest first",
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Get task details",
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TaskDetailResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/v1/users/{id}/ai-settings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get AI settings",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AISettingsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Validated upsert of personality, follow-up frequency, work hours (HH:MM) and IANA timezone",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update AI settings",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "AI settings", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateAISettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AISettingsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/v1/cron/evaluate": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Moves open tasks close to or past their deadline to at_risk. Blocked and completed tasks are never touched.",
                "produces": ["application/json"],
                "tags": ["cron"],
                "summary": "Evaluate deadline risk",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RiskSweepResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Moves open tasks close to or past their deadline to at_risk. Blocked and completed tasks are never touched.",
                "produces": ["application/json"],
                "tags": ["cron"],
                "summary": "Evaluate deadline risk",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RiskSweepResponse"}}
                }
            }
        },
        "/v1/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get task statistics for a given period",
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Get statistics",
                "parameters": [
                    {"type": "string", "description": "Period: day, week (default), month, all", "name": "period", "in": "query"},
                    {"type": "string", "description": "Filter by team UUID", "name": "team", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StatsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
                }
            }
        },
        "dto.WebhookAck": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "dto.SimulateRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "text": {"type": "string"},
                "time_override": {"type": "string"},
                "history": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"role": {"type": "string"}, "content": {"type": "string"}}
                    }
                }
            }
        },
        "dto.CreateTaskRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "assignee_id": {"type": "string"},
                "deadline": {"type": "string"},
                "creator_id": {"type": "string"},
                "team_id": {"type": "string"}
            }
        },
        "dto.TaskResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "assignee_id": {"type": "string"},
                "creator_id": {"type": "string"},
                "deadline": {"type": "string"},
                "status": {"type": "string"},
                "blocker_reason": {"type": "string"},
                "team_id": {"type": "string"},
                "is_overdue": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.TasksListResponse": {
            "type": "object",
            "properties": {
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/dto.TaskResponse"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "dto.AuditEntryResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "action": {"type": "string"},
                "task_id": {"type": "string"},
                "details": {"type": "object"},
                "created_at": {"type": "string"}
            }
        },
        "dto.TaskDetailResponse": {
            "type": "object",
            "properties": {
                "task": {"$ref": "#/definitions/dto.TaskResponse"},
                "audit": {"type": "array", "items": {"$ref": "#/definitions/dto.AuditEntryResponse"}}
            }
        },
        "dto.UpdateAISettingsRequest": {
            "type": "object",
            "properties": {
                "personality": {"type": "string"},
                "followup_frequency": {"type": "string"},
                "work_hours_start": {"type": "string"},
                "work_hours_end": {"type": "string"},
                "timezone": {"type": "string"},
                "include_weekends": {"type": "boolean"},
                "optimize_costs": {"type": "boolean"}
            }
        },
        "dto.AISettingsResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "personality": {"type": "string"},
                "followup_frequency": {"type": "string"},
                "work_hours_start": {"type": "string"},
                "work_hours_end": {"type": "string"},
                "timezone": {"type": "string"},
                "include_weekends": {"type": "boolean"},
                "optimize_costs": {"type": "boolean"},
                "last_active_at": {"type": "string"}
            }
        },
        "dto.RiskSweepResponse": {
            "type": "object",
            "properties": {
                "processed": {"type": "integer"},
                "updates": {"type": "integer"},
                "tasks": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "task_id": {"type": "string"},
                            "previous_status": {"type": "string"},
                            "reason": {"type": "string"}
                        }
                    }
                }
            }
        },
        "dto.StatsResponse": {
            "type": "object",
            "properties": {
                "period": {"type": "string"},
                "period_start": {"type": "string"},
                "period_end": {"type": "string"},
                "assignees": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "user_id": {"type": "string"},
                            "user_name": {"type": "string"},
                            "tasks_completed": {"type": "integer"},
                            "tasks_blocked": {"type": "integer"},
                            "tasks_at_risk": {"type": "integer"},
                            "tasks_open": {"type": "integer"}
                        }
                    }
                },
                "overview": {
                    "type": "object",
                    "properties": {
                        "total_tasks_created": {"type": "integer"},
                        "tasks_by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                        "overdue_count": {"type": "integer"},
                        "at_risk_count": {"type": "integer"},
                        "blocked_count": {"type": "integer"},
                        "completion_rate_percent": {"type": "number"}
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Admin token, as \"Bearer <token>\"",
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "taskpulse API",
	Description:      "Conversational task accountability over WhatsApp.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
