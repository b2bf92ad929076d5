package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Agenda API",
        "description": "Class schedules, weekly timetable, today's agenda and alerts for a language centre.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Classes", "description": "Classes and their weekly schedule strings"},
        {"name": "Students", "description": "Students enrolled in a class"},
        {"name": "Attendance", "description": "Per-session attendance marks"},
        {"name": "Tuitions", "description": "Tuition invoices and overdue reporting"},
        {"name": "Calendar", "description": "Monday-first weekly timetable"},
        {"name": "Dashboard", "description": "Today's agenda, alerts and the management overview"}
    ],
    "paths": {
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "parameters": [
                    {"name": "level", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["name", "level", "created_at"]},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class",
                "description": "The schedule is stored in canonical form when it parses and verbatim otherwise.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get class",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Classes"],
                "summary": "Update class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Classes"],
                "summary": "Delete class",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Class still has students", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/schedule-days": {
            "get": {
                "tags": ["Classes"],
                "summary": "Canonical schedule day codes",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/schedule/format": {
            "post": {
                "tags": ["Classes"],
                "summary": "Build a schedule string from selected days and a time",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FormatScheduleRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/attendance/batch": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Save a class session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/attendance/count": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Count marks for a class session",
                "parameters": [
                    {"name": "class_id", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tuitions": {
            "get": {
                "tags": ["Tuitions"],
                "summary": "List tuitions",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["all", "pending", "paid", "overdue"]},
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Tuitions"],
                "summary": "Issue a tuition invoice",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTuitionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tuitions/{id}/pay": {
            "post": {
                "tags": ["Tuitions"],
                "summary": "Mark a tuition as paid",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tuitions/overdue": {
            "get": {
                "tags": ["Tuitions"],
                "summary": "List overdue tuitions",
                "parameters": [
                    {"name": "as_of", "in": "query", "type": "string", "format": "date"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tuitions/overdue/export": {
            "get": {
                "tags": ["Tuitions"],
                "summary": "Download overdue tuitions as CSV",
                "produces": ["text/csv"],
                "parameters": [{"name": "as_of", "in": "query", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "CSV file", "schema": {"type": "file"}}}
            }
        },
        "/calendar/week": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Weekly timetable",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/week/export": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Download the weekly timetable",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "offset", "in": "query", "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {"200": {"description": "Rendered timetable", "schema": {"type": "file"}}}
            }
        },
        "/dashboard/today": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Today's agenda and alerts",
                "description": "Store failures never fail the request; the affected lookups are listed in degraded.",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/management": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Revenue and attendance overview",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "ClassRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "schedule": {"type": "string", "example": "T2/T4 - 19:00"},
                "level": {"type": "string"}
            },
            "required": ["name"]
        },
        "FormatScheduleRequest": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "string", "enum": ["T2", "T3", "T4", "T5", "T6", "T7", "CN"]}},
                "time": {"type": "string", "example": "19:00"},
                "toggle": {"type": "string"}
            }
        },
        "StudentPayload": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "avatar_url": {"type": "string"},
                "date_of_birth": {"type": "string", "format": "date-time"},
                "parent_name": {"type": "string"},
                "phone": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["class_id", "name"]
        },
        "AttendanceEntry": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent", "late"]}
            },
            "required": ["student_id", "status"]
        },
        "RecordAttendanceRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/AttendanceEntry"}}
            },
            "required": ["class_id", "date", "records"]
        },
        "CreateTuitionRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "student_id": {"type": "string"},
                "amount": {"type": "integer"},
                "period": {"type": "string", "example": "2024-11"},
                "due_date": {"type": "string", "format": "date"},
                "note": {"type": "string"}
            },
            "required": ["class_id", "student_id", "amount", "period", "due_date"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
