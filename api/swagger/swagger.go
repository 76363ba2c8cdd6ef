package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Records Console",
        "description": "JSON and operations surface of the server-rendered academic records console. The HTML pages are not described here.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Session", "description": "Browser workspace state"},
        {"name": "Ops", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Status"}}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness probe",
                "description": "Checks the session storage backend.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/Readiness"}},
                    "503": {"description": "A dependency is unavailable", "schema": {"$ref": "#/definitions/Readiness"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Prometheus exposition format"}
                }
            }
        },
        "/api/session": {
            "get": {
                "tags": ["Session"],
                "summary": "Console session status",
                "description": "Reports whether the browser's workspace is signed in, its role and current page. The session token is never exposed.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionEnvelope"}},
                    "500": {"description": "Workspace unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Status": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "Readiness": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["ready", "unavailable"]},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "SessionStatus": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "role": {"type": "string"},
                "page": {"type": "string", "enum": ["courses", "specialisations"]},
                "screen": {"type": "string", "enum": ["login", "courses", "specialisations"]}
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
                "meta": {"type": "object"}
            }
        },
        "SessionEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/SessionStatus"},
                "error": {"$ref": "#/definitions/APIError"}
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
