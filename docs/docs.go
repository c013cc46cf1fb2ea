// Package docs registers the OpenAPI description of the CBM flow API with
// swag so http-swagger can serve it under /swagger/.
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
        "/upload": {
            "post": {
                "description": "Parses the first sheet of an .xlsx file and stores the dataset in a new session",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Upload an order/invoice workbook",
                "parameters": [
                    {"type": "file", "description": "Excel workbook (.xlsx)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.UploadResponse"}},
                    "400": {"description": "Unsupported file type", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}},
                    "422": {"description": "Workbook cannot be used", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}}
                }
            }
        },
        "/analyze": {
            "post": {
                "description": "Daily inbound, outbound and net CBM flow with totals, KPIs and an optional grouped breakdown",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze a date window",
                "parameters": [
                    {"description": "Session and window", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analysis.AnalysisResult"}},
                    "400": {"description": "Invalid request or window", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}},
                    "404": {"description": "Unknown session", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}}
                }
            }
        },
        "/download/csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["downloads"],
                "summary": "Download the daily series as CSV",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "query", "required": true},
                    {"type": "string", "description": "Window start", "name": "date_from", "in": "query", "required": true},
                    {"type": "string", "description": "Window end", "name": "date_to", "in": "query", "required": true},
                    {"type": "string", "description": "Grouping key", "name": "group_by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "cbm_analysis.csv", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}}
                }
            }
        },
        "/download/report": {
            "get": {
                "produces": ["text/html"],
                "tags": ["downloads"],
                "summary": "Download a printable HTML report",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "session_id", "in": "query", "required": true},
                    {"type": "string", "description": "Window start", "name": "date_from", "in": "query", "required": true},
                    {"type": "string", "description": "Window end", "name": "date_to", "in": "query", "required": true},
                    {"type": "string", "description": "Grouping key", "name": "group_by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "cbm_report.html", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}}
                }
            }
        },
        "/download/summary": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["downloads"],
                "summary": "Download the summary workbook",
                "parameters": [
                    {"description": "Session and window", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "cbm_summary.xlsx", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}}
                }
            }
        },
        "/uploads": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Upload history",
                "parameters": [
                    {"maximum": 500, "minimum": 1, "type": "integer", "description": "Maximum records", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.UploadsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ProblemDetails"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Build information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.VersionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.AnalyzeRequest": {
            "type": "object",
            "required": ["date_from", "date_to", "session_id"],
            "properties": {
                "date_from": {"type": "string", "example": "2025-09-01"},
                "date_to": {"type": "string", "example": "2025-09-30"},
                "group_by": {"type": "string", "example": "warehouse"},
                "session_id": {"type": "string", "format": "uuid"}
            }
        },
        "api.UploadResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "session_id": {"type": "string"},
                "filename": {"type": "string"},
                "columns_detected": {"type": "object", "additionalProperties": true},
                "sample_rows": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "string"}}},
                "date_range": {"$ref": "#/definitions/dataprocessing.DateRange"},
                "total_rows": {"type": "integer"}
            }
        },
        "api.UploadsResponse": {
            "type": "object",
            "properties": {
                "uploads": {"type": "array", "items": {"$ref": "#/definitions/store.UploadRecord"}},
                "count": {"type": "integer"}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "version": {"type": "string"},
                "uptime": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "api.VersionResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "version": {"type": "string"},
                "commit": {"type": "string"},
                "build_time": {"type": "string"},
                "go_version": {"type": "string"},
                "api_version": {"type": "string"}
            }
        },
        "dataprocessing.DateRange": {
            "type": "object",
            "properties": {
                "min_date": {"type": "string", "x-nullable": true},
                "max_date": {"type": "string", "x-nullable": true}
            }
        },
        "store.UploadRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "filename": {"type": "string"},
                "total_rows": {"type": "integer"},
                "columns_detected": {"type": "object", "additionalProperties": true},
                "min_date": {"type": "string", "x-nullable": true},
                "max_date": {"type": "string", "x-nullable": true},
                "uploaded_at": {"type": "string", "format": "date-time"}
            }
        },
        "analysis.Flow": {
            "type": "object",
            "properties": {
                "inbound_cbm": {"type": "number"},
                "inbound_qty": {"type": "number"},
                "outbound_cbm_si": {"type": "number"},
                "outbound_qty_si": {"type": "number"},
                "net_flow_cbm": {"type": "number"},
                "net_flow_qty": {"type": "number"}
            }
        },
        "analysis.Peak": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "x-nullable": true},
                "value": {"type": "number"}
            }
        },
        "analysis.AnalysisResult": {
            "type": "object",
            "properties": {
                "daily": {"type": "array", "items": {"allOf": [{"$ref": "#/definitions/analysis.Flow"}, {"type": "object", "properties": {"date": {"type": "string"}}}]}},
                "totals": {
                    "type": "object",
                    "properties": {
                        "total_inbound_cbm": {"type": "number"},
                        "total_outbound_cbm_si": {"type": "number"},
                        "total_net_flow_cbm": {"type": "number"},
                        "total_inbound_qty": {"type": "number"},
                        "total_outbound_qty_si": {"type": "number"},
                        "total_net_flow_qty": {"type": "number"}
                    }
                },
                "kpis": {
                    "type": "object",
                    "properties": {
                        "peak_inbound_cbm_day": {"$ref": "#/definitions/analysis.Peak"},
                        "peak_outbound_cbm_day": {"$ref": "#/definitions/analysis.Peak"},
                        "peak_inbound_qty_day": {"$ref": "#/definitions/analysis.Peak"},
                        "peak_outbound_qty_day": {"$ref": "#/definitions/analysis.Peak"},
                        "avg_daily_net_flow_cbm": {"type": "number"},
                        "avg_daily_net_flow_qty": {"type": "number"}
                    }
                },
                "grouped": {
                    "type": "object",
                    "x-nullable": true,
                    "properties": {
                        "group_by": {"type": "string"},
                        "column": {"type": "string"},
                        "data": {"type": "array", "items": {"allOf": [{"$ref": "#/definitions/analysis.Flow"}, {"type": "object", "properties": {"key": {"type": "string"}}}]}}
                    }
                }
            }
        },
        "errors.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"},
                "error_code": {"type": "string"},
                "trace_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "CBM Flow API",
	Description:      "Order and invoice flow analytics over uploaded Excel workbooks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
