// Package docs registra el documento OpenAPI que sirve /swagger.
// Mantenido a mano; regenerar con `swag init` pisa este archivo.
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
        "/cases": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cases"],
                "summary": "Listar mis casos",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cases"],
                "summary": "Crear caso",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/cases/{caseID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cases"],
                "summary": "Ver un caso",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/cases/{caseID}/members": {
            "get": {
                "produces": ["application/json"],
                "tags": ["memberships"],
                "summary": "Resumen de sharing del caso",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/memberships/{membershipID}/revoke": {
            "post": {
                "produces": ["application/json"],
                "tags": ["memberships"],
                "summary": "Revocar una membresía",
                "parameters": [
                    {"type": "string", "name": "membershipID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/cases/{caseID}/invites": {
            "get": {
                "produces": ["application/json"],
                "tags": ["invites"],
                "summary": "Listar invitaciones pendientes",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invites"],
                "summary": "Invitar a un familiar o clínico",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/invite/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["invites"],
                "summary": "Ver una invitación por token",
                "parameters": [
                    {"type": "string", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/invite/{token}/accept": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invites"],
                "summary": "Aceptar una invitación",
                "parameters": [
                    {"type": "string", "name": "token", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Conflict"},
                    "410": {"description": "Gone"}
                }
            }
        },
        "/invites/{inviteID}": {
            "delete": {
                "tags": ["invites"],
                "summary": "Cancelar una invitación pendiente",
                "parameters": [
                    {"type": "string", "name": "inviteID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/memberships/{membershipID}/consent/scopes": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["consents"],
                "summary": "Reemplazar los scopes otorgados a un clínico",
                "parameters": [
                    {"type": "string", "name": "membershipID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/memberships/{membershipID}/consent/pause": {
            "post": {
                "produces": ["application/json"],
                "tags": ["consents"],
                "summary": "Pausar el consent de un clínico",
                "parameters": [
                    {"type": "string", "name": "membershipID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/memberships/{membershipID}/consent/resume": {
            "post": {
                "produces": ["application/json"],
                "tags": ["consents"],
                "summary": "Reanudar el consent de un clínico",
                "parameters": [
                    {"type": "string", "name": "membershipID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/memberships/{membershipID}/consent/revoke": {
            "post": {
                "produces": ["application/json"],
                "tags": ["consents"],
                "summary": "Revocar el consent de un clínico",
                "parameters": [
                    {"type": "string", "name": "membershipID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/cases/{caseID}/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Listar el diario visible para el viewer",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true},
                    {"type": "string", "name": "types", "in": "query"},
                    {"type": "string", "name": "before", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Registrar una observación",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/cases/{caseID}/events/export": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Exportar el diario visible para el viewer",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/events/{eventID}": {
            "delete": {
                "tags": ["events"],
                "summary": "Borrar una observación",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/cases/{caseID}/audit": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Audit trail del caso",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/cases/{caseID}/audit/permissions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Historial de cambios de permisos",
                "parameters": [
                    {"type": "string", "name": "caseID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/scopes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scopes"],
                "summary": "Registro de scopes",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/specialties": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scopes"],
                "summary": "Tabla de especialidades",
                "responses": {
                    "200": {"description": "OK"}
                }
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
	Title:            "Care Journal API",
	Description:      "Diario de salud compartido: membresías, invitaciones, consents por scope y audit trail.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
