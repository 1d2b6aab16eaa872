// Package docs holds the swagger document served at /swagger. It is built
// from the handler annotations; regenerate with swag init -g cmd/server/main.go.
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
		"/auth/login": {
			"post": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.loginResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Login",
				"tags": [
					"auth"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Login credentials",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.loginRequest"
						}
					}
				]
			}
		},
		"/auth/logout": {
			"post": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.logoutResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/handler.logoutResponse"
						}
					}
				},
				"summary": "Logout",
				"tags": [
					"auth"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Refresh token to revoke",
						"name": "body",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/handler.refreshRequest"
						}
					}
				]
			}
		},
		"/auth/register": {
			"post": {
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.userResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Register a new user",
				"tags": [
					"auth"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "User registration details",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.registerRequest"
						}
					}
				]
			}
		},
		"/auth/token/refresh": {
			"post": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.accessResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Refresh access token",
				"tags": [
					"auth"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Refresh token",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.refreshRequest"
						}
					}
				]
			}
		},
		"/auth/user": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.userResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Current user",
				"tags": [
					"auth"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/users": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.userResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "List all users",
				"tags": [
					"auth"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/users/{id}": {
			"delete": {
				"responses": {
					"204": {
						"description": "No Content"
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Delete a user and everything they created",
				"tags": [
					"auth"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "User id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/clients": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.clientResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "List visible clients",
				"tags": [
					"clients"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.clientResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Create a client and its login",
				"tags": [
					"clients"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Client details",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.createClientRequest"
						}
					}
				]
			}
		},
		"/clients/{id}": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.clientResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Get a client",
				"tags": [
					"clients"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Client id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			},
			"put": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.clientResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Replace a client",
				"tags": [
					"clients"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Client id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Client details",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.replaceClientRequest"
						}
					}
				]
			},
			"patch": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.clientResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Partially update a client",
				"tags": [
					"clients"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Client id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Fields to change",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.patchClientRequest"
						}
					}
				]
			},
			"delete": {
				"responses": {
					"204": {
						"description": "No Content"
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Delete a client with its reports and login",
				"tags": [
					"clients"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Client id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/clients/{id}/report_count": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.reportCountResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Count the reports of a client",
				"tags": [
					"clients"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Client id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/reports": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.reportResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "List visible reports",
				"tags": [
					"reports"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Only reports of this client",
						"name": "client_id",
						"in": "query",
						"required": false,
						"type": "string"
					}
				]
			},
			"post": {
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.reportResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Create a report",
				"tags": [
					"reports"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Report details",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.createReportRequest"
						}
					}
				]
			}
		},
		"/reports/{id}": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.reportResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Get a report",
				"tags": [
					"reports"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Report id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			},
			"put": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.reportResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Replace a report",
				"tags": [
					"reports"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Report id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Report details",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.createReportRequest"
						}
					}
				]
			},
			"patch": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.reportResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"type": "object",
							"additionalProperties": {}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Partially update a report",
				"tags": [
					"reports"
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Report id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Fields to change",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.patchReportRequest"
						}
					}
				]
			},
			"delete": {
				"responses": {
					"204": {
						"description": "No Content"
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "Delete a report",
				"tags": [
					"reports"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Report id",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/user-counts": {
			"get": {
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.UserCounts"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				},
				"summary": "User totals per role",
				"tags": [
					"users"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"domain.UserCounts": {
			"type": "object",
			"properties": {
				"total": {
					"type": "integer"
				},
				"core_users": {
					"type": "integer"
				},
				"client_users": {
					"type": "integer"
				}
			}
		},
		"handler.accessResponse": {
			"type": "object",
			"properties": {
				"access": {
					"type": "string"
				}
			}
		},
		"handler.clientResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"company_name": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"created_by": {
					"type": "string"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"client_profile_id": {
					"type": "string"
				}
			}
		},
		"handler.createClientRequest": {
			"type": "object",
			"properties": {
				"company_name": {
					"type": "string",
					"maxLength": 255
				},
				"username": {
					"type": "string",
					"maxLength": 100
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"company_name",
				"username",
				"password"
			]
		},
		"handler.createReportRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"maxLength": 255
				},
				"client": {
					"type": "string"
				},
				"power_bi_embed_url": {
					"type": "string",
					"format": "uri",
					"maxLength": 1000
				},
				"type": {
					"type": "string",
					"enum": [
						"Dashboard",
						"Report"
					]
				}
			},
			"required": [
				"name",
				"client",
				"power_bi_embed_url"
			]
		},
		"handler.loginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"handler.loginResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"token": {
					"type": "string"
				},
				"refresh": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/handler.userResponse"
				}
			}
		},
		"handler.logoutResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				}
			}
		},
		"handler.patchClientRequest": {
			"type": "object",
			"properties": {
				"company_name": {
					"type": "string",
					"maxLength": 255
				},
				"username": {
					"type": "string",
					"maxLength": 100
				},
				"password": {
					"type": "string"
				}
			}
		},
		"handler.patchReportRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"maxLength": 255
				},
				"client": {
					"type": "string"
				},
				"power_bi_embed_url": {
					"type": "string",
					"format": "uri",
					"maxLength": 1000
				},
				"type": {
					"type": "string",
					"enum": [
						"Dashboard",
						"Report"
					]
				}
			}
		},
		"handler.refreshRequest": {
			"type": "object",
			"properties": {
				"refresh": {
					"type": "string"
				}
			}
		},
		"handler.registerRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"format": "email"
				},
				"password": {
					"type": "string"
				},
				"first_name": {
					"type": "string",
					"maxLength": 150
				},
				"last_name": {
					"type": "string",
					"maxLength": 150
				},
				"phone_number": {
					"type": "string",
					"maxLength": 20
				},
				"company_name": {
					"type": "string",
					"maxLength": 255
				},
				"business_type": {
					"type": "string",
					"maxLength": 100
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"handler.replaceClientRequest": {
			"type": "object",
			"properties": {
				"company_name": {
					"type": "string",
					"maxLength": 255
				},
				"username": {
					"type": "string",
					"maxLength": 100
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"company_name",
				"username"
			]
		},
		"handler.reportCountResponse": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				}
			}
		},
		"handler.reportResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"client": {
					"type": "string"
				},
				"power_bi_embed_url": {
					"type": "string"
				},
				"type": {
					"type": "string"
				},
				"created_by": {
					"type": "string"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"handler.userResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"client_id": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"phone_number": {
					"type": "string"
				},
				"company_name": {
					"type": "string"
				},
				"business_type": {
					"type": "string"
				},
				"subscription": {
					"type": "string"
				},
				"subscription_expiry": {
					"type": "string",
					"format": "date-time"
				},
				"status": {
					"type": "string"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				}
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
	Title:            "Report Portal API",
	Description:      "Users, clients and embedded BI reports with role-scoped visibility.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
