// Package docs registers the OpenAPI description of the checkout bridge with
// swag so echo-swagger can serve it under /swagger/.
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
		"/v1/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Login",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new customer",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/auth/logout": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Logout",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/profile": {
			"get": {
				"tags": [
					"profile"
				],
				"summary": "Current profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"put": {
				"tags": [
					"profile"
				],
				"summary": "Update profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/session": {
			"get": {
				"tags": [
					"session"
				],
				"summary": "Describe the held credential",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/session/acknowledge": {
			"post": {
				"tags": [
					"session"
				],
				"summary": "Acknowledge the session-expired prompt",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/prompts": {
			"get": {
				"tags": [
					"prompts"
				],
				"summary": "Pending prompts and the requested screen",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/prompts/{prompt_id}/answer": {
			"post": {
				"tags": [
					"prompts"
				],
				"summary": "Answer a pending prompt",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "prompt_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/tickets": {
			"get": {
				"tags": [
					"tickets"
				],
				"summary": "Purchase history of the logged-in customer",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/push-token": {
			"put": {
				"tags": [
					"push"
				],
				"summary": "Store and register the device push token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"delete": {
				"tags": [
					"push"
				],
				"summary": "Unregister the device push token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/checkouts": {
			"post": {
				"tags": [
					"checkouts"
				],
				"summary": "Start a checkout for a seat",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/checkouts/{order_id}": {
			"get": {
				"tags": [
					"checkouts"
				],
				"summary": "Get a checkout by order id",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"tags": [
					"checkouts"
				],
				"summary": "Cancel a checkout",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/surface": {
			"get": {
				"tags": [
					"checkouts"
				],
				"summary": "Get the checkout surface to render",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/verify": {
			"post": {
				"tags": [
					"checkouts"
				],
				"summary": "Re-check a pending payment",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/retry-load": {
			"post": {
				"tags": [
					"checkouts"
				],
				"summary": "Reload the checkout surface after a load error",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/leave": {
			"post": {
				"tags": [
					"checkouts"
				],
				"summary": "Ask which choices apply when the user tries to leave",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/leave/{choice}": {
			"post": {
				"tags": [
					"checkouts"
				],
				"summary": "Apply the user's answer to the leave prompt",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "choice",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/navigation": {
			"post": {
				"tags": [
					"surface"
				],
				"summary": "Report a surface navigation",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/load-error": {
			"post": {
				"tags": [
					"surface"
				],
				"summary": "Report a surface load error",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/v1/checkouts/{order_id}/message": {
			"post": {
				"tags": [
					"surface"
				],
				"summary": "Relay a message posted by the injected script",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "order_id",
						"in": "path",
						"required": true
					}
				]
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
	Title:            "Ticket checkout bridge API",
	Description:      "Session monitoring and payment confirmation for the bus-ticketing client.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
