// Package docs registers the Swagger document served under /swagger. Host,
// version and base path are set at startup.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "url": "http://www.swagger.io/support",
            "email": "support@swagger.io"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "ops"
                ],
                "summary": "Healthcheck",
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
        "/products/{product_id}": {
            "get": {
                "tags": [
                    "catalog"
                ],
                "summary": "Get product by ID",
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
                        "name": "product_id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/combos/{combo_id}": {
            "get": {
                "tags": [
                    "catalog"
                ],
                "summary": "Get combo definition",
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
                        "name": "combo_id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/ingredients": {
            "get": {
                "tags": [
                    "catalog"
                ],
                "summary": "List builder ingredients",
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
        "/flavors": {
            "get": {
                "tags": [
                    "catalog"
                ],
                "summary": "List variant groups",
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
        "/quotes": {
            "post": {
                "tags": [
                    "quotes"
                ],
                "summary": "Price a configuration",
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
        "/carts": {
            "post": {
                "tags": [
                    "carts"
                ],
                "summary": "Open a cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/carts/{cart_id}": {
            "get": {
                "tags": [
                    "carts"
                ],
                "summary": "Get cart",
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
                        "name": "cart_id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "delete": {
                "tags": [
                    "carts"
                ],
                "summary": "Clear the cart (confirm=true)",
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
                        "name": "cart_id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/carts/{cart_id}/products": {
            "post": {
                "tags": [
                    "carts"
                ],
                "summary": "Add a standard product",
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
                        "name": "cart_id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/carts/{cart_id}/configured": {
            "post": {
                "tags": [
                    "carts"
                ],
                "summary": "Add a configured product or combo",
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
                        "name": "cart_id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/carts/{cart_id}/items/{index}": {
            "patch": {
                "tags": [
                    "carts"
                ],
                "summary": "Change a line quantity",
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
                        "name": "cart_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "name": "index",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "delete": {
                "tags": [
                    "carts"
                ],
                "summary": "Remove a line",
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
                        "name": "cart_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "name": "index",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/carts/{cart_id}/checkout": {
            "post": {
                "tags": [
                    "orders"
                ],
                "summary": "Submit the cart as an order",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "cart_id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/orders/{order_id}": {
            "get": {
                "tags": [
                    "orders"
                ],
                "summary": "Get order",
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
        "/orders/{order_id}/audit": {
            "get": {
                "tags": [
                    "orders"
                ],
                "summary": "Get order status history",
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
        "/kitchen/board": {
            "get": {
                "tags": [
                    "kitchen"
                ],
                "summary": "Kitchen board",
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
        "/kitchen/board/stream": {
            "get": {
                "tags": [
                    "kitchen"
                ],
                "summary": "Live kitchen board (server-sent events)",
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
        "/kitchen/orders/{order_id}/advance": {
            "post": {
                "tags": [
                    "kitchen"
                ],
                "summary": "Advance an order",
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
        "/catalog/imports": {
            "post": {
                "tags": [
                    "catalog"
                ],
                "summary": "Import the catalog",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                }
            }
        },
        "/catalog/imports/{task_id}": {
            "get": {
                "tags": [
                    "catalog"
                ],
                "summary": "Get import task status",
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
                        "name": "task_id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-Actor-ID",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pizza Brava POS",
	Description:      "Order composition and kitchen fulfillment API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
