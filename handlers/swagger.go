package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the portal API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>SRC portal API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "src-portal", "version": "v1.0.0" },
  "paths": {
    "/auth/signup": {
      "post": {
        "summary": "Create an account (student profile)",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","password"],"properties":{"email":{"type":"string"},"password":{"type":"string","minLength":8},"full_name":{"type":"string"}}}}}},
        "responses": { "200": { "description": "account created" }, "400": { "description": "invalid input or email in use" }, "500": { "description": "internal error" } }
      }
    },
    "/auth/login": {
      "post": {
        "summary": "Sign in and set session cookies",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "signed in; body carries role and dashboard path" }, "400": { "description": "invalid credentials" } }
      }
    },
    "/auth/logout": {
      "post": { "summary": "Sign out, revoke the access token and clear cookies", "responses": { "200": { "description": "signed out" }, "500": { "description": "internal error" } } }
    },
    "/me": {
      "get": { "summary": "Current identity, profile and dashboard", "responses": { "200": { "description": "profile" }, "401": { "description": "not authenticated" } } }
    },
    "/news": {
      "get": { "summary": "Published news, newest first", "parameters": [{"name":"limit","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "news list" } } }
    },
    "/departments": {
      "get": { "summary": "Active SRC departments", "responses": { "200": { "description": "departments" }, "401": { "description": "not authenticated" } } }
    },
    "/avatar/upload-url": {
      "post": {
        "summary": "Signed upload URL for a profile picture",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"fileType":{"type":"string","enum":["image/jpeg","image/png","image/gif","image/webp"]}}}}}},
        "responses": { "200": { "description": "signedUrl, token and path" }, "400": { "description": "invalid file type" }, "401": { "description": "not authenticated" } }
      }
    },
    "/reports": {
      "get": { "summary": "List reports (src, admin)", "parameters": [{"name":"status","in":"query","schema":{"type":"string","enum":["open","resolved"]}}], "responses": { "200": { "description": "reports" }, "401": { "description": "not authenticated" }, "403": { "description": "forbidden" } } },
      "post": { "summary": "Submit a report", "responses": { "201": { "description": "report created" }, "400": { "description": "missing title or content" }, "401": { "description": "not authenticated" } } }
    },
    "/reports/{id}": {
      "delete": { "summary": "Delete a report (admin, SRC President)", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "deleted" }, "401": { "description": "unauthorized" }, "403": { "description": "forbidden" }, "404": { "description": "report not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
