// Package docs holds the swagger document served at /swagger/*any.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "ResponseWatch",
    "description": "Tracks unanswered customer conversations and alerts staff when replies are overdue",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/health": {"get": {"tags": ["health"], "summary": "Service health", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/webhook/incoming-message": {"post": {"tags": ["webhooks"], "summary": "Customer message webhook", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Missing identity"}}}},
    "/webhook/outgoing-message": {"post": {"tags": ["webhooks"], "summary": "Staff reply webhook", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Missing identity"}}}},
    "/api/pending-messages": {"get": {"tags": ["conversations"], "summary": "Pending conversations", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/api/conversation/{id}": {"get": {"tags": ["conversations"], "summary": "Conversation details", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
    "/api/mark-responded/{id}": {"post": {"tags": ["conversations"], "summary": "Mark conversation responded", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
    "/api/conversations": {"delete": {"tags": ["conversations"], "summary": "Clear all conversations", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid admin key"}}}},
    "/api/debug/webhooks": {"get": {"tags": ["debug"], "summary": "Recent webhook payloads", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid admin key"}}}},
    "/api/debug/conversations": {"get": {"tags": ["debug"], "summary": "All tracked conversations", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid admin key"}}}},
    "/api/debug/conversation/{id}": {"get": {"tags": ["debug"], "summary": "Raw conversation state", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
