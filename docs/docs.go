// Package docs - описание API для swagger UI (/swagger/index.html).
// Пути и схемы берутся из аннотаций обработчиков в internal/delivery/http/handler.
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
        "/api/v1/health": {"get": {"tags": ["Health"], "summary": "Проверка состояния", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/api/v1/hindrance-types": {"get": {"tags": ["Types"], "summary": "Список типов препятствий", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/object-types": {"get": {"tags": ["Types"], "summary": "Каталог типов и типы по умолчанию", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/sync-object": {"post": {"tags": ["Journey"], "summary": "Синхронизация одного объекта", "parameters": [{"type": "string", "name": "X-User-ID", "in": "header", "required": true}, {"type": "string", "name": "journeyId", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/api/v1/finalize-journey": {"post": {"tags": ["Journey"], "summary": "Финализация сессии", "parameters": [{"type": "string", "name": "X-User-ID", "in": "header", "required": true}, {"type": "string", "name": "journeyId", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/api/v1/reports": {"get": {"tags": ["Reports"], "summary": "Отчеты пользователя", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/reports/{id}": {"get": {"tags": ["Reports"], "summary": "Отчет с объектами", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/v1/reports/{id}/geojson": {"get": {"tags": ["Reports"], "summary": "Отчет в GeoJSON", "produces": ["application/geo+json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/v1/review/reports": {"get": {"tags": ["Review"], "summary": "Отчеты на проверке", "parameters": [{"type": "string", "name": "status", "in": "query"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/review/objects/{id}": {"post": {"tags": ["Review"], "summary": "Решение по объекту", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/v1/review/reports/{id}/status": {"post": {"tags": ["Review"], "summary": "Смена статуса отчета", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Hindrance Reporter API",
	Description:      "Синхронизация полевых сессий пилотов, финализация отчетов о препятствиях и их проверка.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
