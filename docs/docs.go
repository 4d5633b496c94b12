// Package docs registra la definición OpenAPI servida en /swagger.
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
        "/register": {"post": {"tags": ["auth"], "summary": "Registrar usuario", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}}},
        "/login": {
            "get": {"tags": ["auth"], "summary": "Estado de la sesión", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["auth"], "summary": "Iniciar sesión", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/logout": {"post": {"tags": ["auth"], "summary": "Cerrar sesión (borra todos los datos de la sesión)", "responses": {"204": {"description": "No Content"}}}},
        "/home": {"get": {"tags": ["auth"], "summary": "Home: usuario actual sincronizado con el backend", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/profile": {
            "get": {"tags": ["auth"], "summary": "Perfil del usuario actual", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["auth"], "summary": "Editar nombre de usuario", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/request": {
            "get": {"tags": ["walks"], "summary": "Datos del formulario de solicitud", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["walks"], "summary": "Crear solicitud de paseo", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/request/{requestID}": {"put": {"tags": ["walks"], "summary": "Editar solicitud (vuelve a pendiente)", "parameters": [{"type": "integer", "name": "requestID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/requests": {"get": {"tags": ["walks"], "summary": "Solicitudes pendientes y confirmadas", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/requests/{requestID}": {
            "get": {"tags": ["walks"], "summary": "Obtener solicitud", "parameters": [{"type": "integer", "name": "requestID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["walks"], "summary": "Cancelar solicitud", "parameters": [{"type": "integer", "name": "requestID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/walker-requests": {"get": {"tags": ["walks"], "summary": "Tablero del paseador", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/walker-requests/{requestID}/accept": {"post": {"tags": ["walks"], "summary": "Aceptar solicitud", "parameters": [{"type": "integer", "name": "requestID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/walker-requests/{requestID}/start": {"post": {"tags": ["walks"], "summary": "Iniciar paseo", "parameters": [{"type": "integer", "name": "requestID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/walker-requests/{requestID}/finish": {"post": {"tags": ["walks"], "summary": "Finalizar paseo", "parameters": [{"type": "integer", "name": "requestID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/chat": {
            "get": {"tags": ["chat"], "summary": "Conversación de una solicitud (o saludo inicial)", "parameters": [{"type": "integer", "name": "requestId", "in": "query", "required": true}, {"type": "string", "name": "walker", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["chat"], "summary": "Enviar mensaje (la respuesta automática llega después)", "consumes": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/history": {"get": {"tags": ["history"], "summary": "Paseos finalizados con sus calificaciones", "parameters": [{"type": "string", "name": "from", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/history/{walkID}/rating": {"put": {"tags": ["history"], "summary": "Calificar un paseo (1 a 5)", "parameters": [{"type": "integer", "name": "walkID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/history/app-rating": {"put": {"tags": ["history"], "summary": "Calificar la app (1 a 5)", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/walker-application": {"post": {"tags": ["walkers"], "summary": "Postularse como paseador", "consumes": ["multipart/form-data", "application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}}},
        "/contact": {"post": {"tags": ["contact"], "summary": "Enviar consulta de contacto", "consumes": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/about": {"get": {"tags": ["contact"], "summary": "Información de la app", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Petfy API",
	Description:      "Solicitudes de paseo, chat con el paseador e historial, por sesión de dispositivo.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
