package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Library Portal API",
        "description": "College library member registration and console service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Registration and login flows"},
        {"name": "Students", "description": "Member self-service"},
        {"name": "Console", "description": "Librarian record management and exports"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "ServiceKey": {"type": "apiKey", "name": "X-Service-Key", "in": "header"}
    },
    "paths": {
        "/register-student": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new student",
                "security": [{"ServiceKey": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/RegisterStudentResponse"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Duplicate PRN, mobile or email", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email, PRN or mobile number",
                "security": [{"ServiceKey": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Unknown PRN or mobile number", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/librarian-login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate the librarian credential pair",
                "security": [{"ServiceKey": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LibrarianLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LibrarianLoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/student-profile": {
            "get": {
                "tags": ["Students"],
                "summary": "Fetch the caller's own record",
                "security": [{"ServiceKey": [], "BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProfileResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "No record for this account", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/upload-photo": {
            "post": {
                "tags": ["Students"],
                "summary": "Attach a photo to a student record",
                "security": [{"ServiceKey": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "photo", "in": "formData", "type": "file", "required": true},
                    {"name": "userId", "in": "formData", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UploadPhotoResponse"}},
                    "400": {"description": "Missing or oversized file", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Unknown user ID", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/photos/{token}": {
            "get": {
                "tags": ["Students"],
                "summary": "Serve a stored photo by signed token",
                "produces": ["image/jpeg", "image/png"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Photo bytes"},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Console"],
                "summary": "List all student records",
                "security": [{"ServiceKey": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentsResponse"}},
                    "403": {"description": "Missing or invalid service key", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/student/{userId}": {
            "put": {
                "tags": ["Console"],
                "summary": "Merge fields into an existing record",
                "security": [{"ServiceKey": []}],
                "parameters": [
                    {"name": "userId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentResponse"}},
                    "404": {"description": "Unknown record", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Console"],
                "summary": "Delete a record and its lookup indexes",
                "security": [{"ServiceKey": []}],
                "parameters": [
                    {"name": "userId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/DeleteResponse"}},
                    "404": {"description": "Unknown record", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/dashboard-stats": {
            "get": {
                "tags": ["Console"],
                "summary": "Console dashboard statistics",
                "security": [{"ServiceKey": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StatsResponse"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Console"],
                "summary": "Export the filtered record set",
                "security": [{"ServiceKey": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv", "idcards"], "default": "xlsx"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "course", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Rendered download"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentPayload": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "prn": {"type": "string"},
                "course": {"type": "string"},
                "mobile": {"type": "string"},
                "parentMobile": {"type": "string"},
                "rollNumber": {"type": "string"},
                "gender": {"type": "string"},
                "bloodGroup": {"type": "string"},
                "category": {"type": "string"},
                "dateOfBirth": {"type": "string", "description": "DD/MM/YYYY"},
                "admittedYear": {"type": "string"},
                "permanentAddress": {"type": "string"},
                "localAddress": {"type": "string"}
            },
            "required": ["name", "prn", "course", "mobile", "parentMobile", "gender", "bloodGroup", "dateOfBirth"]
        },
        "RegisterStudentRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "studentData": {"$ref": "#/definitions/StudentPayload"}
            },
            "required": ["email", "password", "studentData"]
        },
        "RegisterStudentResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "libraryNumber": {"type": "string"},
                "userId": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "identifier": {"type": "string", "description": "Email, 10-digit PRN or mobile number"},
                "password": {"type": "string"}
            },
            "required": ["identifier", "password"]
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "accessToken": {"type": "string"},
                "user": {"$ref": "#/definitions/UserInfo"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "LibrarianLoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "LibrarianLoginResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "role": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "StudentRecord": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "name": {"type": "string"},
                "prn": {"type": "string"},
                "libraryNumber": {"type": "string"},
                "course": {"type": "string"},
                "email": {"type": "string"},
                "mobile": {"type": "string"},
                "parentMobile": {"type": "string"},
                "rollNumber": {"type": "string"},
                "gender": {"type": "string"},
                "bloodGroup": {"type": "string"},
                "category": {"type": "string"},
                "dateOfBirth": {"type": "string", "format": "date-time"},
                "admittedYear": {"type": "string"},
                "permanentAddress": {"type": "string"},
                "localAddress": {"type": "string"},
                "photoUrl": {"type": "string"},
                "registrationDate": {"type": "string", "format": "date-time"}
            }
        },
        "ProfileResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "student": {"$ref": "#/definitions/StudentRecord"}
            }
        },
        "StudentsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentRecord"}}
            }
        },
        "StudentResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "student": {"$ref": "#/definitions/StudentRecord"}
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "prn": {"type": "string"},
                "email": {"type": "string"},
                "mobile": {"type": "string"},
                "parentMobile": {"type": "string"},
                "rollNumber": {"type": "string"},
                "course": {"type": "string"},
                "admittedYear": {"type": "string"},
                "gender": {"type": "string"},
                "bloodGroup": {"type": "string"},
                "category": {"type": "string"},
                "dateOfBirth": {"type": "string"},
                "permanentAddress": {"type": "string"},
                "localAddress": {"type": "string"}
            }
        },
        "DeleteResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"}
            }
        },
        "UploadPhotoResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "photoUrl": {"type": "string"}
            }
        },
        "StatsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "stats": {"$ref": "#/definitions/DashboardStats"}
            }
        },
        "DashboardStats": {
            "type": "object",
            "properties": {
                "totalStudents": {"type": "integer"},
                "newRegistrations": {"type": "integer"},
                "courseDistribution": {"type": "object", "additionalProperties": {"type": "integer"}}
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
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
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
