package main

// General API documentation for swaggo. Regenerate docs/ with
// `swag init -g cmd/ollamaproxy/docs.go -d ./,./internal/httpapi`.
//
// @title           ollamaproxy API
// @version         1.0
// @description     Ollama-compatible HTTP API backed by an OpenAI-compatible upstream.
//
// @contact.name   ollamaproxy maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
