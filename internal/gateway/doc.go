// Package gateway serves each Ollama endpoint by translating the request,
// calling the OpenAI-compatible upstream and translating the answer back.
//
// A Service holds no per-request state. Streaming methods write frames to
// the supplied writer as they arrive and always release the upstream
// response before returning.
package gateway
