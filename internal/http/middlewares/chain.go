package middlewares

import "net/http"

// Middleware decora un http.Handler con un comportamiento transversal
// (request id, logging, gate de autenticación, rate limit).
type Middleware func(http.Handler) http.Handler

// Chain envuelve h con los middlewares dados. El primero de la lista queda
// como capa más externa: Chain(h, A, B) atiende A -> B -> h, y A es el
// último en ver la respuesta.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ChainFunc es Chain para un http.HandlerFunc suelto.
func ChainFunc(hf http.HandlerFunc, mws ...Middleware) http.Handler {
	return Chain(hf, mws...)
}
