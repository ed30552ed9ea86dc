package http

import "net/http"

type RouterConfig struct {
	Activities *ActivityHandler
	Auth       *AuthHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Activities != nil {
		mux.HandleFunc("GET /activities", cfg.Activities.List)
		mux.HandleFunc("GET /activities/{name}", cfg.Activities.Get)
		mux.HandleFunc("POST /activities/{name}/signup", cfg.Activities.Signup)
		mux.HandleFunc("DELETE /activities/{name}/unregister", cfg.Activities.Unregister)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
