package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router standard library http.ServeMux; every handler dispatches its own
// sub-paths.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) RegisterAssistedPersonRoutes(h *AssistedPersonHandler) {
	r.HandleHandler(assistedPersonsPath, h)
	r.HandleHandler(assistedPersonsPath+"/", h)
}

func (r *Router) RegisterOperatorRoutes(h *OperatorHandler) {
	r.HandleHandler(operatorsPath, h)
	r.HandleHandler(operatorsPath+"/", h)
}

func (r *Router) RegisterDiaryRoutes(h *DiaryHandler) {
	r.HandleHandler(diaryPath, h)
	r.HandleHandler(diaryPath+"/", h)
}

func (r *Router) RegisterHealthFolderRoutes(h *HealthFolderHandler) {
	r.HandleHandler(foldersPath, h)
	r.HandleHandler(foldersPath+"/", h)
}

// RegisterOpsRoutes health and metrics endpoints.
func (r *Router) RegisterOpsRoutes(health *HealthHandler, metrics *Metrics) {
	r.Handle("/health", health.HealthCheck)
	r.Handle("/healthz", health.HealthCheck)
	if metrics != nil {
		r.HandleHandler("/metrics", metrics.Handler())
	}
}
