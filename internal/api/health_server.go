package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthServer отвечает на health-check хостинга фиксированным "Bot is running".
type HealthServer struct {
	logger     *zap.Logger
	httpServer *http.Server
}

// NewHealthServer создает HTTP-сервер для проверки живости
func NewHealthServer(logger *zap.Logger, addr string) *HealthServer {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Bot is running"))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &HealthServer{
		logger:     logger,
		httpServer: server,
	}
}

// Start запускает HTTP-сервер
func (s *HealthServer) Start() {
	go func() {
		s.logger.Info("Запуск HTTP-сервера", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Ошибка запуска HTTP-сервера", zap.Error(err))
		}
	}()
}

// Остановка сервера
func (s *HealthServer) Stop() error {
	return s.httpServer.Close()
}
