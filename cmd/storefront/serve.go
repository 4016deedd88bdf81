package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/logging"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	session := a.svc.Sessions.Snapshot()
	log.WithField("authenticated", session.IsAuthenticated).WithField("role", session.Role).Info("session hydrated")

	// gRPC cart service
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.GuardInterceptor(a.svc.Guard, domain.RoleUser)))
	handler.RegisterCartServer(grpcServer, handler.NewGRPCHandler(a.svc.Cart, a.svc.Orders, logging.Component(log, "grpc")))

	lis, err := net.Listen("tcp", a.cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}

	go func() {
		log.Infof("gRPC server listening on %s", a.cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC server error")
		}
	}()

	// HTTP views and API
	httpHandler := handler.NewHTTPHandler(a.svc, logging.Component(log, "http"))
	httpServer := &http.Server{
		Addr:    a.cfg.Server.HTTPAddr,
		Handler: httpHandler.Router(),
	}

	go func() {
		log.Infof("HTTP server listening on %s", a.cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown")
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	return nil
}
